package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A command describes a host command and the handler that runs it.
type command struct {
	path        string // full command name, e.g. "patch save"
	brief       string
	description string
	usage       string
	handler     func(h *Host, c cmd.Selection) error
}

var (
	cmds     *cmd.Tree
	commands []*command // every command, in registration order
)

// Register a command in a tree. The command itself is stored as the
// tree node's data.
func addCommand(t *cmd.Tree, prefix string, c *command) {
	name := c.path
	c.path = strings.TrimSpace(prefix + " " + name)
	commands = append(commands, c)
	t.AddCommand(cmd.CommandDescriptor{
		Name:        name,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	})
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "patch6502"})
	addCommand(root, "", &command{
		path:        "help",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		handler:     (*Host).cmdHelp,
	})

	// Assemble commands
	as := root.AddSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	addCommand(as, "assemble", &command{
		path:  "file",
		brief: "Assemble a source file",
		description: "Run the assembler on the specified file. Labels defined" +
			" by previously assembled files remain visible, and the chunks" +
			" the file produces are added to the pending output. If you" +
			" want verbose output, specify true as a second parameter.",
		usage:   "assemble file <filename> [<verbose>]",
		handler: (*Host).cmdAssembleFile,
	})
	addCommand(as, "assemble", &command{
		path:  "reset",
		brief: "Discard all labels and pending output",
		description: "Start over with a fresh assembler, discarding every" +
			" label and every pending chunk.",
		usage:   "assemble reset",
		handler: (*Host).cmdAssembleReset,
	})

	addCommand(root, "", &command{
		path:  "evaluate",
		brief: "Evaluate an expression",
		description: "Evaluate an expression using the labels defined by" +
			" every file assembled so far.",
		usage:   "evaluate <expression>",
		handler: (*Host).cmdEvaluate,
	})
	addCommand(root, "", &command{
		path:  "execute",
		brief: "Execute a script file",
		description: "Load a script file from disk and execute the" +
			" commands it contains.",
		usage:   "execute <filename>",
		handler: (*Host).cmdExecute,
	})
	addCommand(root, "", &command{
		path:  "labels",
		brief: "List labels",
		description: "Display every defined label and the addresses it" +
			" is defined at. Addresses prefixed with prg: are PRG offsets." +
			" If a prefix is given, only labels starting with it are shown.",
		usage:   "labels [<prefix>]",
		handler: (*Host).cmdLabels,
	})

	// Patch commands
	pa := root.AddSubtree(cmd.TreeDescriptor{Name: "patch", Brief: "Patch commands"})
	addCommand(pa, "patch", &command{
		path:  "build",
		brief: "Build a patch from pending output",
		description: "Encode every pending chunk as a patch. When the" +
			" ROMLayout setting is enabled, chunks are shifted past the" +
			" ROM header so the patch addresses a complete ROM image.",
		usage:   "patch build",
		handler: (*Host).cmdPatchBuild,
	})
	addCommand(pa, "patch", &command{
		path:        "save",
		brief:       "Save the current patch",
		description: "Write the current patch to a file.",
		usage:       "patch save <filename>",
		handler:     (*Host).cmdPatchSave,
	})
	addCommand(pa, "patch", &command{
		path:        "load",
		brief:       "Load a patch",
		description: "Read a patch file and make it the current patch.",
		usage:       "patch load <filename>",
		handler:     (*Host).cmdPatchLoad,
	})
	addCommand(pa, "patch", &command{
		path:        "list",
		brief:       "List patch records",
		description: "Display the address range of each record in the current patch.",
		usage:       "patch list",
		handler:     (*Host).cmdPatchList,
	})
	addCommand(pa, "patch", &command{
		path:  "disassemble",
		brief: "Disassemble a patch record",
		description: "Disassemble the bytes of a patch record. The CPU" +
			" address the record runs at may be specified; by default it" +
			" is the record's own start address. The number of lines to" +
			" disassemble may be specified as an option.",
		usage:   "patch disassemble <record> [<address>] [<lines>]",
		handler: (*Host).cmdPatchDisassemble,
	})
	addCommand(pa, "patch", &command{
		path:  "apply",
		brief: "Apply the current patch to a file",
		description: "Apply the current patch to the contents of a file" +
			" and write the result to the output file, or back to the" +
			" same file if no output file is given.",
		usage:   "patch apply <filename> [<output>]",
		handler: (*Host).cmdPatchApply,
	})

	addCommand(root, "", &command{
		path:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		handler:     (*Host).cmdQuit,
	})
	addCommand(root, "", &command{
		path:  "source",
		brief: "Find the source line of an address",
		description: "Display the source line whose bytes were written at a" +
			" PRG offset, and every source line written at the same address" +
			" seen as a CPU address.",
		usage:   "source <address>",
		handler: (*Host).cmdSource,
	})
	addCommand(root, "", &command{
		path:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		usage:   "set [<var> <value>]",
		handler: (*Host).cmdSet,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble file")
	root.AddShortcut("e", "evaluate")
	root.AddShortcut("pb", "patch build")
	root.AddShortcut("ps", "patch save")
	root.AddShortcut("pl", "patch list")
	root.AddShortcut("pd", "patch disassemble")
	root.AddShortcut("?", "help")

	cmds = root
}
