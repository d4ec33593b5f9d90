// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/beevik/term"
	"github.com/romhack/patch6502/host"
)

var (
	assemble string
	output   string
	apply    string
	verbose  bool
)

func init() {
	flag.StringVar(&assemble, "a", "", "assemble file")
	flag.StringVar(&output, "o", "", "write the assembled patch to a file")
	flag.StringVar(&apply, "apply", "", "apply the assembled patch to a ROM file")
	flag.BoolVar(&verbose, "v", false, "verbose assembler output")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: patch6502 [script] ..\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	h := host.New()
	h.SetVerbose(verbose)

	// Do command-line assemble if requested.
	if assemble != "" {
		if err := h.AssembleFile(assemble); err != nil {
			os.Exit(1)
		}
		if output != "" || apply != "" {
			if _, err := h.BuildPatch(); err != nil {
				exitOnError(err)
			}
		}
		if output != "" {
			if err := h.SavePatch(output); err != nil {
				exitOnError(err)
			}
		}
		if apply != "" {
			if err := h.ApplyPatch(apply, apply); err != nil {
				exitOnError(err)
			}
		}
		os.Exit(0)
	}

	// Run commands contained in command-line files.
	for _, filename := range flag.Args() {
		file, err := os.Open(filename)
		if err != nil {
			exitOnError(err)
		}
		ok := h.RunCommands(file, os.Stdout, false)
		file.Close()
		if !ok {
			os.Exit(0)
		}
	}

	// Run commands interactively.
	h.RunCommands(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
