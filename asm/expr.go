package asm

import (
	"fmt"
	"strconv"
)

//
// exprOp
//

type exprOp byte

const (
	// operators in descending order of precedence

	// unary operations
	opLowByte exprOp = iota
	opHighByte
	opUnaryMinus

	// binary operations
	opMultiply
	opAdd
	opSubtract

	// value "operations"
	opNumber
	opIdentifier

	// pseudo-operations (used only during parsing but not stored in expr's)
	opLeftParen
	opRightParen
)

type opdata struct {
	precedence      byte
	binary          bool
	leftAssociative bool
	symbol          string
	eval            func(a, b int) int
}

var ops = []opdata{
	// unary and binary operations
	{7, false, false, "<", func(a, b int) int { return a & 0xff }},        // lowbyte
	{7, false, false, ">", func(a, b int) int { return (a >> 8) & 0xff }}, // highbyte
	{7, false, false, "-", func(a, b int) int { return -a }},              // uminus
	{6, true, true, "*", func(a, b int) int { return a * b }},             // multiply
	{5, true, true, "+", func(a, b int) int { return a + b }},             // add
	{5, true, true, "-", func(a, b int) int { return a - b }},             // subtract

	// value operations
	{0, false, false, "", nil}, // number
	{0, false, false, "", nil}, // identifier

	// pseudo-operations
	{0, false, false, "", nil}, // lparen
	{0, false, false, "", nil}, // rparen
}

func (op exprOp) isBinary() bool {
	return ops[op].binary
}

func (op exprOp) eval(a, b int) int {
	return ops[op].eval(a, b)
}

func (op exprOp) symbol() string {
	return ops[op].symbol
}

func (op exprOp) isCollapsible() bool {
	return ops[op].precedence > 0
}

// Compare the precendence and associativity of 'op' to 'other'.
// Return true if the shunting yard algorithm should cause an
// expression node collapse.
func (op exprOp) collapses(other exprOp) bool {
	if ops[op].leftAssociative {
		return ops[op].precedence <= ops[other].precedence
	}
	return ops[op].precedence < ops[other].precedence
}

//
// expr
//

// An expr represents a single node in a binary expression tree.
// The root node represents an entire expression.
type expr struct {
	number     int
	identifier string
	op         exprOp
	child0     *expr
	child1     *expr
}

// Return the expression as a postfix notation string.
func (e *expr) String() string {
	switch {
	case e.op == opNumber:
		return fmt.Sprintf("%d", e.number)
	case e.op == opIdentifier:
		return e.identifier
	case e.op.isBinary():
		return fmt.Sprintf("%s %s %s", e.child0.String(), e.child1.String(), e.op.symbol())
	default:
		return fmt.Sprintf("%s [%s]", e.child0.String(), e.op.symbol())
	}
}

//
// token
//

type tokentype byte

const (
	tokenNil tokentype = iota
	tokenOp
	tokenNumber
	tokenIdentifier
	tokenLeftParen
	tokenRightParen
)

func (tt tokentype) isValue() bool {
	return tt == tokenNumber || tt == tokenIdentifier
}

type token struct {
	tt         tokentype
	number     int
	identifier string
	op         exprOp
}

//
// exprParser
//

type exprParser struct {
	operandStack  exprStack
	operatorStack opStack
	parenCounter  int
	prevToken     token
}

// Parse an expression from the string, which must be consumed entirely.
func parseExpr(s string) (*expr, error) {
	var p exprParser
	return p.parse(newFstring(0, 0, s))
}

// Parse an expression from the line until it is exhausted.
func (p *exprParser) parse(line fstring) (e *expr, err error) {
	p.prevToken = token{}
	defer p.reset()

	line = line.consumeWhitespace()
	if line.isEmpty() {
		return nil, p.error(line, "missing expression")
	}

	// Process expression using Dijkstra's shunting-yard algorithm
	for err == nil {

		// Parse the next expression token
		var token token
		var out fstring
		token, out, err = p.parseToken(line)
		if err != nil {
			break
		}

		// We're done when the token parser returns the nil token
		if token.tt == tokenNil {
			break
		}

		// Handle each possible token type
		switch token.tt {

		case tokenNumber:
			p.operandStack.push(&expr{op: opNumber, number: token.number})

		case tokenIdentifier:
			p.operandStack.push(&expr{op: opIdentifier, identifier: token.identifier})

		case tokenOp:
			for err == nil && !p.operatorStack.empty() && token.op.collapses(p.operatorStack.peek()) {
				if p.operandStack.collapse(p.operatorStack.pop()) != nil {
					err = p.error(line, "expression syntax error")
				}
			}
			p.operatorStack.push(token.op)

		case tokenLeftParen:
			p.operatorStack.push(opLeftParen)

		case tokenRightParen:
			for err == nil {
				if p.operatorStack.empty() {
					err = p.error(line, "mismatched parentheses")
					break
				}
				op := p.operatorStack.pop()
				if op == opLeftParen {
					break
				}
				if p.operandStack.collapse(op) != nil {
					err = p.error(line, "expression syntax error")
				}
			}

		}
		line = out
	}
	if err != nil {
		return nil, err
	}

	// Collapse any operators (and operands) remaining on the stack
	for !p.operatorStack.empty() {
		if p.operandStack.collapse(p.operatorStack.pop()) != nil {
			return nil, p.error(line, "expression syntax error")
		}
	}

	if len(p.operandStack.data) != 1 {
		return nil, p.error(line, "expression syntax error")
	}
	return p.operandStack.peek(), nil
}

// Attempt to parse the next token from the line.
func (p *exprParser) parseToken(line fstring) (t token, out fstring, err error) {
	if line.isEmpty() {
		t.tt, out = tokenNil, line
		return
	}

	afterValue := p.prevToken.tt.isValue() || p.prevToken.tt == tokenRightParen
	switch {

	case line.startsWith(numberStartChar):
		if afterValue {
			return t, line, p.error(line, "unexpected number")
		}
		t.tt = tokenNumber
		t.number, out, err = p.parseNumber(line)

	case line.startsWithChar('('):
		if afterValue {
			return t, line, p.error(line, "unexpected '('")
		}
		p.parenCounter++
		t.tt, t.op, out = tokenLeftParen, opLeftParen, line.consume(1)

	case line.startsWithChar(')'):
		if p.parenCounter == 0 {
			return t, line, p.error(line, "mismatched parentheses")
		}
		p.parenCounter--
		t.tt, t.op, out = tokenRightParen, opRightParen, line.consume(1)

	case line.startsWith(identifierStartChar):
		if afterValue {
			return t, line, p.error(line, "unexpected identifier")
		}
		var id fstring
		id, out = line.consumeWhile(identifierChar)
		t.tt, t.identifier = tokenIdentifier, id.str

	case !afterValue && line.startsWithChar('-') && len(line.str) > 1 &&
		(numberStartChar(line.str[1]) || line.str[1] == '('):
		t.tt, t.op, out = tokenOp, opUnaryMinus, line.consume(1)

	case !afterValue && line.startsWith(relativeChar):
		// A run of '+'/'-' in operand position names a relative label,
		// optionally followed by the rest of a label name ("-loop").
		t.tt = tokenIdentifier
		n := line.scanWhile(relativeChar)
		rest := line.consume(n)
		n += rest.scanWhile(identifierChar)
		t.identifier, out = line.str[:n], line.consume(n)

	default:
		for i, o := range ops {
			if o.symbol != "" && line.startsWithString(o.symbol) && o.binary == afterValue {
				t.tt, t.op, out = tokenOp, exprOp(i), line.consume(len(o.symbol))
				break
			}
		}
		if t.tt != tokenOp {
			return t, line, p.error(line, "unexpected character")
		}
	}

	p.prevToken = t
	out = out.consumeWhitespace()
	return
}

// Parse a number from the line. The following numeric formats are allowed:
//
//	$[0-9a-fA-F]+   Hexadecimal number
//	%[01]+          Binary number
//	0[0-7]*         Octal number
//	[1-9][0-9]*     Decimal number
func (p *exprParser) parseNumber(line fstring) (value int, remain fstring, err error) {
	numstr, remain := line.consumeWhile(func(c byte) bool {
		return hexadecimal(c) || c == '$' || c == '%'
	})

	var ok bool
	value, ok = parseNumber(numstr.str)
	if !ok {
		return 0, remain, p.error(numstr, "bad number '"+numstr.str+"'")
	}
	return value, remain, nil
}

// Parse a complete numeric literal, returning false if the string is not
// one.
func parseNumber(s string) (int, bool) {
	base := 10
	switch {
	case len(s) > 1 && s[0] == '$':
		s, base = s[1:], 16
	case len(s) > 1 && s[0] == '%':
		s, base = s[1:], 2
	case len(s) > 0 && s[0] == '0':
		base = 8
	}
	v, err := strconv.ParseInt(s, base, 32)
	if err != nil || v < 0 {
		return 0, false
	}
	return int(v), true
}

func (p *exprParser) error(line fstring, msg string) error {
	if line.isEmpty() {
		return fmt.Errorf("%w: %s", ErrParse, msg)
	}
	return fmt.Errorf("%w: %s at '%s'", ErrParse, msg, line.str)
}

func (p *exprParser) reset() {
	p.operandStack.data, p.operatorStack.data = nil, nil
	p.parenCounter = 0
}

//
// exprStack
//

type exprStack struct {
	data []*expr
}

func (s *exprStack) empty() bool {
	return len(s.data) == 0
}

func (s *exprStack) push(e *expr) {
	s.data = append(s.data, e)
}

func (s *exprStack) pop() *expr {
	l := len(s.data)
	e := s.data[l-1]
	s.data = s.data[:l-1]
	return e
}

func (s *exprStack) peek() *expr {
	if len(s.data) == 0 {
		return nil
	}
	return s.data[len(s.data)-1]
}

// Collapse one or more expression nodes on the top of the
// stack into a combined expression node, and push the combined
// node back onto the stack.
func (s *exprStack) collapse(op exprOp) error {
	switch {
	case !op.isCollapsible():
		return ErrParse
	case op.isBinary():
		if len(s.data) < 2 {
			return ErrParse
		}
		s.push(&expr{op: op, child1: s.pop(), child0: s.pop()})
	default:
		if s.empty() {
			return ErrParse
		}
		s.push(&expr{op: op, child0: s.pop()})
	}
	return nil
}

//
// opStack
//

type opStack struct {
	data []exprOp
}

func (s *opStack) push(op exprOp) {
	s.data = append(s.data, op)
}

func (s *opStack) pop() exprOp {
	op := s.data[len(s.data)-1]
	s.data = s.data[0 : len(s.data)-1]
	return op
}

func (s *opStack) empty() bool {
	return len(s.data) == 0
}

func (s *opStack) peek() exprOp {
	return s.data[len(s.data)-1]
}
