// Package assembler implements the two-pass VLBC assembler (§4.3): label
// resolution for branches, string interning into a per-module pool, and
// structural validation of the emitted code before a module is handed back
// to the caller. The overall shape — a struct holding a token cursor plus
// accumulated output, walked by small per-construct methods — mirrors the
// Nilan front end's parser.Parser and compiler.ASTCompiler.
package assembler

import (
	"encoding/binary"
	"fmt"

	"vlbc/asmlex"
	"vlbc/asmtoken"
	"vlbc/opcode"
	"vlbc/strpool"
	"vlbc/vlbcfile"
)

type pendingRef struct {
	label       string
	patchOffset int
	line        int
}

// Assembler holds the state of one assembly pass over a token stream.
type Assembler struct {
	tokens []asmtoken.Token
	pos    int

	code    []byte
	pool    *strpool.Pool
	labels  map[string]int
	pending []pendingRef
	errs    ErrorList
}

// Assemble translates ASM source text (§6.3) into a validated VLBC module.
func Assemble(source string) (*vlbcfile.Module, error) {
	tokens, err := asmlex.New(source).Scan()
	if err != nil {
		return nil, ErrorList{{Kind: LexError, Message: err.Error()}}
	}

	a := &Assembler{
		tokens: tokens,
		pool:   strpool.New(),
		labels: make(map[string]int),
	}
	a.pass1()
	a.pass2()
	if len(a.errs) > 0 {
		return nil, a.errs
	}

	m := &vlbcfile.Module{Version: vlbcfile.Version1, Strings: a.pool.Strings(), Code: a.code}
	if err := vlbcfile.Validate(m.Code, m.KCount()); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *Assembler) fail(kind Kind, line, column int, format string, args ...any) {
	a.errs = append(a.errs, &Error{Kind: kind, Line: line, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (a *Assembler) cur() asmtoken.Token {
	if a.pos >= len(a.tokens) {
		return asmtoken.Token{Type: asmtoken.EOF}
	}
	return a.tokens[a.pos]
}

func (a *Assembler) advance() asmtoken.Token {
	tok := a.cur()
	if a.pos < len(a.tokens) {
		a.pos++
	}
	return tok
}

// nextLine collects all tokens up to (excluding) the next NEWLINE/EOF,
// ignoring COMMA tokens since commas between operands are optional (§4.3).
func (a *Assembler) nextLine() []asmtoken.Token {
	var line []asmtoken.Token
	for a.cur().Type != asmtoken.NEWLINE && a.cur().Type != asmtoken.EOF {
		tok := a.advance()
		if tok.Type != asmtoken.COMMA {
			line = append(line, tok)
		}
	}
	if a.cur().Type == asmtoken.NEWLINE {
		a.advance()
	}
	return line
}

// pass1 walks every line, recording labels and emitting instructions. A
// branch to a not-yet-defined label is emitted with a placeholder rel32 and
// a pending reference (§4.3 "Two-pass emission").
func (a *Assembler) pass1() {
	for a.cur().Type != asmtoken.EOF {
		line := a.nextLine()
		a.assembleLine(line)
	}
}

func (a *Assembler) assembleLine(line []asmtoken.Token) {
	idx := 0
	if len(line) >= 2 && line[0].Type == asmtoken.IDENT && line[1].Type == asmtoken.COLON {
		name := line[0].Lexeme
		if _, exists := a.labels[name]; exists {
			a.fail(SyntaxError, line[0].Line, line[0].Column, "label %q already defined", name)
		} else {
			a.labels[name] = len(a.code)
		}
		idx = 2
	}
	if idx >= len(line) {
		return // label-only line, or blank line
	}

	mnemonicTok := line[idx]
	if mnemonicTok.Type != asmtoken.IDENT {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "expected a mnemonic, got %q", mnemonicTok.Lexeme)
		return
	}
	op, ok := opcode.Lookup(mnemonicTok.Lexeme)
	if !ok {
		a.fail(UnknownMnemonic, mnemonicTok.Line, mnemonicTok.Column, "unknown mnemonic %q", mnemonicTok.Lexeme)
		return
	}
	operands := line[idx+1:]

	switch op {
	case opcode.NOP, opcode.ADD, opcode.SUB, opcode.MUL, opcode.DIV,
		opcode.EQ, opcode.NEQ, opcode.LT, opcode.GT, opcode.LE, opcode.GE,
		opcode.POP, opcode.PRINT, opcode.HALT:
		a.emitNoOperand(op, mnemonicTok, operands)

	case opcode.PUSHI:
		a.emitPushi(mnemonicTok, operands)
	case opcode.PUSHF:
		a.emitPushf(mnemonicTok, operands)
	case opcode.PUSHS, opcode.STOREG, opcode.LOADG:
		a.emitNamedPoolOp(op, mnemonicTok, operands)
	case opcode.CALLN:
		a.emitCalln(mnemonicTok, operands)
	case opcode.JZ, opcode.JNZ:
		a.emitBranch(op, mnemonicTok, operands)
	default:
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "no encoding rule registered for %s", op)
	}
}

func (a *Assembler) emitNoOperand(op opcode.Op, mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 0 {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "%s takes no operands", op)
		return
	}
	a.emit(op, mnemonicTok)
}

func (a *Assembler) emitPushi(mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 1 || operands[0].Type != asmtoken.INT {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "PUSHI expects a single integer operand")
		return
	}
	a.emit(opcode.PUSHI, mnemonicTok, operands[0].Literal.(int64))
}

func (a *Assembler) emitPushf(mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 1 {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "PUSHF expects a single float operand")
		return
	}
	var value float64
	switch operands[0].Type {
	case asmtoken.FLOAT:
		value = operands[0].Literal.(float64)
	case asmtoken.INT:
		value = float64(operands[0].Literal.(int64))
	default:
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "PUSHF expects a numeric operand")
		return
	}
	a.emit(opcode.PUSHF, mnemonicTok, opcode.EncodeFloat(value))
}

// emitNamedPoolOp handles PUSHS/STOREG/LOADG, each of which takes a name
// (identifier or string literal) that is interned into the string pool
// (§4.3 "PUSHS, LOADG, STOREG take a name").
func (a *Assembler) emitNamedPoolOp(op opcode.Op, mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 1 || !isNameToken(operands[0]) {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "%s expects a single name operand", op)
		return
	}
	idx, err := a.pool.Intern(nameOf(operands[0]))
	if err != nil {
		a.fail(OperandRange, mnemonicTok.Line, mnemonicTok.Column, "%v", err)
		return
	}
	a.emit(op, mnemonicTok, int64(idx))
}

// emitCalln handles CALL/CALLN's name plus argc in [0,255] (§4.3).
func (a *Assembler) emitCalln(mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 2 || !isNameToken(operands[0]) || operands[1].Type != asmtoken.INT {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "CALLN expects a name and an integer argc")
		return
	}
	argc := operands[1].Literal.(int64)
	if argc < 0 || argc > 255 {
		a.fail(OperandRange, mnemonicTok.Line, mnemonicTok.Column, "CALLN argc %d out of range [0,255]", argc)
		return
	}
	idx, err := a.pool.Intern(nameOf(operands[0]))
	if err != nil {
		a.fail(OperandRange, mnemonicTok.Line, mnemonicTok.Column, "%v", err)
		return
	}
	a.emit(opcode.CALLN, mnemonicTok, int64(idx), argc)
}

// emitBranch handles JZ/JNZ, whose sole operand is a label name (§4.3
// "Branch operands must be identifier names"). The rel32 operand is
// written as a placeholder and backpatched in pass2.
func (a *Assembler) emitBranch(op opcode.Op, mnemonicTok asmtoken.Token, operands []asmtoken.Token) {
	if len(operands) != 1 || operands[0].Type != asmtoken.IDENT {
		a.fail(SyntaxError, mnemonicTok.Line, mnemonicTok.Column, "%s expects a single label operand", op)
		return
	}
	patchOffset := len(a.code) + 1 // +1 to skip the opcode byte
	a.emit(op, mnemonicTok, 0)
	a.pending = append(a.pending, pendingRef{label: operands[0].Lexeme, patchOffset: patchOffset, line: mnemonicTok.Line})
}

func (a *Assembler) emit(op opcode.Op, mnemonicTok asmtoken.Token, operands ...int64) {
	instr, err := opcode.Encode(op, operands...)
	if err != nil {
		a.fail(OperandRange, mnemonicTok.Line, mnemonicTok.Column, "%v", err)
		return
	}
	a.code = append(a.code, instr...)
}

// pass2 resolves every pending branch reference (§4.3 "Pass 2").
// Unresolved labels are all reported before assembly aborts.
func (a *Assembler) pass2() {
	for _, ref := range a.pending {
		target, ok := a.labels[ref.label]
		if !ok {
			a.fail(UndefinedLabel, ref.line, 0, "undefined label %q", ref.label)
			continue
		}
		rel := int32(target - (ref.patchOffset + 4))
		binary.LittleEndian.PutUint32(a.code[ref.patchOffset:ref.patchOffset+4], uint32(rel))
	}
}

func isNameToken(t asmtoken.Token) bool {
	return t.Type == asmtoken.IDENT || t.Type == asmtoken.STRING
}

func nameOf(t asmtoken.Token) string {
	if t.Type == asmtoken.STRING {
		return t.Literal.(string)
	}
	return t.Lexeme
}
