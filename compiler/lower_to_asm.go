package compiler

// This file implements LowerToASM, a visitor that walks the Nilan AST and
// emits VLBC textual assembly (§6.3) instead of bytecode. It exists so a
// `.nil` source can be driven through `compile` exactly like a hand-written
// `.asm` source: lex -> parse -> LowerToASM -> assembler.Assemble. It walks
// the same ast.ExpressionVisitor/ast.StmtVisitor interfaces as ASTCompiler,
// but its output is text, not Bytecode.
//
// The VLBC instruction set (§6.2) has no unconditional jump and no DUP, so
// control flow and short-circuit logical operators are synthesized from
// JZ/JNZ plus a "push 1, JNZ target" idiom for an unconditional jump.

import (
	"fmt"
	"strings"

	"vlbc/ast"
	"vlbc/token"
)

// asmLowerer implements ast.ExpressionVisitor and ast.StmtVisitor, emitting
// one line of VLBC assembly per Accept call into buf.
type asmLowerer struct {
	buf       strings.Builder
	nextLabel int
	err       error
}

// LowerToASM renders statements as VLBC textual assembly, followed by a
// trailing HALT so the result is a complete, directly assemblable program.
func LowerToASM(statements []ast.Stmt) (string, error) {
	l := &asmLowerer{}
	for _, stmt := range statements {
		if l.err != nil {
			break
		}
		stmt.Accept(l)
	}
	if l.err != nil {
		return "", l.err
	}
	l.line("HALT")
	return l.buf.String(), nil
}

func (l *asmLowerer) line(format string, args ...any) {
	fmt.Fprintf(&l.buf, format+"\n", args...)
}

func (l *asmLowerer) label() string {
	name := fmt.Sprintf("L%d", l.nextLabel)
	l.nextLabel++
	return name
}

func (l *asmLowerer) fail(format string, args ...any) {
	if l.err == nil {
		l.err = fmt.Errorf(format, args...)
	}
}

// quote renders s as a VLBC assembly string literal (§6.3), escaping only
// the characters asmlex.scanString actually recognizes.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// emitUnconditionalJump synthesizes "goto target" from the VLBC instruction
// set, which has no unconditional jump opcode: push a truthy value, then
// branch on it.
func (l *asmLowerer) emitUnconditionalJump(target string) {
	l.line("PUSHI 1")
	l.line("JNZ %s", target)
}

// --- ast.ExpressionVisitor ---

func (l *asmLowerer) VisitBinary(binary ast.Binary) any {
	binary.Left.Accept(l)
	binary.Right.Accept(l)
	switch binary.Operator.TokenType {
	case token.ADD:
		l.line("ADD")
	case token.SUB:
		l.line("SUB")
	case token.MULT:
		l.line("MUL")
	case token.DIV:
		l.line("DIV")
	case token.EQUAL_EQUAL:
		l.line("EQ")
	case token.NOT_EQUAL:
		l.line("NEQ")
	case token.LESS:
		l.line("LT")
	case token.LARGER:
		l.line("GT")
	case token.LESS_EQUAL:
		l.line("LE")
	case token.LARGER_EQUAL:
		l.line("GE")
	default:
		l.fail("lower_to_asm: unsupported binary operator %q", binary.Operator.Lexeme)
	}
	return nil
}

// VisitUnary simulates negation as "0 - x" and logical not as "x == 0",
// since VLBC v1 has no dedicated NEG/NOT opcode.
func (l *asmLowerer) VisitUnary(unary ast.Unary) any {
	switch unary.Operator.TokenType {
	case token.SUB:
		l.line("PUSHI 0")
		unary.Right.Accept(l)
		l.line("SUB")
	case token.BANG:
		unary.Right.Accept(l)
		l.line("PUSHI 0")
		l.line("EQ")
	default:
		l.fail("lower_to_asm: unsupported unary operator %q", unary.Operator.Lexeme)
	}
	return nil
}

func (l *asmLowerer) VisitLiteral(literal ast.Literal) any {
	switch v := literal.Value.(type) {
	case int:
		l.line("PUSHI %d", v)
	case int64:
		l.line("PUSHI %d", v)
	case float64:
		l.line("PUSHF %g", v)
	case string:
		l.line("PUSHS %s", quote(v))
	case bool:
		if v {
			l.line("PUSHI 1")
		} else {
			l.line("PUSHI 0")
		}
	case nil:
		l.line("PUSHI 0")
	default:
		l.fail("lower_to_asm: unsupported literal type %T", literal.Value)
	}
	return nil
}

func (l *asmLowerer) VisitGrouping(grouping ast.Grouping) any {
	grouping.Expression.Accept(l)
	return nil
}

func (l *asmLowerer) VisitVariableExpression(variable ast.Variable) any {
	l.line("LOADG %s", variable.Name.Lexeme)
	return nil
}

func (l *asmLowerer) VisitAssignExpression(assign ast.Assign) any {
	assign.Value.Accept(l)
	l.line("STOREG %s", assign.Name.Lexeme)
	l.line("LOADG %s", assign.Name.Lexeme)
	return nil
}

// VisitLogicalExpression synthesizes short-circuiting "and"/"or": the
// untaken branch's value is never computed, matching Nilan's semantics,
// though the falsy placeholder pushed is always 0 rather than the actual
// left-hand value (VLBC v1 has no DUP to preserve it across the test).
func (l *asmLowerer) VisitLogicalExpression(logical ast.Logical) any {
	switch logical.Operator.TokenType {
	case token.AND:
		falseLabel := l.label()
		endLabel := l.label()
		logical.Left.Accept(l)
		l.line("JZ %s", falseLabel)
		logical.Right.Accept(l)
		l.emitUnconditionalJump(endLabel)
		l.line("%s:", falseLabel)
		l.line("PUSHI 0")
		l.line("%s:", endLabel)
	case token.OR:
		rightLabel := l.label()
		endLabel := l.label()
		logical.Left.Accept(l)
		l.line("JZ %s", rightLabel)
		l.line("PUSHI 1")
		l.emitUnconditionalJump(endLabel)
		l.line("%s:", rightLabel)
		logical.Right.Accept(l)
		l.line("%s:", endLabel)
	default:
		l.fail("lower_to_asm: unsupported logical operator %q", logical.Operator.Lexeme)
	}
	return nil
}

// --- ast.StmtVisitor ---

func (l *asmLowerer) VisitExpressionStmt(exprStmt ast.ExpressionStmt) any {
	exprStmt.Expression.Accept(l)
	l.line("POP")
	return nil
}

func (l *asmLowerer) VisitPrintStmt(printStmt ast.PrintStmt) any {
	printStmt.Expression.Accept(l)
	l.line("PRINT")
	return nil
}

func (l *asmLowerer) VisitVarStmt(varStmt ast.VarStmt) any {
	if varStmt.Initializer != nil {
		varStmt.Initializer.Accept(l)
	} else {
		l.line("PUSHI 0")
	}
	l.line("STOREG %s", varStmt.Name.Lexeme)
	return nil
}

func (l *asmLowerer) VisitBlockStmt(blockStmt ast.BlockStmt) any {
	for _, stmt := range blockStmt.Statements {
		stmt.Accept(l)
	}
	return nil
}

func (l *asmLowerer) VisitIfStmt(ifStmt ast.IfStmt) any {
	ifStmt.Condition.Accept(l)
	elseLabel := l.label()
	endLabel := l.label()
	l.line("JZ %s", elseLabel)
	ifStmt.Then.Accept(l)
	l.emitUnconditionalJump(endLabel)
	l.line("%s:", elseLabel)
	if ifStmt.Else != nil {
		ifStmt.Else.Accept(l)
	}
	l.line("%s:", endLabel)
	return nil
}

func (l *asmLowerer) VisitWhileStmt(whileStmt ast.WhileStmt) any {
	startLabel := l.label()
	endLabel := l.label()
	l.line("%s:", startLabel)
	whileStmt.Condition.Accept(l)
	l.line("JZ %s", endLabel)
	whileStmt.Body.Accept(l)
	l.emitUnconditionalJump(startLabel)
	l.line("%s:", endLabel)
	return nil
}
