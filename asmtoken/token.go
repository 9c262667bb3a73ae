// Package asmtoken defines the lexical token kinds of the VLBC assembly
// language (§4.3, §6.3). It mirrors the shape of the Nilan front end's
// token package — a TokenType string enum plus a Token struct carrying
// position information — applied to the assembler's simpler grammar.
package asmtoken

import "fmt"

type TokenType string

const (
	IDENT   TokenType = "IDENT"
	INT     TokenType = "INT"
	FLOAT   TokenType = "FLOAT"
	STRING  TokenType = "STRING"
	COLON   TokenType = "COLON"
	COMMA   TokenType = "COMMA"
	NEWLINE TokenType = "NEWLINE"
	EOF     TokenType = "EOF"
)

// Token is one lexical unit produced by asmlex.Lexer.
//
// Fields:
//   - Type: the lexical class of the token.
//   - Lexeme: the exact source text that produced it.
//   - Literal: the parsed value for INT/FLOAT/STRING tokens, nil otherwise.
//   - Line, Column: 1-based source position, used in diagnostics (§4.3).
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q}", t.Type, t.Lexeme)
}
