// Package icterrors defines the error types returned from grammar
// construction, lexing, and parsing: BuildError for problems found while
// compiling a grammar or scanner, LexError for problems found while scanning
// source text, and SyntaxError for problems found while parsing a token
// stream.
package icterrors

import (
	"fmt"
	"strings"
)

// sourceContext carries the information needed to render a caret-pointer
// under the offending text in FullMessage.
type sourceContext struct {
	hasPos   bool
	line     int
	linePos  int
	fullLine string
}

// BuildError is returned when a grammar, scanner, or parse table cannot be
// constructed, such as an ambiguous grammar or an undefined nonterminal.
type BuildError struct {
	msg     string
	Symbol  string
	cause   error
}

// NewBuildError creates a BuildError not tied to a particular symbol.
func NewBuildError(msg string) *BuildError {
	return &BuildError{msg: msg}
}

// NewBuildErrorForSymbol creates a BuildError reporting a problem with the
// named grammar symbol.
func NewBuildErrorForSymbol(msg string, symbol string) *BuildError {
	return &BuildError{msg: msg, Symbol: symbol}
}

func (e *BuildError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s", e.Symbol, e.msg)
	}
	return e.msg
}

func (e *BuildError) FullMessage() string {
	return e.Error()
}

func (e *BuildError) Unwrap() error {
	return e.cause
}

// LexError is returned when the scanner cannot match any rule against the
// remaining input.
type LexError struct {
	msg string
	sourceContext
	cause error
}

// NewLexError creates a LexError with no position information.
func NewLexError(msg string) *LexError {
	return &LexError{msg: msg}
}

// NewLexErrorFromPosition creates a LexError pointing at a specific location
// in the source text.
func NewLexErrorFromPosition(msg string, line, linePos int, fullLine string) *LexError {
	return &LexError{
		msg: msg,
		sourceContext: sourceContext{
			hasPos:   true,
			line:     line,
			linePos:  linePos,
			fullLine: fullLine,
		},
	}
}

func (e *LexError) Error() string {
	if !e.hasPos {
		return e.msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.line, e.linePos, e.msg)
}

// FullMessage renders the error along with the offending source line and a
// caret pointing at the column the error occurred on.
func (e *LexError) FullMessage() string {
	if !e.hasPos {
		return e.msg
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s\n", e.line, e.msg)
	sb.WriteString(e.fullLine)
	sb.WriteRune('\n')
	for i := 1; i < e.linePos; i++ {
		sb.WriteRune(' ')
	}
	sb.WriteRune('^')
	return sb.String()
}

func (e *LexError) Unwrap() error {
	return e.cause
}

// tokenPosition is the minimal surface perch needs from a types.Token to
// build a SyntaxError without importing the types package (which would
// create an import cycle, since types wraps errors raised during token
// construction in some call sites).
type tokenPosition interface {
	Line() int
	LinePos() int
	FullLine() string
	Lexeme() string
}

// SyntaxError is returned when a token stream does not conform to the
// grammar being parsed, or when the scanner surfaces an error token to an
// immediate lexer.
type SyntaxError struct {
	msg string
	sourceContext
	lexeme string
	cause  error
}

// NewSyntaxError creates a SyntaxError with no position information.
func NewSyntaxError(msg string) *SyntaxError {
	return &SyntaxError{msg: msg}
}

// NewSyntaxErrorFromToken creates a SyntaxError pointing at the position of
// the given token.
func NewSyntaxErrorFromToken(msg string, tok tokenPosition) *SyntaxError {
	return &SyntaxError{
		msg:    msg,
		lexeme: tok.Lexeme(),
		sourceContext: sourceContext{
			hasPos:   true,
			line:     tok.Line(),
			linePos:  tok.LinePos(),
			fullLine: tok.FullLine(),
		},
	}
}

// NewSyntaxErrorFromPosition creates a SyntaxError pointing at an explicit
// line/column in the source text.
func NewSyntaxErrorFromPosition(msg string, line, linePos int, fullLine string) *SyntaxError {
	return &SyntaxError{
		msg: msg,
		sourceContext: sourceContext{
			hasPos:   true,
			line:     line,
			linePos:  linePos,
			fullLine: fullLine,
		},
	}
}

func (e *SyntaxError) Error() string {
	if !e.hasPos {
		return e.msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.line, e.linePos, e.msg)
}

// FullMessage renders the error along with the offending source line and a
// caret pointing at the column the error occurred on.
func (e *SyntaxError) FullMessage() string {
	if !e.hasPos {
		return e.msg
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s\n", e.line, e.msg)
	sb.WriteString(e.fullLine)
	sb.WriteRune('\n')
	for i := 1; i < e.linePos; i++ {
		sb.WriteRune(' ')
	}
	sb.WriteRune('^')
	return sb.String()
}

func (e *SyntaxError) Unwrap() error {
	return e.cause
}
