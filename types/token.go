package types

import "fmt"

// Token is a lexeme read from text combined with the token class it is as
// well as additional supplementary information gathered during lexing to
// inform error reporting.
type Token interface {
	// Class returns the TokenClass of the Token.
	Class() TokenClass

	// Lexeme returns the text that was lexed as the Token, as it appears in
	// the source text.
	Lexeme() string

	// LinePos returns the 1-indexed character-of-line that the token appears
	// on in the source text.
	LinePos() int

	// Line returns the 1-indexed line number of the line that the token
	// appears on in the source text.
	Line() int

	// FullLine returns the full text of the line in source that the token
	// appears on, including both anything that came before the token as well
	// as after it on the line.
	FullLine() string

	// BytePos returns the 0-indexed byte offset into the original input at
	// which the token's lexeme begins.
	BytePos() int

	// String is the string representation.
	String() string
}

// lexerClass is the implementation of TokenClass produced by the scanner
// compiler for rules that aren't registered against a pre-existing class.
type lexerClass struct {
	id   string
	name string
}

func (lc lexerClass) ID() string   { return lc.id }
func (lc lexerClass) Human() string { return lc.name }

func (lc lexerClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		otherPtr, ok := o.(*TokenClass)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	return other.ID() == lc.ID()
}

// NewTokenClass creates a TokenClass with the given unique id and
// human-readable name.
func NewTokenClass(id string, human string) TokenClass {
	return lexerClass{id: id, name: human}
}

// lexerToken is the scanner's concrete Token implementation.
type lexerToken struct {
	class   TokenClass
	lexed   string
	linePos int
	lineNum int
	line    string
	bytePos int
}

// NewToken creates a Token with the given class, lexeme text, and source
// position information.
func NewToken(class TokenClass, lexeme string, linePos, lineNum int, fullLine string, bytePos int) Token {
	return lexerToken{
		class:   class,
		lexed:   lexeme,
		linePos: linePos,
		lineNum: lineNum,
		line:    fullLine,
		bytePos: bytePos,
	}
}

func (lt lexerToken) Class() TokenClass { return lt.class }
func (lt lexerToken) Lexeme() string    { return lt.lexed }
func (lt lexerToken) LinePos() int      { return lt.linePos }
func (lt lexerToken) Line() int         { return lt.lineNum }
func (lt lexerToken) FullLine() string  { return lt.line }
func (lt lexerToken) BytePos() int      { return lt.bytePos }

func (lt lexerToken) String() string {
	return fmt.Sprintf("(%s %q @ line %d, char %d)", lt.class.ID(), lt.lexed, lt.lineNum, lt.linePos)
}
