package icterrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BuildError_Error(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("no start symbol declared", NewBuildError("no start symbol declared").Error())

	withSym := NewBuildErrorForSymbol("undefined nonterminal", "expr")
	assert.Equal("expr: undefined nonterminal", withSym.Error())
	assert.Equal(withSym.Error(), withSym.FullMessage())
}

func Test_LexError_Error_NoPosition(t *testing.T) {
	assert := assert.New(t)

	e := NewLexError("no rule matches remaining input")
	assert.Equal("no rule matches remaining input", e.Error())
	assert.Equal(e.Error(), e.FullMessage())
}

func Test_LexError_FullMessage_WithPosition(t *testing.T) {
	assert := assert.New(t)

	e := NewLexErrorFromPosition("unexpected character", 3, 5, "x = @foo")
	assert.Equal("line 3:5: unexpected character", e.Error())

	full := e.FullMessage()
	assert.Contains(full, "x = @foo")
	assert.Contains(full, "^")
}

func Test_SyntaxError_FromToken(t *testing.T) {
	assert := assert.New(t)

	tok := fakeTokenPosition{line: 2, linePos: 4, fullLine: "1 + ", lexeme: ""}
	e := NewSyntaxErrorFromToken("unexpected end of input", tok)

	assert.Equal("line 2:4: unexpected end of input", e.Error())
	assert.Contains(e.FullMessage(), "1 + ")
}

func Test_SyntaxError_FromPosition_NoPos(t *testing.T) {
	assert := assert.New(t)

	e := NewSyntaxErrorFromPosition("unexpected token", 0, 0, "")
	// line 0 still counts as "has position" since it goes through the
	// explicit constructor, unlike NewSyntaxError.
	assert.Contains(e.Error(), "unexpected token")

	bare := NewSyntaxError("unexpected token")
	assert.Equal("unexpected token", bare.Error())
	assert.Equal(bare.Error(), bare.FullMessage())
}

func Test_Errors_UnwrapNilCauseIsNil(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(errors.Unwrap(NewBuildError("x")))
	assert.Nil(errors.Unwrap(NewLexError("x")))
	assert.Nil(errors.Unwrap(NewSyntaxError("x")))
}

type fakeTokenPosition struct {
	line     int
	linePos  int
	fullLine string
	lexeme   string
}

func (f fakeTokenPosition) Line() int        { return f.line }
func (f fakeTokenPosition) LinePos() int     { return f.linePos }
func (f fakeTokenPosition) FullLine() string { return f.fullLine }
func (f fakeTokenPosition) Lexeme() string   { return f.lexeme }
