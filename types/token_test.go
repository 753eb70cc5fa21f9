package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewToken_Accessors(t *testing.T) {
	assert := assert.New(t)

	cl := MakeDefaultClass("NUMBER")
	tok := NewToken(cl, "123", 5, 2, "x = 123", 10)

	assert.Equal(cl, tok.Class())
	assert.Equal("123", tok.Lexeme())
	assert.Equal(5, tok.LinePos())
	assert.Equal(2, tok.Line())
	assert.Equal("x = 123", tok.FullLine())
	assert.Equal(10, tok.BytePos())
}

func Test_Token_String(t *testing.T) {
	assert := assert.New(t)

	tok := NewToken(MakeDefaultClass("ID"), "foo", 1, 1, "foo", 0)
	assert.Contains(tok.String(), "foo")
	assert.Contains(tok.String(), "line 1")
}

func Test_NewTokenClass(t *testing.T) {
	assert := assert.New(t)

	cl := NewTokenClass("num", "NUMBER")
	assert.Equal("num", cl.ID())
	assert.Equal("NUMBER", cl.Human())
}

func Test_TokenClass_Equal(t *testing.T) {
	assert := assert.New(t)

	a := NewTokenClass("id", "ID")
	b := NewTokenClass("id", "IDENTIFIER")
	c := NewTokenClass("num", "NUMBER")

	assert.True(a.Equal(b))
	assert.False(a.Equal(c))
	assert.False(a.Equal("not a class"))
}
