package lex

import (
	"strings"
	"testing"

	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

var (
	tcNumber = types.MakeDefaultClass("NUMBER")
	tcID     = types.MakeDefaultClass("ID")
	tcIf     = types.MakeDefaultClass("IF")
	tcElse   = types.MakeDefaultClass("ELSE")
	tcPlus   = types.MakeDefaultClass("+")
)

func Test_Lex_LiteralFallback(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcNumber)
	assert.NoError(lx.AddToken("NUMBER", `[0-9]+`, nil))
	lx.AddLiteral('+')

	stream, err := lx.Lex(strings.NewReader("1+2"))
	assert.NoError(err)

	tok1 := stream.Next()
	assert.Equal("NUMBER", tok1.Class().ID())
	assert.Equal("1", tok1.Lexeme())

	tok2 := stream.Next()
	assert.Equal("+", tok2.Lexeme())

	tok3 := stream.Next()
	assert.Equal("NUMBER", tok3.Class().ID())
	assert.Equal("2", tok3.Lexeme())

	tok4 := stream.Next()
	assert.Equal(types.TokenEndOfText.ID(), tok4.Class().ID())
}

func Test_Lex_KeywordRemap(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcID)
	lx.AddClass(tcIf)
	lx.AddClass(tcElse)
	assert.NoError(lx.AddToken("ID", `[a-zA-Z_][a-zA-Z0-9_]*`, nil))
	assert.NoError(lx.RemapKeyword("ID", "if", "IF"))
	assert.NoError(lx.RemapKeyword("ID", "else", "ELSE"))
	lx.SetIgnore(" ")

	stream, err := lx.LexImmediate(strings.NewReader("if else foo"))
	assert.NoError(err)

	tok1 := stream.Next()
	assert.Equal("IF", tok1.Class().ID())
	assert.Equal("if", tok1.Lexeme())

	tok2 := stream.Next()
	assert.Equal("ELSE", tok2.Class().ID())

	tok3 := stream.Next()
	assert.Equal("ID", tok3.Class().ID())
	assert.Equal("foo", tok3.Lexeme())
}

func Test_Lex_IgnorePrefix_DroppedButActionRuns(t *testing.T) {
	assert := assert.New(t)

	var linesSeen []int

	lx := NewLexer()
	lx.AddClass(tcID)
	lx.AddClass(types.MakeDefaultClass("ignore_newline"))
	assert.NoError(lx.AddToken("ID", `[a-zA-Z]+`, nil))
	assert.NoError(lx.AddToken("ignore_newline", `\n+`, func(tok *MutableToken, line int) (MutableToken, bool) {
		linesSeen = append(linesSeen, line)
		updated := *tok
		updated.Line = line + strings.Count(tok.Value, "\n")
		return updated, true
	}))
	lx.SetIgnore(" ")

	stream, err := lx.LexImmediate(strings.NewReader("foo\n\nbar"))
	assert.NoError(err)

	tok1 := stream.Next()
	assert.Equal("foo", tok1.Lexeme())
	assert.Equal(1, tok1.Line())

	tok2 := stream.Next()
	assert.Equal("bar", tok2.Lexeme())
	assert.Equal(3, tok2.Line())

	assert.Equal([]int{1}, linesSeen)
}

func Test_Lex_LongestMatchWins(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcIf)
	lx.AddClass(tcID)
	assert.NoError(lx.AddToken("IF", `if`, nil))
	assert.NoError(lx.AddToken("ID", `[a-zA-Z]+`, nil))

	stream, err := lx.LexImmediate(strings.NewReader("iffy"))
	assert.NoError(err)

	tok := stream.Next()
	assert.Equal("ID", tok.Class().ID())
	assert.Equal("iffy", tok.Lexeme())
}

func Test_Lex_ErrorHandler_MakesProgress(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcID)
	assert.NoError(lx.AddToken("ID", `[a-zA-Z]+`, nil))
	lx.SetErrorHandler(func(remaining string, line int) (types.Token, bool, int) {
		return nil, false, 1
	})

	stream, err := lx.LexImmediate(strings.NewReader("abc#def"))
	assert.NoError(err)

	tok1 := stream.Next()
	assert.Equal("abc", tok1.Lexeme())
	tok2 := stream.Next()
	assert.Equal("def", tok2.Lexeme())
}

func Test_Lex_NoErrorHandler_YieldsErrorToken(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcID)
	assert.NoError(lx.AddToken("ID", `[a-zA-Z]+`, nil))

	stream, err := lx.Lex(strings.NewReader("abc#def"))
	assert.NoError(err)

	tok1 := stream.Next()
	assert.Equal("abc", tok1.Lexeme())

	tok2 := stream.Next()
	assert.Equal(types.TokenError.ID(), tok2.Class().ID())
}

func Test_Lex_AddToken_RejectsEmptyMatch(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	lx.AddClass(tcID)
	err := lx.AddToken("ID", `[a-zA-Z]*`, nil)
	assert.Error(err)
}

func Test_Lex_AddToken_RequiresDeclaredClass(t *testing.T) {
	assert := assert.New(t)

	lx := NewLexer()
	err := lx.AddToken("ID", `[a-zA-Z]+`, nil)
	assert.Error(err)
}
