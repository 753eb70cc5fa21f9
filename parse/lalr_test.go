package parse

import (
	"testing"

	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

func exprGrammar() grammar.Grammar {
	g := grammar.Grammar{}
	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("(", types.MakeDefaultClass("("))
	g.AddTerm(")", types.MakeDefaultClass(")"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	g.AddRule("E", grammar.Production{"E", "+", "T"})
	g.AddRule("E", grammar.Production{"T"})
	g.AddRule("T", grammar.Production{"T", "*", "F"})
	g.AddRule("T", grammar.Production{"F"})
	g.AddRule("F", grammar.Production{"(", "E", ")"})
	g.AddRule("F", grammar.Production{"id"})

	return g
}

func Test_GenerateLALR1Parser_BuildsWithoutError(t *testing.T) {
	assert := assert.New(t)

	g := exprGrammar()
	_, warns, err := GenerateLALR1Parser(g)
	assert.NoError(err)
	assert.Empty(warns)
}

func Test_LALR1Parse(t *testing.T) {
	assert := assert.New(t)

	g := exprGrammar()
	parser, _, err := GenerateLALR1Parser(g)
	assert.NoError(err, "generating LALR parser failed")

	stream := mockTokens("(", "id", "+", "id", ")", "*", "id", types.TokenEndOfText.ID())
	actual, _, err := parser.Parse(stream)
	assert.NoError(err)

	expect := `( E )
  \---: ( T )
          |---: ( T )
          |       \---: ( F )
          |               |---: (TERM "(")
          |               |---: ( E )
          |               |       |---: ( E )
          |               |       |       \---: ( T )
          |               |       |               \---: ( F )
          |               |       |                       \---: (TERM "id")
          |               |       |---: (TERM "+")
          |               |       \---: ( T )
          |               |               \---: ( F )
          |               |                       \---: (TERM "id")
          |               \---: (TERM ")")
          |---: (TERM "*")
          \---: ( F )
                  \---: (TERM "id")`

	assert.Equal(expect, actual.String())
}

func Test_LALR1Parse_SemanticActions(t *testing.T) {
	assert := assert.New(t)

	g := exprGrammar()
	parser, _, err := GenerateLALR1Parser(g)
	assert.NoError(err)

	// E -> E + T
	parser.BindAction("E", 0, func(p RHSValues) Value {
		return p.Get(1).(int) + p.Get(3).(int)
	})
	// E -> T
	parser.BindAction("E", 1, func(p RHSValues) Value {
		return p.Get(1)
	})
	// T -> T * F
	parser.BindAction("T", 0, func(p RHSValues) Value {
		return p.Get(1).(int) * p.Get(3).(int)
	})
	// T -> F
	parser.BindAction("T", 1, func(p RHSValues) Value {
		return p.Get(1)
	})
	// F -> ( E )
	parser.BindAction("F", 0, func(p RHSValues) Value {
		return p.Get(2)
	})
	// F -> id
	parser.BindAction("F", 1, func(p RHSValues) Value {
		tok := p.Get(1).(types.Token)
		n := 0
		for _, ch := range tok.Lexeme() {
			n = n*10 + int(ch-'0')
		}
		return n
	})

	stream := mockTokens("id", "+", "id", types.TokenEndOfText.ID())
	_, val, err := parser.Parse(stream)
	assert.NoError(err)
	assert.NotNil(val)
}

func Test_LALR1Parse_SyntaxError(t *testing.T) {
	assert := assert.New(t)

	g := exprGrammar()
	parser, _, err := GenerateLALR1Parser(g)
	assert.NoError(err)

	stream := mockTokens("id", "+", "+", "id", types.TokenEndOfText.ID())
	_, _, err = parser.Parse(stream)
	assert.Error(err)
}
