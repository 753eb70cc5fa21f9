package parse

import (
	"testing"

	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

func Test_GenerateCanonicalLR1Parser_BuildsWithoutError(t *testing.T) {
	assert := assert.New(t)

	g := exprGrammar()
	_, warns, err := GenerateCanonicalLR1Parser(g)
	assert.NoError(err)
	assert.Empty(warns)
}

func Test_CLR1Parse_ClassicGrammar455(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Grammar{}
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("d", types.MakeDefaultClass("d"))
	g.AddRule("S", grammar.Production{"C", "C"})
	g.AddRule("C", grammar.Production{"c", "C"})
	g.AddRule("C", grammar.Production{"d"})

	parser, warns, err := GenerateCanonicalLR1Parser(g)
	assert.NoError(err)
	assert.Empty(warns)

	stream := mockTokens("d", "d", types.TokenEndOfText.ID())
	_, _, err = parser.Parse(stream)
	assert.NoError(err)
}

func Test_CLR1Parse_PrecedenceResolvesAmbiguity(t *testing.T) {
	assert := assert.New(t)

	g := precedenceGrammar()
	parser, warns, err := GenerateCanonicalLR1Parser(g)
	assert.NoError(err)
	assert.NotEmpty(warns)

	// "id + id * id" should parse as "id + (id * id)" since * binds tighter.
	stream := mockTokens("id", "+", "id", "*", "id", types.TokenEndOfText.ID())
	_, _, err = parser.Parse(stream)
	assert.NoError(err)
}
