package grammar

import (
	"testing"

	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

var testTCNumber = types.MakeDefaultClass("int")

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		rules     []Rule
		terminals []types.TokenClass
		expectErr bool
	}{
		{
			name:      "empty grammar",
			expectErr: true,
		},
		{
			name: "no rules in grammar",
			terminals: []types.TokenClass{
				testTCNumber,
			},
			expectErr: true,
		},
		{
			name: "no terms in grammar",
			rules: []Rule{{
				NonTerminal: "S",
				Productions: []Production{
					{"S"},
				},
			}},
			expectErr: true,
		},
		{
			name: "single rule grammar",
			rules: []Rule{
				{
					NonTerminal: "S",
					Productions: []Production{
						{testTCNumber.ID()},
					},
				},
			},
			terminals: []types.TokenClass{
				testTCNumber,
			},
		},
		{
			name: "undefined nonterminal reference",
			rules: []Rule{
				{
					NonTerminal: "S",
					Productions: []Production{
						{"undefined_nt"},
					},
				},
			},
			terminals: []types.TokenClass{
				testTCNumber,
			},
			expectErr: true,
		},
		{
			name: "unreachable nonterminal",
			rules: []Rule{
				{
					NonTerminal: "S",
					Productions: []Production{
						{testTCNumber.ID()},
					},
				},
				{
					NonTerminal: "unused",
					Productions: []Production{
						{testTCNumber.ID()},
					},
				},
			},
			terminals: []types.TokenClass{
				testTCNumber,
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := Grammar{}
			for _, term := range tc.terminals {
				g.AddTerm(term.ID(), term)
			}
			for _, r := range tc.rules {
				for _, alt := range r.Productions {
					g.AddRule(r.NonTerminal, alt)
				}
			}

			actual := g.Validate()

			if tc.expectErr {
				assert.Error(actual)
			} else {
				assert.NoError(actual)
			}
		})
	}
}

func Test_Grammar_FIRST(t *testing.T) {
	assert := assert.New(t)

	// classic dragon-book example grammar (4.28):
	// E  -> T E'
	// E' -> + T E' | ε
	// T  -> F T'
	// T' -> * F T' | ε
	// F  -> ( E ) | id
	g := Grammar{}
	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("(", types.MakeDefaultClass("("))
	g.AddTerm(")", types.MakeDefaultClass(")"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	g.AddRule("E", Production{"T", "E'"})
	g.AddRule("E'", Production{"+", "T", "E'"})
	g.AddRule("E'", Epsilon)
	g.AddRule("T", Production{"F", "T'"})
	g.AddRule("T'", Production{"*", "F", "T'"})
	g.AddRule("T'", Epsilon)
	g.AddRule("F", Production{"(", "E", ")"})
	g.AddRule("F", Production{"id"})

	assert.NoError(g.Validate())

	assert.ElementsMatch([]string{"(", "id"}, g.FIRST("E").Elements())
	assert.ElementsMatch([]string{"(", "id"}, g.FIRST("F").Elements())
	assert.ElementsMatch([]string{"+", ""}, g.FIRST("E'").Elements())
	assert.ElementsMatch([]string{"*", ""}, g.FIRST("T'").Elements())
}

func Test_Grammar_FOLLOW(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("(", types.MakeDefaultClass("("))
	g.AddTerm(")", types.MakeDefaultClass(")"))
	g.AddTerm("id", types.MakeDefaultClass("id"))

	g.AddRule("E", Production{"T", "E'"})
	g.AddRule("E'", Production{"+", "T", "E'"})
	g.AddRule("E'", Epsilon)
	g.AddRule("T", Production{"F", "T'"})
	g.AddRule("T'", Production{"*", "F", "T'"})
	g.AddRule("T'", Epsilon)
	g.AddRule("F", Production{"(", "E", ")"})
	g.AddRule("F", Production{"id"})

	assert.NoError(g.Validate())

	assert.ElementsMatch([]string{"$", ")"}, g.FOLLOW("E").Elements())
	assert.ElementsMatch([]string{"$", ")", "+"}, g.FOLLOW("E'").Elements())
	assert.ElementsMatch([]string{"$", ")", "+"}, g.FOLLOW("T").Elements())
	assert.ElementsMatch([]string{"$", ")", "+", "*"}, g.FOLLOW("T'").Elements())
	assert.ElementsMatch([]string{"$", ")", "+", "*"}, g.FOLLOW("F").Elements())
}

func Test_Grammar_Augmented(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.AddRule("S", Production{"id"})

	aug := g.Augmented()

	assert.NotEqual(g.StartSymbol(), aug.StartSymbol())
	startRule := aug.Rule(aug.StartSymbol())
	assert.Len(startRule.Productions, 1)
	assert.Equal(Production{"S"}, startRule.Productions[0])
}

func Test_Grammar_AddProductionString_EBNF(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddTerm("b", types.MakeDefaultClass("b"))

	err := g.AddProductionString("S", "a [ b ]")
	assert.NoError(err)

	// "[ b ]" becomes a helper nonterminal with the productions "b" and ε.
	rule := g.Rule("S")
	if assert.Len(rule.Productions, 1) && assert.Len(rule.Productions[0], 2) {
		assert.Len(g.Rule(rule.Productions[0][1]).Productions, 2)
	}
}

func Test_Grammar_RulePrecedence(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.DeclarePrecedence(AssocLeft, "+")
	g.DeclarePrecedence(AssocLeft, "*")

	level, assoc, ok := g.RulePrecedence("E", Production{"id", "+", "id"})
	assert.True(ok)
	assert.Equal(1, level)
	assert.Equal(AssocLeft, assoc)

	level, _, ok = g.RulePrecedence("E", Production{"id", "*", "id"})
	assert.True(ok)
	assert.Equal(2, level)

	_, _, ok = g.RulePrecedence("E", Production{"id"})
	assert.False(ok)
}

func Test_Grammar_RulePrecedence_PrecOverride(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("-", types.MakeDefaultClass("-"))
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.DeclarePrecedence(AssocLeft, "-")
	g.DeclarePrecedence(AssocRight, "UMINUS")

	// unary minus: "- id" has rightmost terminal "id", which has no declared
	// precedence; the override gives it UMINUS's level instead.
	unary := Production{"-", "id"}
	g.AddRuleWithPrec("expr", unary, "UMINUS")
	g.AddRule("expr", Production{"expr", "-", "expr"})
	g.AddRule("expr", Production{"id"})

	level, assoc, ok := g.RulePrecedence("expr", unary)
	assert.True(ok)
	assert.Equal(2, level)
	assert.Equal(AssocRight, assoc)

	binaryLevel, binaryAssoc, ok := g.RulePrecedence("expr", Production{"expr", "-", "expr"})
	assert.True(ok)
	assert.Equal(1, binaryLevel)
	assert.Equal(AssocLeft, binaryAssoc)
}

func Test_Grammar_AddProductionString_PrecTag(t *testing.T) {
	assert := assert.New(t)

	g := Grammar{}
	g.AddTerm("-", types.MakeDefaultClass("-"))
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.DeclarePrecedence(AssocLeft, "-")
	g.DeclarePrecedence(AssocRight, "UMINUS")

	assert.NoError(g.AddProductionString("expr", "expr - expr"))
	assert.NoError(g.AddProductionString("expr", "- expr %prec UMINUS"))
	assert.NoError(g.AddProductionString("expr", "id"))

	rule := g.Rule("expr")
	assert.Len(rule.Productions, 3)

	level, assoc, ok := g.RulePrecedence("expr", rule.Productions[1])
	assert.True(ok)
	assert.Equal(2, level)
	assert.Equal(AssocRight, assoc)
}
