package parse

import (
	"testing"

	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

func precedenceGrammar() grammar.Grammar {
	g := grammar.Grammar{}
	g.AddTerm("+", types.MakeDefaultClass("+"))
	g.AddTerm("*", types.MakeDefaultClass("*"))
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.AddRule("E", grammar.Production{"E", "+", "E"})
	g.AddRule("E", grammar.Production{"E", "*", "E"})
	g.AddRule("E", grammar.Production{"id"})
	g.DeclarePrecedence(grammar.AssocLeft, "+")
	g.DeclarePrecedence(grammar.AssocLeft, "*")
	return g
}

func Test_ResolveConflict_ShiftReduce_ByPrecedence(t *testing.T) {
	assert := assert.New(t)
	g := precedenceGrammar()

	shift := LRAction{Type: LRShift, State: "5"}
	reduce := LRAction{Type: LRReduce, Symbol: "E", Production: grammar.Production{"E", "+", "E"}}

	// lookahead "*" has higher precedence than the "+"-headed reduce, so the
	// conflict should resolve to shift.
	resolved, warn, err := resolveConflict(g, reduce, shift, "*")
	assert.NoError(err)
	assert.Equal(LRShift, resolved.Type)
	assert.Contains(warn, "precedence")
}

func Test_ResolveConflict_ShiftReduce_SameLevelLeftAssocReduces(t *testing.T) {
	assert := assert.New(t)
	g := precedenceGrammar()

	shift := LRAction{Type: LRShift, State: "5"}
	reduce := LRAction{Type: LRReduce, Symbol: "E", Production: grammar.Production{"E", "+", "E"}}

	resolved, _, err := resolveConflict(g, reduce, shift, "+")
	assert.NoError(err)
	assert.Equal(LRReduce, resolved.Type)
}

func Test_ResolveConflict_ShiftReduce_NoDeclaredPrecedenceDefaultsToShift(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Grammar{}
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("S", grammar.Production{"a"})

	shift := LRAction{Type: LRShift, State: "2"}
	reduce := LRAction{Type: LRReduce, Symbol: "S", Production: grammar.Production{"a"}}

	resolved, warn, err := resolveConflict(g, reduce, shift, "a")
	assert.NoError(err)
	assert.Equal(LRShift, resolved.Type)
	assert.Contains(warn, "no declared precedence")
}

func Test_ResolveConflict_ReduceReduce_EarlierDeclarationWins(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Grammar{}
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddRule("A", grammar.Production{"a"})
	g.AddRule("A", grammar.Production{"B"})
	g.AddRule("B", grammar.Production{"a"})

	first := LRAction{Type: LRReduce, Symbol: "A", Production: grammar.Production{"a"}}
	second := LRAction{Type: LRReduce, Symbol: "A", Production: grammar.Production{"B"}}

	resolved, warn, err := resolveConflict(g, second, first, "a")
	assert.NoError(err)
	assert.True(resolved.Production.Equal(first.Production))
	assert.Contains(warn, "reduce/reduce")
}

func Test_ResolveConflict_NonAssocViolation(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Grammar{}
	g.AddTerm("<", types.MakeDefaultClass("<"))
	g.AddTerm("id", types.MakeDefaultClass("id"))
	g.AddRule("E", grammar.Production{"E", "<", "E"})
	g.AddRule("E", grammar.Production{"id"})
	g.DeclarePrecedence(grammar.AssocNone, "<")

	shift := LRAction{Type: LRShift, State: "5"}
	reduce := LRAction{Type: LRReduce, Symbol: "E", Production: grammar.Production{"E", "<", "E"}}

	resolved, warn, err := resolveConflict(g, reduce, shift, "<")
	assert.NoError(err)
	assert.Equal(LRError, resolved.Type)
	assert.Contains(warn, "nonassoc violation")
}

func Test_ResolveConflict_ShiftShift_IsHardError(t *testing.T) {
	assert := assert.New(t)
	g := precedenceGrammar()

	a := LRAction{Type: LRShift, State: "1"}
	b := LRAction{Type: LRShift, State: "2"}

	_, _, err := resolveConflict(g, a, b, "+")
	assert.Error(err)
}

func Test_ProductionIndex(t *testing.T) {
	assert := assert.New(t)

	g := grammar.Grammar{}
	g.AddTerm("a", types.MakeDefaultClass("a"))
	g.AddTerm("b", types.MakeDefaultClass("b"))
	g.AddRule("S", grammar.Production{"a"})
	g.AddRule("S", grammar.Production{"b"})

	assert.Equal(0, productionIndex(g, "S", grammar.Production{"a"}))
	assert.Equal(1, productionIndex(g, "S", grammar.Production{"b"}))
	assert.Equal(-1, productionIndex(g, "S", grammar.Production{"c"}))
}
