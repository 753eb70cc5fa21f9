package automaton

import (
	"testing"

	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/types"
	"github.com/stretchr/testify/assert"
)

func dragon455Grammar() grammar.Grammar {
	g := grammar.Grammar{}
	g.AddTerm("c", types.MakeDefaultClass("c"))
	g.AddTerm("d", types.MakeDefaultClass("d"))
	g.AddRule("S", grammar.Production{"C", "C"})
	g.AddRule("C", grammar.Production{"c", "C"})
	g.AddRule("C", grammar.Production{"d"})
	return g
}

func Test_NewLR0ViablePrefixNFA_ToDFA(t *testing.T) {
	assert := assert.New(t)

	g := dragon455Grammar()
	nfa := NewLR0ViablePrefixNFA(g)
	dfa := nfa.ToDFA()
	dfa.NumberStates()

	assert.NotEmpty(dfa.States().Elements())
	assert.NotEqual("", dfa.Start)
}

func Test_NewLR1ViablePrefixDFA(t *testing.T) {
	assert := assert.New(t)

	g := dragon455Grammar()
	dfa := NewLR1ViablePrefixDFA(g)

	assert.NotEmpty(dfa.States().Elements())
	assert.NotEqual("", dfa.Start)
}

func Test_BuildLALR1DFA(t *testing.T) {
	assert := assert.New(t)

	g := dragon455Grammar()
	dfa, err := BuildLALR1DFA(g)
	assert.NoError(err)
	assert.NotEmpty(dfa.States().Elements())

	// LALR(1) merges same-core LR(0) states, so it must never have more
	// states than the canonical LR(1) construction for the same grammar.
	clr1 := NewLR1ViablePrefixDFA(g)
	assert.LessOrEqual(len(dfa.States().Elements()), len(clr1.States().Elements()))
}

func Test_BuildLALR1DFA_TransitionsMirrorLR0Core(t *testing.T) {
	assert := assert.New(t)

	g := dragon455Grammar()
	dfa, err := BuildLALR1DFA(g)
	assert.NoError(err)

	// from the start state, shifting "c" and shifting "d" must lead to
	// distinct states (C -> c C vs C -> d diverge immediately).
	onC := dfa.Next(dfa.Start, "c")
	onD := dfa.Next(dfa.Start, "d")
	assert.NotEqual("", onC)
	assert.NotEqual("", onD)
	assert.NotEqual(onC, onD)
}
