package automaton

import (
	"github.com/dekarrin/perch/grammar"
)

// NewLR0ViablePrefixNFA builds an NFA over every LR(0) item of the augmented
// grammar g' (g augmented with a fresh start production S' -> S). Each state
// is valued with the LR(0) item it represents. Calling ToDFA on the result
// performs the subset construction that yields the canonical LR(0)
// collection, the basis of the SLR(1) table construction.
func NewLR0ViablePrefixNFA(g grammar.Grammar) NFA[grammar.LR0Item] {
	oldStart := g.StartSymbol()
	g = g.Augmented()

	nfa := NFA[grammar.LR0Item]{}

	nfa.Start = grammar.LR0Item{NonTerminal: g.StartSymbol(), Right: []string{oldStart}}.String()

	items := g.LR0Items()

	for i := range items {
		nfa.AddState(items[i].String(), true)
		nfa.SetValue(items[i].String(), items[i])
	}

	for i := range items {
		item := items[i]

		if len(item.Right) < 1 {
			continue
		}

		alpha := item.Left
		X := item.Right[0]
		beta := item.Right[1:]

		toItem := grammar.LR0Item{
			NonTerminal: item.NonTerminal,
			Left:        append(append([]string{}, alpha...), X),
			Right:       beta,
		}
		nfa.AddTransition(item.String(), X, toItem.String())

		if !g.IsTerminal(X) {
			gammas := g.Rule(X).Productions
			for _, gamma := range gammas {
				prodState := grammar.LR0Item{
					NonTerminal: X,
					Right:       gamma,
				}

				nfa.AddTransition(item.String(), "", prodState.String())
			}
		}
	}

	return nfa
}
