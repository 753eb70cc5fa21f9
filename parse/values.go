package parse

import "fmt"

// Value is the semantic value produced by shifting a token or reducing a
// production. A production with no bound action gets the parse subtree just
// built as its value; one with an action gets whatever that action chose to
// build (an AST node, a computed number, an interned symbol-table entry, etc).
type Value any

// RHSValues is the "P" grouping passed to a production's action at reduce
// time (spec.md §6's value accessor contract): the semantic values of the
// production's rhs symbols, collected in left-to-right rhs order.
//
//   - P.Get(i) is 1-based positional access, P[i] in the spec's notation.
//   - P.Name(sym) resolves by the rhs symbol's own name, for productions
//     where sym appears exactly once.
//   - P.NameN(sym, n) disambiguates a repeated rhs symbol by its 0-based
//     left-to-right occurrence (P.sym0, P.sym1, ... in the spec's notation).
type RHSValues struct {
	values []Value
	byName map[string][]int
}

// NewRHSValues builds a P grouping from a production's rhs symbol names,
// paired positionally with the values popped off the parse stack for them.
// len(names) must equal len(values).
func NewRHSValues(names []string, values []Value) RHSValues {
	byName := map[string][]int{}
	for i, n := range names {
		byName[n] = append(byName[n], i)
	}
	return RHSValues{values: values, byName: byName}
}

// Len returns |rhs|, the number of symbols (and values) in the production.
func (p RHSValues) Len() int {
	return len(p.values)
}

// Get returns the 1-based positional value P[i].
func (p RHSValues) Get(i int) Value {
	if i < 1 || i > len(p.values) {
		panic(fmt.Sprintf("P[%d]: production has only %d rhs symbols", i, len(p.values)))
	}
	return p.values[i-1]
}

// Name returns the value of the rhs symbol named sym (P.sym). It panics if
// sym does not occur in the production, or occurs more than once (use NameN
// to disambiguate repeated occurrences).
func (p RHSValues) Name(sym string) Value {
	idxs, ok := p.byName[sym]
	if !ok {
		panic(fmt.Sprintf("P.%s: no rhs symbol named %q in this production", sym, sym))
	}
	if len(idxs) > 1 {
		panic(fmt.Sprintf("P.%s: %q occurs %d times in this production; use %s0, %s1, ...", sym, sym, len(idxs), sym, sym))
	}
	return p.values[idxs[0]]
}

// NameN returns the value of the n-th (0-based, left to right) occurrence of
// rhs symbol sym (P.sym0, P.sym1, ... in the spec's notation).
func (p RHSValues) NameN(sym string, n int) Value {
	idxs, ok := p.byName[sym]
	if !ok || n < 0 || n >= len(idxs) {
		panic(fmt.Sprintf("P.%s%d: no such occurrence of rhs symbol %q in this production", sym, n, sym))
	}
	return p.values[idxs[n]]
}

// ProductionAction computes a production's own semantic value from the
// values of its rhs symbols, at the moment the parser reduces by it.
type ProductionAction func(p RHSValues) Value

// actionKey identifies one production alternative within a rule, by
// nonterminal and declaration-order index, for action lookup.
type actionKey struct {
	nonTerminal string
	index       int
}
