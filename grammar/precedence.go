package grammar

import "fmt"

// Associativity identifies how a precedence level resolves a shift/reduce
// conflict among operators declared at that level.
type Associativity int

const (
	// AssocNone declares a level with no associativity; chained uses of an
	// operator at this level are a grammar error rather than resolved by
	// precedence.
	AssocNone Associativity = iota

	// AssocLeft resolves ties in favor of reducing (operator is
	// left-associative: "a op b op c" groups as "(a op b) op c").
	AssocLeft

	// AssocRight resolves ties in favor of shifting (operator is
	// right-associative: "a op b op c" groups as "a op (b op c)").
	AssocRight
)

// DeclarePrecedence adds a new precedence level above all previously
// declared levels (later calls bind tighter, matching yacc's %left/%right/
// %nonassoc declaration order) containing the given terminals, with the
// given associativity.
func (g *Grammar) DeclarePrecedence(assoc Associativity, terminals ...string) {
	g.precedence = append(g.precedence, precLevel{assoc: assoc, terms: terminals})
}

// TermPrecedence returns the precedence level of terminal (higher binds
// tighter) and whether it has one declared. Level 0 is reserved for "no
// precedence declared."
func (g Grammar) TermPrecedence(terminal string) (level int, assoc Associativity, ok bool) {
	for i, lvl := range g.precedence {
		for _, t := range lvl.terms {
			if t == terminal {
				return i + 1, lvl.assoc, true
			}
		}
	}
	return 0, AssocNone, false
}

// RulePrecedence returns the precedence of a production belonging to
// nonTerminal: the precedence of the synthetic name given in that
// production's %prec override, if one was declared via AddRuleWithPrec; else
// the precedence of the production's rightmost terminal, if any has one
// declared. This is the standard yacc rule for inferring a production's
// precedence, with the %prec tag taking priority when present (spec.md §6).
func (g Grammar) RulePrecedence(nonTerminal string, p Production) (level int, assoc Associativity, ok bool) {
	if idx := productionIndexIn(g.rules[nonTerminal], p); idx >= 0 {
		if precName, hasOverride := g.precOverride[precOverrideKey(nonTerminal, idx)]; hasOverride {
			return g.TermPrecedence(precName)
		}
	}

	for i := len(p) - 1; i >= 0; i-- {
		sym := p[i]
		if sym == "" || !g.IsTerminal(sym) {
			continue
		}
		return g.TermPrecedence(sym)
	}
	return 0, AssocNone, false
}

// productionIndexIn returns the declaration-order position of p among rule's
// alternatives, or -1 if p is not one of them.
func productionIndexIn(rule Rule, p Production) int {
	for i, alt := range rule.Productions {
		if alt.Equal(p) {
			return i
		}
	}
	return -1
}

// precOverrideKey builds the lookup key for a production's %prec override:
// the nonterminal it belongs to and its declaration-order index within that
// nonterminal's alternatives.
func precOverrideKey(nonTerminal string, index int) string {
	return fmt.Sprintf("%s\x00%d", nonTerminal, index)
}
