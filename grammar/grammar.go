// Package grammar implements the data model for a context-free grammar:
// terminals, rules/productions, derived FIRST/FOLLOW sets, the LR(0)/LR(1)
// item-set closure and goto operations used to build viable-prefix
// automata, and EBNF-style production shorthand expansion.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/perch/types"
	"github.com/dekarrin/perch/util"
)

// Production is a single right-hand-side alternative of a grammar rule: an
// ordered list of symbol names. A Production with a single empty-string
// element represents an epsilon production.
type Production []string

// String renders the production as space-separated symbol names, or "ε" for
// an epsilon production.
func (p Production) String() string {
	if len(p) == 0 || (len(p) == 1 && p[0] == "") {
		return "ε"
	}
	return strings.Join(p, " ")
}

// Equal returns whether p and o contain the same symbols in the same order.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherSl, ok := o.([]string)
		if !ok {
			return false
		}
		other = Production(otherSl)
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Epsilon is the canonical Production value representing the empty string.
// Epsilon[0] is the empty-string symbol used throughout item construction to
// denote "no symbols remain."
var Epsilon = Production{""}

// Rule is a nonterminal together with all of its production alternatives.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// String renders the rule in "NONTERM -> alt1 | alt2 | ..." form.
func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.NonTerminal)
	sb.WriteString(" -> ")
	for i, p := range r.Productions {
		sb.WriteString(p.String())
		if i+1 < len(r.Productions) {
			sb.WriteString(" | ")
		}
	}
	return sb.String()
}

// Equal returns whether two rules have the same nonterminal and the same set
// of productions (order-sensitive within a production, but the set of
// productions itself need not be in the same order for callers that compare
// productions independently; this method treats order as significant since
// it is used for round-trip checks on a single grammar).
func (r Rule) Equal(o any) bool {
	other, ok := o.(Rule)
	if !ok {
		return false
	}
	if r.NonTerminal != other.NonTerminal {
		return false
	}
	if len(r.Productions) != len(other.Productions) {
		return false
	}
	for i := range r.Productions {
		if !r.Productions[i].Equal(other.Productions[i]) {
			return false
		}
	}
	return true
}

// precLevel is one level of the precedence table: an associativity and the
// set of terminals declared at that level. Later-declared levels bind
// tighter, matching yacc/bison's %left/%right ordering convention.
type precLevel struct {
	assoc Associativity
	terms []string
}

// Grammar is a context-free grammar under construction: an ordered table of
// terminals (with their token classes), an ordered table of rules, a start
// symbol, and an optional precedence table for shift/reduce disambiguation.
type Grammar struct {
	termOrder  []string
	terminals  map[string]types.TokenClass
	ruleOrder  []string
	rules      map[string]Rule
	start      string
	precedence []precLevel
	uniqueNum  int

	// precOverride holds each production's %prec override, keyed by
	// precOverrideKey(nonTerminal, index): the synthetic or terminal
	// precedence name to use instead of the rightmost-terminal rule.
	precOverride map[string]string
}

// AddTerm registers a terminal symbol with the given id and token class. If
// id is already registered, its class is replaced.
func (g *Grammar) AddTerm(id string, class types.TokenClass) {
	if g.terminals == nil {
		g.terminals = map[string]types.TokenClass{}
	}
	if _, exists := g.terminals[id]; !exists {
		g.termOrder = append(g.termOrder, id)
	}
	g.terminals[id] = class
}

// AddRule adds a production alternative to the rule for nonTerminal,
// creating the rule if it doesn't already exist. The first nonterminal ever
// added via AddRule becomes the grammar's start symbol unless SetStartSymbol
// is called explicitly afterward.
func (g *Grammar) AddRule(nonTerminal string, production Production) {
	if g.rules == nil {
		g.rules = map[string]Rule{}
	}

	r, exists := g.rules[nonTerminal]
	if !exists {
		r = Rule{NonTerminal: nonTerminal}
		g.ruleOrder = append(g.ruleOrder, nonTerminal)
		if g.start == "" {
			g.start = nonTerminal
		}
	}
	r.Productions = append(r.Productions, production)
	g.rules[nonTerminal] = r
}

// AddRuleWithPrec adds a production alternative exactly like AddRule, but
// records a %prec override for it: RulePrecedence will use precName's
// declared precedence instead of deriving one from the production's
// rightmost terminal. precName need not itself be a real terminal — it may
// be a synthetic name (yacc's "UMINUS") declared purely to give a
// precedence/associativity level to DeclarePrecedence.
func (g *Grammar) AddRuleWithPrec(nonTerminal string, production Production, precName string) {
	g.AddRule(nonTerminal, production)

	if g.precOverride == nil {
		g.precOverride = map[string]string{}
	}
	idx := len(g.rules[nonTerminal].Productions) - 1
	g.precOverride[precOverrideKey(nonTerminal, idx)] = precName
}

// AddProductionString expands an RHS symbol string that may use EBNF-style
// shorthand ("[ X ]" optional, "{ X }" zero-or-more, "X|Y" alternation inside
// a group) into one or more plain productions, adding synthesized helper
// nonterminals as needed, and adds them all as alternatives of nonTerminal.
// See ebnf.go for the expansion algorithm.
func (g *Grammar) AddProductionString(nonTerminal string, rhs string) error {
	return g.addEBNFProductionString(nonTerminal, rhs)
}

// SetStartSymbol explicitly sets the grammar's start symbol.
func (g *Grammar) SetStartSymbol(s string) {
	g.start = s
}

// StartSymbol returns the grammar's start symbol.
func (g Grammar) StartSymbol() string {
	return g.start
}

// Term returns the token class registered for terminal id, and whether it
// was found.
func (g Grammar) Term(id string) (types.TokenClass, bool) {
	cl, ok := g.terminals[id]
	return cl, ok
}

// TermFor returns the id of the terminal whose token class has the given
// class ID, and whether one was found. This is used by the scanner to map a
// matched token class back to the grammar symbol that names it.
func (g Grammar) TermFor(classID string) (string, bool) {
	for _, id := range g.termOrder {
		if g.terminals[id].ID() == classID {
			return id, true
		}
	}
	return "", false
}

// Terminals returns all terminal symbol ids, in declaration order.
func (g Grammar) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// NonTerminals returns all nonterminal symbol names, in declaration order.
func (g Grammar) NonTerminals() []string {
	out := make([]string, len(g.ruleOrder))
	copy(out, g.ruleOrder)
	return out
}

// IsTerminal returns whether sym is a registered terminal symbol. The
// end-of-input marker "$" and the epsilon symbol "" are both considered
// terminal for the purposes of table construction.
func (g Grammar) IsTerminal(sym string) bool {
	if sym == "$" || sym == "" {
		return true
	}
	_, ok := g.terminals[sym]
	return ok
}

// Rule returns the rule registered for nonTerminal. If none is registered,
// returns a zero-value Rule with no productions.
func (g Grammar) Rule(nonTerminal string) Rule {
	return g.rules[nonTerminal]
}

// Copy returns a deep copy of the grammar.
func (g Grammar) Copy() Grammar {
	newG := Grammar{
		start:     g.start,
		uniqueNum: g.uniqueNum,
	}

	newG.termOrder = make([]string, len(g.termOrder))
	copy(newG.termOrder, g.termOrder)
	newG.terminals = map[string]types.TokenClass{}
	for k, v := range g.terminals {
		newG.terminals[k] = v
	}

	newG.ruleOrder = make([]string, len(g.ruleOrder))
	copy(newG.ruleOrder, g.ruleOrder)
	newG.rules = map[string]Rule{}
	for k, r := range g.rules {
		newR := Rule{NonTerminal: r.NonTerminal}
		for _, p := range r.Productions {
			newP := make(Production, len(p))
			copy(newP, p)
			newR.Productions = append(newR.Productions, newP)
		}
		newG.rules[k] = newR
	}

	newG.precedence = make([]precLevel, len(g.precedence))
	for i, lvl := range g.precedence {
		newLvl := precLevel{assoc: lvl.assoc}
		newLvl.terms = make([]string, len(lvl.terms))
		copy(newLvl.terms, lvl.terms)
		newG.precedence[i] = newLvl
	}

	if g.precOverride != nil {
		newG.precOverride = map[string]string{}
		for k, v := range g.precOverride {
			newG.precOverride[k] = v
		}
	}

	return newG
}

// GenerateUniqueTerminal returns a terminal id with the given prefix that is
// not currently in use by the grammar, registering it as a terminal so
// future calls do not collide. It is used to synthesize the "any symbol not
// in the grammar" marker needed by the LALR(1) lookahead-propagation
// algorithm (purple dragon book Algorithm 4.62's "#").
func (g *Grammar) GenerateUniqueTerminal(prefix string) string {
	candidate := prefix
	for {
		if _, taken := g.terminals[candidate]; !taken && candidate != "$" {
			g.AddTerm(candidate, types.MakeDefaultClass(candidate))
			return candidate
		}
		g.uniqueNum++
		candidate = fmt.Sprintf("%s%d", prefix, g.uniqueNum)
	}
}

// Augmented returns a new grammar identical to g but with a fresh start
// symbol S' and a single production S' -> S added, where S is g's original
// start symbol. This is the standard first step of LR table construction.
func (g Grammar) Augmented() Grammar {
	newStart := g.start + "-P"
	for {
		if _, exists := g.rules[newStart]; !exists {
			break
		}
		newStart += "-P"
	}

	augmented := g.Copy()
	augmented.ruleOrder = append([]string{newStart}, augmented.ruleOrder...)
	augmented.rules[newStart] = Rule{
		NonTerminal: newStart,
		Productions: []Production{{g.start}},
	}
	augmented.start = newStart

	return augmented
}

// Validate checks the grammar for the structural problems that would make
// it unusable for table construction: no start symbol, no terminals, no
// rules, a production referencing an undefined symbol, or an unreachable
// nonterminal.
func (g Grammar) Validate() error {
	if len(g.rules) == 0 {
		return fmt.Errorf("grammar has no rules")
	}
	if len(g.terminals) == 0 {
		return fmt.Errorf("grammar has no terminals")
	}
	if g.start == "" {
		return fmt.Errorf("grammar has no start symbol")
	}
	if _, ok := g.rules[g.start]; !ok {
		return fmt.Errorf("start symbol %q has no rule defined for it", g.start)
	}

	var problems []string

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, p := range r.Productions {
			for _, sym := range p {
				if sym == "" {
					continue // epsilon
				}
				if g.IsTerminal(sym) {
					continue
				}
				if _, ok := g.rules[sym]; !ok {
					problems = append(problems, fmt.Sprintf("rule %q references undefined symbol %q", nt, sym))
				}
			}
		}
	}

	reachable := map[string]bool{g.start: true}
	worklist := []string{g.start}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, p := range g.rules[cur].Productions {
			for _, sym := range p {
				if sym != "" && !g.IsTerminal(sym) && !reachable[sym] {
					reachable[sym] = true
					worklist = append(worklist, sym)
				}
			}
		}
	}
	for _, nt := range g.ruleOrder {
		if !reachable[nt] {
			problems = append(problems, fmt.Sprintf("nonterminal %q is unreachable from the start symbol", nt))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return nil
}

// FIRST computes the FIRST set of the given grammar symbol: the set of
// terminals (and possibly epsilon) that can begin a string derived from sym.
// This is the textbook worklist-fixed-point algorithm (purple dragon book
// §4.4.2).
func (g Grammar) FIRST(sym string) util.StringSet {
	memo := map[string]util.StringSet{}
	return g.first(sym, memo, map[string]bool{})
}

func (g Grammar) first(sym string, memo map[string]util.StringSet, visiting map[string]bool) util.StringSet {
	if cached, ok := memo[sym]; ok {
		return cached
	}

	result := util.NewStringSet()

	if sym == "" || g.IsTerminal(sym) {
		result.Add(sym)
		memo[sym] = result
		return result
	}

	if visiting[sym] {
		// left-recursive cycle; contributes nothing new on this pass.
		return result
	}
	visiting[sym] = true

	r := g.rules[sym]
	for _, p := range r.Productions {
		allNullableSoFar := true
		for _, x := range p {
			if x == "" {
				result.Add("")
				break
			}
			firstX := g.first(x, memo, visiting)
			for _, t := range firstX.Elements() {
				if t != "" {
					result.Add(t)
				}
			}
			if !firstX.Has("") {
				allNullableSoFar = false
				break
			}
		}
		if allNullableSoFar && len(p) > 0 {
			result.Add("")
		}
		if len(p) == 0 {
			result.Add("")
		}
	}

	delete(visiting, sym)
	memo[sym] = result
	return result
}

// firstOfString computes FIRST of a sequence of symbols (used while
// computing FOLLOW and while building LR(1) item closures).
func (g Grammar) firstOfString(syms []string) util.StringSet {
	result := util.NewStringSet()
	if len(syms) == 0 {
		result.Add("")
		return result
	}

	allNullable := true
	for _, x := range syms {
		firstX := g.FIRST(x)
		for _, t := range firstX.Elements() {
			if t != "" {
				result.Add(t)
			}
		}
		if !firstX.Has("") {
			allNullable = false
			break
		}
	}
	if allNullable {
		result.Add("")
	}
	return result
}

// FOLLOW computes the FOLLOW set of the given nonterminal: the set of
// terminals (and "$" if the nonterminal can end the input) that can
// immediately follow it in some derivation. This is the textbook
// worklist-fixed-point algorithm (purple dragon book §4.4.3).
func (g Grammar) FOLLOW(nonTerminal string) util.StringSet {
	follow := map[string]util.StringSet{}
	for _, nt := range g.ruleOrder {
		follow[nt] = util.NewStringSet()
	}
	follow[g.start].Add("$")

	updated := true
	for updated {
		updated = false
		for _, nt := range g.ruleOrder {
			r := g.rules[nt]
			for _, p := range r.Productions {
				for i, b := range p {
					if b == "" || g.IsTerminal(b) {
						continue
					}
					rest := p[i+1:]
					firstRest := g.firstOfString(rest)

					for _, t := range firstRest.Elements() {
						if t != "" && !follow[b].Has(t) {
							follow[b].Add(t)
							updated = true
						}
					}

					if firstRest.Has("") {
						for _, t := range follow[nt].Elements() {
							if !follow[b].Has(t) {
								follow[b].Add(t)
								updated = true
							}
						}
					}
				}
			}
		}
	}

	return follow[nonTerminal]
}

// LR0Items returns every LR(0) item derivable from every production of every
// rule in the grammar: one item per dot position (0 through len(production))
// in every alternative.
func (g Grammar) LR0Items() []LR0Item {
	var items []LR0Item

	for _, nt := range g.ruleOrder {
		r := g.rules[nt]
		for _, p := range r.Productions {
			if len(p) == 1 && p[0] == "" {
				items = append(items, LR0Item{NonTerminal: nt})
				continue
			}
			for dot := 0; dot <= len(p); dot++ {
				left := make([]string, dot)
				copy(left, p[:dot])
				right := make([]string, len(p)-dot)
				copy(right, p[dot:])
				items = append(items, LR0Item{NonTerminal: nt, Left: left, Right: right})
			}
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].String() < items[j].String() })

	return items
}

// LR0_CLOSURE computes the closure of a set of LR(0) items: for every item
// [A -> α.Bβ] in the set where B is a nonterminal, adds [B -> .γ] for every
// production B -> γ.
func (g Grammar) LR0_CLOSURE(I util.SVSet[LR0Item]) util.SVSet[LR0Item] {
	closure := util.NewSVSet[LR0Item](I)

	updated := true
	for updated {
		updated = false
		for _, name := range closure.Elements() {
			item := closure.Get(name)
			if len(item.Right) == 0 {
				continue
			}
			B := item.Right[0]
			if g.IsTerminal(B) {
				continue
			}
			for _, gamma := range g.rules[B].Productions {
				var newItem LR0Item
				if len(gamma) == 1 && gamma[0] == "" {
					newItem = LR0Item{NonTerminal: B}
				} else {
					right := make([]string, len(gamma))
					copy(right, gamma)
					newItem = LR0Item{NonTerminal: B, Right: right}
				}
				if !closure.Has(newItem.String()) {
					closure.Set(newItem.String(), newItem)
					updated = true
				}
			}
		}
	}

	return closure
}

// LR0_GOTO computes GOTO(I, X): the closure of the set of items obtained by
// moving the dot past X in every item of I where X immediately follows the
// dot.
func (g Grammar) LR0_GOTO(I util.SVSet[LR0Item], X string) util.SVSet[LR0Item] {
	moved := util.NewSVSet[LR0Item]()

	for _, name := range I.Elements() {
		item := I.Get(name)
		if len(item.Right) == 0 || item.Right[0] != X {
			continue
		}
		newLeft := make([]string, len(item.Left)+1)
		copy(newLeft, item.Left)
		newLeft[len(item.Left)] = X
		newRight := make([]string, len(item.Right)-1)
		copy(newRight, item.Right[1:])

		newItem := LR0Item{NonTerminal: item.NonTerminal, Left: newLeft, Right: newRight}
		moved.Set(newItem.String(), newItem)
	}

	if moved.Empty() {
		return moved
	}

	return g.LR0_CLOSURE(moved)
}

// CanonicalLR0Items computes the canonical collection of sets of LR(0) items
// for the grammar: starting from the closure of the augmented start item,
// repeatedly apply GOTO for every symbol until no new item sets appear. This
// is the subset-construction procedure of purple dragon book Algorithm 4.53.
//
// g must already be augmented.
func (g Grammar) CanonicalLR0Items() util.VSet[string, util.SVSet[LR0Item]] {
	startItem := LR0Item{NonTerminal: g.start, Right: []string{g.oldStartOrSelf()}}
	startKernel := util.NewSVSet[LR0Item]()
	startKernel.Set(startItem.String(), startItem)
	startSet := g.LR0_CLOSURE(startKernel)

	collection := util.NewSVSet[util.SVSet[LR0Item]]()
	collection.Set(startSet.StringOrdered(), startSet)

	allSymbols := append(append([]string{}, g.termOrder...), g.ruleOrder...)

	updated := true
	for updated {
		updated = false
		for _, setName := range collection.Elements() {
			I := collection.Get(setName)
			for _, X := range allSymbols {
				goTo := g.LR0_GOTO(I, X)
				if goTo.Empty() {
					continue
				}
				if !collection.Has(goTo.StringOrdered()) {
					collection.Set(goTo.StringOrdered(), goTo)
					updated = true
				}
			}
		}
	}

	return collection
}

// oldStartOrSelf returns the RHS symbol of the augmented start rule, i.e.
// the grammar's original start symbol before augmentation. Only meaningful
// on an already-augmented grammar.
func (g Grammar) oldStartOrSelf() string {
	r := g.rules[g.start]
	if len(r.Productions) == 1 && len(r.Productions[0]) == 1 {
		return r.Productions[0][0]
	}
	return g.start
}

// LR1_CLOSURE computes the closure of a set of LR(1) items: for every item
// [A -> α.Bβ, a] where B is a nonterminal, adds [B -> .γ, b] for every
// production B -> γ and every terminal b in FIRST(βa).
func (g Grammar) LR1_CLOSURE(I util.SVSet[LR1Item]) util.SVSet[LR1Item] {
	closure := util.NewSVSet[LR1Item](I)

	updated := true
	for updated {
		updated = false
		for _, name := range closure.Elements() {
			item := closure.Get(name)
			if len(item.Right) == 0 {
				continue
			}
			B := item.Right[0]
			if g.IsTerminal(B) {
				continue
			}
			beta := item.Right[1:]
			lookaheadSeed := append(append([]string{}, beta...), item.Lookahead)
			firstBetaA := g.firstOfString(lookaheadSeed)

			for _, gamma := range g.rules[B].Productions {
				var right []string
				if !(len(gamma) == 1 && gamma[0] == "") {
					right = make([]string, len(gamma))
					copy(right, gamma)
				}
				for _, b := range firstBetaA.Elements() {
					if b == "" {
						continue
					}
					newItem := LR1Item{LR0Item: LR0Item{NonTerminal: B, Right: right}, Lookahead: b}
					if !closure.Has(newItem.String()) {
						closure.Set(newItem.String(), newItem)
						updated = true
					}
				}
			}
		}
	}

	return closure
}

// LR1_GOTO computes GOTO(I, X) over a set of LR(1) items: moves the dot past
// X in every item where X immediately follows the dot, then takes the
// closure of the result.
func (g Grammar) LR1_GOTO(I util.SVSet[LR1Item], X string) util.SVSet[LR1Item] {
	moved := util.NewSVSet[LR1Item]()

	for _, name := range I.Elements() {
		item := I.Get(name)
		if len(item.Right) == 0 || item.Right[0] != X {
			continue
		}
		newLeft := make([]string, len(item.Left)+1)
		copy(newLeft, item.Left)
		newLeft[len(item.Left)] = X
		newRight := make([]string, len(item.Right)-1)
		copy(newRight, item.Right[1:])

		newItem := LR1Item{LR0Item: LR0Item{NonTerminal: item.NonTerminal, Left: newLeft, Right: newRight}, Lookahead: item.Lookahead}
		moved.Set(newItem.String(), newItem)
	}

	if moved.Empty() {
		return moved
	}

	return g.LR1_CLOSURE(moved)
}
