package parse

import (
	"fmt"
	"sort"

	"github.com/dekarrin/perch/automaton"
	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/types"
	"github.com/dekarrin/perch/util"
	"github.com/dekarrin/rosed"
)

// GenerateCanonicalLR1Parser returns a parser that uses the canonical
// collection of sets of LR(1) items built from g to parse g's language.
// Conflicts are resolved per spec.md §4.6 (shift/reduce by precedence or
// default-to-shift, reduce/reduce by earlier declaration) and so never fail
// construction on their own; the 2nd return value describes every
// resolution applied. A non-nil error indicates a malformed table
// (e.g. an accept cell in conflict with a shift or reduce).
func GenerateCanonicalLR1Parser(g grammar.Grammar) (*Parser, []string, error) {
	table, ambigWarns, err := constructCanonicalLR1ParseTable(g)
	if err != nil {
		return &Parser{}, ambigWarns, err
	}

	return &Parser{table: table, parseType: types.ParserCLR1, gram: g}, ambigWarns, nil
}

// constructCanonicalLR1ParseTable constructs the canonical LR(1) table for
// G. It augments grammar G to produce G', then the canonical collection of
// sets of LR(1) items of G' is used to construct a table with applicable
// GOTO and ACTION columns.
//
// This is an implementation of Algorithm 4.56, "Construction of canonical-LR
// parsing tables", from the purple dragon book. In the comments, most of
// which is lifted directly from the textbook, GOTO[i, A] refers to the
// value of the table's GOTO column at state i, symbol A, while GOTO(i, A)
// refers to the precomputed GOTO function for grammar G'.
func constructCanonicalLR1ParseTable(g grammar.Grammar) (LRParseTable, []string, error) {
	lr1Automaton := automaton.NewLR1ViablePrefixDFA(g)

	table := &canonicalLR1Table{
		gPrime:    g.Augmented(),
		gStart:    g.StartSymbol(),
		gTerms:    g.Terminals(),
		gNonTerms: g.NonTerminals(),
		lr1:       lr1Automaton,
		itemCache: map[string]grammar.LR1Item{},
	}

	for _, dfaStateName := range table.lr1.States().Elements() {
		itemSet := table.lr1.GetValue(dfaStateName)
		for _, k := range itemSet.Elements() {
			table.itemCache[k] = itemSet.Get(k)
		}
	}

	var ambigWarns []string
	for _, i := range lr1Automaton.States().Elements() {
		for _, a := range table.gPrime.Terminals() {
			_, warn, err := computeCLR1Action(table, i, a)
			if err != nil {
				return nil, ambigWarns, fmt.Errorf("grammar is not CLR(1): %w", err)
			}
			if warn != "" {
				ambigWarns = append(ambigWarns, fmt.Sprintf("state %s: %s", i, warn))
			}
		}
	}

	return table, ambigWarns, nil
}

// computeCLR1Action determines the action for (i, a). Per spec.md §4.6,
// every conflict has a default resolution (shift/reduce tries declared
// precedence first, then defaults to shift; reduce/reduce keeps the
// earlier-declared production) and so never fails table construction; it
// only contributes a warning.
func computeCLR1Action(table *canonicalLR1Table, i, a string) (act LRAction, warn string, err error) {
	itemSet := table.lr1.GetValue(i)

	var alreadySet bool

	for _, itemStr := range itemSet.Elements() {
		item := itemSet.Get(itemStr)

		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right
		b := item.Lookahead

		if table.gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			j, gerr := table.Goto(i, a)
			if gerr == nil {
				newAct := LRAction{Type: LRShift, State: j}
				if alreadySet && !newAct.Equal(act) {
					resolved, resWarn, rerr := resolveConflict(table.gPrime, act, newAct, a)
					if rerr != nil {
						return LRAction{}, "", rerr
					}
					act = resolved
					warn = resWarn
				} else {
					act = newAct
					alreadySet = true
				}
			}
		}

		if len(beta) == 0 && A != table.gPrime.StartSymbol() && a == b {
			newAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if alreadySet && !newAct.Equal(act) {
				resolved, resWarn, rerr := resolveConflict(table.gPrime, act, newAct, a)
				if rerr != nil {
					return LRAction{}, "", rerr
				}
				act = resolved
				warn = resWarn
			} else {
				act = newAct
				alreadySet = true
			}
		}

		if a == "$" && b == "$" && A == table.gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == table.gStart && len(beta) == 0 {
			newAct := LRAction{Type: LRAccept}
			if alreadySet && !newAct.Equal(act) {
				return LRAction{}, "", makeLRConflictError(act, newAct, a)
			}
			act = newAct
			alreadySet = true
		}
	}

	if !alreadySet {
		act.Type = LRError
	}

	return act, warn, nil
}

type canonicalLR1Table struct {
	gPrime    grammar.Grammar
	gStart    string
	lr1       automaton.DFA[util.SVSet[grammar.LR1Item]]
	itemCache map[string]grammar.LR1Item
	gTerms    []string
	gNonTerms []string
}

func (clr1 *canonicalLR1Table) String() string {
	stateRefs := map[string]string{}

	stateNames := clr1.lr1.States().Elements()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == clr1.lr1.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(clr1.gTerms))
	copy(allTerms, clr1.gTerms)
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range clr1.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := clr1.Action(i, t)

			cell := ""
			switch act.Type {
			case LRAccept:
				cell = "acc"
			case LRReduce:
				cell = fmt.Sprintf("r%s -> %s", act.Symbol, act.Production.String())
			case LRShift:
				cell = fmt.Sprintf("s%s", stateRefs[act.State])
			case LRError:
				// do nothing, err is blank
			}

			row = append(row, cell)
		}

		row = append(row, "|")

		for _, nt := range clr1.gNonTerms {
			var cell = ""

			gotoState, err := clr1.Goto(i, nt)
			if err == nil {
				cell = stateRefs[gotoState]
			}

			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func (clr1 *canonicalLR1Table) Initial() string {
	return clr1.lr1.Start
}

func (clr1 *canonicalLR1Table) Goto(state, symbol string) (string, error) {
	// step 3 of algorithm 4.56: if GOTO(Iᵢ, A) = Iⱼ, then GOTO[i, A] = j.
	newState := clr1.lr1.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (clr1 *canonicalLR1Table) Action(i, a string) LRAction {
	act, _, err := computeCLR1Action(clr1, i, a)
	if err != nil {
		panic(fmt.Sprintf("grammar is not CLR(1): %s", err.Error()))
	}
	return act
}
