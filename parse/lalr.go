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

// GenerateLALR1Parser returns a parser that uses LALR bottom-up parsing to
// parse languages in g. It returns an error if the LALR(1) automaton for g
// cannot be built or a conflict has no resolution (accept/shift,
// accept/reduce, shift/shift); shift/reduce and reduce/reduce conflicts are
// resolved and reported in the returned warnings.
func GenerateLALR1Parser(g grammar.Grammar) (*Parser, []string, error) {
	table, ambigWarns, err := constructLALR1ParseTable(g)
	if err != nil {
		return &Parser{}, ambigWarns, err
	}

	return &Parser{table: table, parseType: types.ParserLALR1, gram: g}, ambigWarns, nil
}

// constructLALR1ParseTable constructs the LALR(1) table for G using
// automaton.BuildLALR1DFA's DeRemer & Pennello lookahead-propagation
// construction, then builds ACTION/GOTO columns the same way Algorithm 4.56
// does for canonical LR(1): GOTO comes directly from the automaton's
// transitions, and ACTION is derived per-state from the LR(1) items each
// state carries.
//
// Shift/reduce conflicts are first offered to declared operator precedence,
// then default to shift; reduce/reduce conflicts keep the earlier-declared
// production. Each resolution adds a warning; only conflicts with no
// resolution (see resolveConflict) cause a build failure.
func constructLALR1ParseTable(g grammar.Grammar) (LRParseTable, []string, error) {
	dfa, err := automaton.BuildLALR1DFA(g)
	if err != nil {
		return nil, nil, err
	}

	table := &lalr1Table{
		gPrime:    g.Augmented(),
		gTerms:    g.Terminals(),
		gStart:    g.StartSymbol(),
		gNonTerms: g.NonTerminals(),
		dfa:       dfa,
		itemCache: map[string]grammar.LR1Item{},
	}

	for _, dfaStateName := range table.dfa.States().Elements() {
		itemSet := table.dfa.GetValue(dfaStateName)
		for _, k := range itemSet.Elements() {
			table.itemCache[k] = itemSet.Get(k)
		}
	}

	var ambigWarns []string
	for _, i := range table.dfa.States().Elements() {
		for _, a := range table.gPrime.Terminals() {
			_, warn, err := computeLALR1Action(table, i, a)
			if err != nil {
				return nil, ambigWarns, fmt.Errorf("grammar is not LALR(1): %w", err)
			}
			if warn != "" {
				ambigWarns = append(ambigWarns, fmt.Sprintf("state %s: %s", i, warn))
			}
		}
	}

	return table, ambigWarns, nil
}

// computeLALR1Action determines the action for (i, a) for a LALR(1) table.
// Per spec.md §4.6, every conflict has a default resolution (shift/reduce
// tries declared precedence first, then defaults to shift; reduce/reduce
// keeps the earlier-declared production) and so never fails table
// construction; it only contributes a warning.
func computeLALR1Action(table *lalr1Table, i, a string) (act LRAction, warn string, err error) {
	itemSet := table.dfa.GetValue(i)

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

type lalr1Table struct {
	gPrime    grammar.Grammar
	gStart    string
	dfa       automaton.DFA[util.SVSet[grammar.LR1Item]]
	itemCache map[string]grammar.LR1Item
	gTerms    []string
	gNonTerms []string
}

func (lalr1 *lalr1Table) Action(i, a string) LRAction {
	act, _, err := computeLALR1Action(lalr1, i, a)
	if err != nil {
		panic(fmt.Sprintf("grammar is not LALR(1): %s", err.Error()))
	}
	return act
}

func (lalr1 *lalr1Table) Goto(state, symbol string) (string, error) {
	newState := lalr1.dfa.Next(state, symbol)
	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (lalr1 *lalr1Table) Initial() string {
	return lalr1.dfa.Start
}

func (lalr1 *lalr1Table) String() string {
	stateRefs := map[string]string{}

	stateNames := lalr1.dfa.States().Elements()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == lalr1.dfa.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(lalr1.gTerms))
	copy(allTerms, lalr1.gTerms)
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range lalr1.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := lalr1.Action(i, t)

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

		for _, nt := range lalr1.gNonTerms {
			var cell = ""

			gotoState, err := lalr1.Goto(i, nt)
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
