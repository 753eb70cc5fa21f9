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

// GenerateSimpleLRParser returns a parser that uses SLR bottom-up parsing to
// parse languages in g.
//
// allowAmbig controls how strictly conflicts are treated: a true SLR(1)
// grammar has none. Per spec.md §4.6, every conflict is always resolvable
// (shift/reduce defaults to shift, reduce/reduce keeps the earlier-declared
// production, both emitting a warning) and so never fails table
// construction on its own. allowAmbig is the gate on top of that: when
// false, any such resolved-by-default conflict (one declared precedence
// didn't settle) is rejected as a build error instead of merely warned
// about, so a caller that wants a true SLR(1) grammar can still demand one.
// When true, the 2nd return value is filled with a description of each
// conflict resolution applied.
func GenerateSimpleLRParser(g grammar.Grammar, allowAmbig bool) (*Parser, []string, error) {
	table, ambigWarns, err := constructSimpleLRParseTable(g, allowAmbig)
	if err != nil {
		return &Parser{}, ambigWarns, err
	}

	return &Parser{table: table, parseType: types.ParserSLR1, gram: g}, ambigWarns, nil
}

// constructSimpleLRParseTable constructs the SLR(1) table for G. It augments
// grammar G to produce G', then the canonical collection of sets of items of
// G' is used to construct a table with applicable GOTO and ACTION columns.
//
// This is an implementation of Algorithm 4.46, "Constructing an SLR-parsing
// table", from the purple dragon book. In the comments GOTO[i, A] refers to
// the value of the table's GOTO column at state i, symbol A, while
// GOTO(i, A) refers to the precomputed GOTO function for grammar G'.
//
// Shift/reduce conflicts are first offered to declared operator precedence
// (grammar.DeclarePrecedence); only conflicts precedence cannot resolve are
// subject to allowAmbig/shift-preference or rejection.
func constructSimpleLRParseTable(g grammar.Grammar, allowAmbig bool) (LRParseTable, []string, error) {
	// the LR(0) automaton for G' gives us GOTO() directly: "intuitively, the
	// GOTO function is used to define the transitions in the LR(0) automaton
	// for a grammar."
	lr0Automaton := automaton.NewLR0ViablePrefixNFA(g).ToDFA()
	lr0Automaton.NumberStates()

	table := &slrTable{
		gPrime:     g.Augmented(),
		gStart:     g.StartSymbol(),
		gTerms:     g.Terminals(),
		gNonTerms:  g.NonTerminals(),
		lr0:        &lr0Automaton,
		itemCache:  map[string]grammar.LR0Item{},
		allowAmbig: allowAmbig,
	}

	for _, item := range table.gPrime.LR0Items() {
		table.itemCache[item.String()] = item
	}

	var ambigWarns []string
	for _, i := range lr0Automaton.States().Elements() {
		for _, a := range table.gPrime.Terminals() {
			act, warn, err := computeSLRAction(table, i, a, allowAmbig)
			if err != nil {
				return nil, ambigWarns, fmt.Errorf("grammar is not SLR(1): %w", err)
			}
			if warn != "" {
				ambigWarns = append(ambigWarns, fmt.Sprintf("state %s: %s", i, warn))
			}
			_ = act
		}
	}

	return table, ambigWarns, nil
}

// computeSLRAction determines the action for (i, a), checking for conflicts
// the same way Action does, but returning an error instead of panicking so
// that table construction can fail cleanly. It is used both to validate the
// grammar up front and as the shared implementation behind slrTable.Action.
func computeSLRAction(table *slrTable, i, a string, allowAmbig bool) (act LRAction, warn string, err error) {
	itemSet := table.lr0.GetValue(i)

	var alreadySet bool

	for _, itemStr := range itemSet.Elements() {
		item := table.itemCache[itemStr]

		A := item.NonTerminal
		alpha := item.Left
		beta := item.Right

		var followA util.ISet[string]
		if A != table.gPrime.StartSymbol() {
			followA = table.gPrime.FOLLOW(A)
		}

		if table.gPrime.IsTerminal(a) && len(beta) > 0 && beta[0] == a {
			j, gerr := table.Goto(i, a)
			if gerr == nil {
				shiftAct := LRAction{Type: LRShift, State: j}
				if alreadySet && !shiftAct.Equal(act) {
					resolved, resWarn, rerr := resolveConflict(table.gPrime, act, shiftAct, a)
					if rerr != nil {
						return LRAction{}, "", rerr
					}
					if resWarn != "" && !allowAmbig {
						return LRAction{}, "", fmt.Errorf("%s", resWarn)
					}
					act = resolved
					warn = resWarn
				} else {
					act = shiftAct
					alreadySet = true
				}
			}
		}

		if len(beta) == 0 && A != table.gPrime.StartSymbol() && followA.Has(a) {
			reduceAct := LRAction{Type: LRReduce, Symbol: A, Production: grammar.Production(alpha)}
			if alreadySet && !reduceAct.Equal(act) {
				resolved, resWarn, rerr := resolveConflict(table.gPrime, act, reduceAct, a)
				if rerr != nil {
					return LRAction{}, "", rerr
				}
				if resWarn != "" && !allowAmbig {
					return LRAction{}, "", fmt.Errorf("%s", resWarn)
				}
				act = resolved
				warn = resWarn
			} else {
				act = reduceAct
				alreadySet = true
			}
		}

		if a == "$" && A == table.gPrime.StartSymbol() && len(alpha) == 1 && alpha[0] == table.gStart && len(beta) == 0 {
			acceptAct := LRAction{Type: LRAccept}
			if alreadySet && !acceptAct.Equal(act) {
				return LRAction{}, "", makeLRConflictError(act, acceptAct, a)
			}
			act = acceptAct
			alreadySet = true
		}
	}

	if !alreadySet {
		act.Type = LRError
	}

	return act, warn, nil
}

type slrTable struct {
	gPrime     grammar.Grammar
	gStart     string
	lr0        *automaton.DFA[util.SVSet[grammar.LR0Item]]
	itemCache  map[string]grammar.LR0Item
	gTerms     []string
	gNonTerms  []string
	allowAmbig bool
}

// GetDFA returns the LR(0) viable-prefix DFA underlying this table, with
// states rendered as plain item-name sets for display purposes.
func (slr *slrTable) GetDFA() automaton.DFA[util.StringSet] {
	trans := automaton.TransformDFA(slr.lr0, func(old util.SVSet[grammar.LR0Item]) util.StringSet {
		newSet := util.NewStringSet()

		for _, name := range old.Elements() {
			item := old.Get(name)
			newSet.Add(item.String())
		}

		return newSet
	})
	return *trans
}

func (slr *slrTable) String() string {
	stateRefs := map[string]string{}

	stateNames := slr.lr0.States().Elements()
	sort.Strings(stateNames)

	for i := range stateNames {
		if stateNames[i] == slr.lr0.Start {
			old := stateNames[0]
			stateNames[0] = stateNames[i]
			stateNames[i] = old
			break
		}
	}
	for i := range stateNames {
		stateRefs[stateNames[i]] = fmt.Sprintf("%d", i)
	}

	allTerms := make([]string, len(slr.gTerms))
	copy(allTerms, slr.gTerms)
	allTerms = append(allTerms, "$")

	data := [][]string{}

	headers := []string{"S", "|"}

	for _, t := range allTerms {
		headers = append(headers, fmt.Sprintf("A:%s", t))
	}

	headers = append(headers, "|")

	for _, nt := range slr.gNonTerms {
		headers = append(headers, fmt.Sprintf("G:%s", nt))
	}
	data = append(data, headers)

	for stateIdx := range stateNames {
		i := stateNames[stateIdx]
		row := []string{stateRefs[i], "|"}

		for _, t := range allTerms {
			act := slr.Action(i, t)

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

		for _, nt := range slr.gNonTerms {
			var cell = ""

			gotoState, err := slr.Goto(i, nt)
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

func (slr *slrTable) Initial() string {
	return slr.lr0.Start
}

func (slr *slrTable) Goto(state, symbol string) (string, error) {
	// step 3 of algorithm 4.46: if GOTO(Iᵢ, A) = Iⱼ, then GOTO[i, A] = j.
	newState := slr.lr0.Next(state, symbol)

	if newState == "" {
		return "", fmt.Errorf("GOTO[%q, %q] is an error entry", state, symbol)
	}
	return newState, nil
}

func (slr *slrTable) Action(i, a string) LRAction {
	act, _, err := computeSLRAction(slr, i, a, slr.allowAmbig)
	if err != nil {
		panic(fmt.Sprintf("grammar is not SLR(1): %s", err.Error()))
	}
	return act
}
