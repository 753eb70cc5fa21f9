package automaton

import (
	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/util"
)

// stateAndItemStr identifies a single kernel item within a single LR(0)
// kernel state, keyed by their String() representations, for use as a map
// key while propagating lookaheads.
type stateAndItemStr struct {
	state string
	item  string
}

// BuildLALR1DFA builds the LALR(1) viable-prefix automaton for g: the
// canonical LR(0) automaton's states (which are exactly the LALR(1) states,
// since LALR(1) merges canonical LR(1) states by LR(0) core), each carrying
// the LR(1) item set obtained by closing its kernel items once they have
// been assigned the lookaheads computed by the propagation algorithm below.
//
// This is DeRemer & Pennello's algorithm for efficiently computing LALR(1)
// lookaheads (purple dragon book Algorithms 4.62 "Determining lookaheads"
// and 4.63 "Efficient computation of the kernels of the LALR(1) collection
// of sets of items"), run to a full fixed point rather than the
// canonical-LR(1)-then-merge-by-core strategy. g must NOT already be
// augmented.
func BuildLALR1DFA(g grammar.Grammar) (DFA[util.SVSet[grammar.LR1Item]], error) {
	gAug := g.Augmented()
	startSym := g.StartSymbol()
	startSymPrime := gAug.StartSymbol()

	gPrimeStartItem := grammar.LR0Item{NonTerminal: startSymPrime, Right: []string{startSym}}
	gPrimeStartKernel := util.NewSVSet[grammar.LR0Item]()
	gPrimeStartKernel.Set(gPrimeStartItem.String(), gPrimeStartItem)

	// 1. Construct the kernels of the sets of LR(0) items for G.
	lr0Kernels := getLR0Kernels(g)

	allSymbols := append(append([]string{}, g.Terminals()...), g.NonTerminals()...)

	calcSponts := map[stateAndItemStr]util.StringSet{}
	calcProps := map[stateAndItemStr][]stateAndItemStr{}

	// special case: lookahead $ is always generated spontaneously for the
	// item [S' -> .S] in the initial set of items.
	calcSponts[stateAndItemStr{state: gPrimeStartKernel.StringOrdered(), item: gPrimeStartItem.String()}] = util.StringSetOf([]string{"$"})

	// 2. Apply algorithm 4.62 to every kernel and every grammar symbol to
	// determine which lookaheads are spontaneously generated for kernel
	// items in GOTO(I, X), and from which items in I lookaheads propagate to
	// kernel items in GOTO(I, X). GOTO ranges over nonterminals as well as
	// terminals: LALR(1) states are connected by GOTO edges on every grammar
	// symbol, not only terminals.
	for _, lr0KernelName := range lr0Kernels.Elements() {
		IKernelSet := lr0Kernels.Get(lr0KernelName)

		for _, X := range allSymbols {
			sponts, props := determineLookaheads(gAug, IKernelSet, X)

			for k, sponSet := range sponts {
				existing, ok := calcSponts[k]
				if !ok {
					existing = util.NewStringSet()
				}
				existing.AddAll(sponSet)
				calcSponts[k] = existing
			}
			for k, propSlice := range props {
				calcProps[k] = append(calcProps[k], propSlice...)
			}
		}
	}

	// 3. Initialize the lookahead table to the spontaneously generated
	// lookaheads found in step (2).
	lookaheads := map[stateAndItemStr]util.StringSet{}
	for k, sponts := range calcSponts {
		lookaheads[k] = util.NewStringSet(sponts)
	}

	// 4. Make repeated passes over the kernel items in all sets, adding the
	// current lookaheads of each item to the lookaheads of every item it
	// propagates to, until a pass makes no further changes.
	updated := true
	for updated {
		updated = false

		for from, propagateTo := range calcProps {
			curLookaheads, ok := lookaheads[from]
			if !ok {
				continue
			}

			for _, to := range propagateTo {
				dest, ok := lookaheads[to]
				if !ok {
					dest = util.NewStringSet()
					lookaheads[to] = dest
				}
				for _, la := range curLookaheads.Elements() {
					if !dest.Has(la) {
						dest.Add(la)
						updated = true
					}
				}
			}
		}
	}

	// Collect the final lookaheads into LR(1) kernels, then take the
	// closure of each to get the full LALR(1) item set for that state.
	stateSets := map[string]util.SVSet[grammar.LR1Item]{}

	for _, lr0KernelName := range lr0Kernels.Elements() {
		IKernelSet := lr0Kernels.Get(lr0KernelName)

		lr1Kernel := util.NewSVSet[grammar.LR1Item]()
		for _, itemName := range IKernelSet.Elements() {
			lr0Item := IKernelSet.Get(itemName)
			key := stateAndItemStr{state: IKernelSet.StringOrdered(), item: itemName}

			las, ok := lookaheads[key]
			if !ok {
				continue
			}
			for _, la := range las.Elements() {
				lr1Item := grammar.LR1Item{LR0Item: lr0Item, Lookahead: la}
				lr1Kernel.Set(lr1Item.String(), lr1Item)
			}
		}

		closure := gAug.LR1_CLOSURE(lr1Kernel)
		stateSets[closure.StringOrdered()] = closure
	}

	dfa := DFA[util.SVSet[grammar.LR1Item]]{}
	for sName, itemSet := range stateSets {
		dfa.AddState(sName, true)
		dfa.SetValue(sName, itemSet)
	}

	for sName, itemSet := range stateSets {
		for _, X := range allSymbols {
			goTo := gAug.LR1_GOTO(itemSet, X)
			if goTo.Empty() {
				continue
			}
			destName := goTo.StringOrdered()
			if _, ok := stateSets[destName]; !ok {
				// GOTO produced a state not among the kernel-derived states;
				// the grammar's lookahead merging was inconsistent, i.e. not
				// truly LALR(1).
				return DFA[util.SVSet[grammar.LR1Item]]{}, errNotLALR1(sName, X)
			}
			dfa.AddTransition(sName, X, destName)
		}
	}

	startKernel := util.NewSVSet[grammar.LR0Item]()
	startKernel.Set(gPrimeStartItem.String(), gPrimeStartItem)
	startLR1Kernel := util.NewSVSet[grammar.LR1Item]()
	startLR1Kernel.Set(
		grammar.LR1Item{LR0Item: gPrimeStartItem, Lookahead: "$"}.String(),
		grammar.LR1Item{LR0Item: gPrimeStartItem, Lookahead: "$"},
	)
	dfa.Start = gAug.LR1_CLOSURE(startLR1Kernel).StringOrdered()

	return dfa, nil
}

// determineLookaheads finds the lookaheads spontaneously generated by items
// in I for kernel items in GOTO(I, X), and the items in I from which
// lookaheads are propagated to kernel items in GOTO(I, X).
//
// g must be an augmented grammar. K is the kernel of a set of LR(0) items I.
// X is a grammar symbol.
//
// This is an implementation of Algorithm 4.62, "Determining lookaheads",
// from the purple dragon book.
//
// There are two ways a lookahead b can get attached to an LR(0) item
// [B -> γ.δ] in some set of LALR(1) items J:
//
//  1. There is a set of items I, with a kernel item [A -> α.β, a], and
//     J = GOTO(I, X), and the construction of
//     GOTO(CLOSURE({[A -> α.β, a]}), X)
//     contains [B -> γ.δ, b], regardless of a. Such a lookahead is said to
//     be generated spontaneously for B -> γ.δ.
//  2. As a special case, lookahead $ is generated spontaneously for the
//     item [S' -> .S] in the initial set of items.
//  3. All as (1), but a = b, and GOTO(CLOSURE({[A -> α.β, b]}), X) contains
//     [B -> γ.δ, b] only because A -> α.β has b as one of its associated
//     lookaheads. In such a case, lookaheads propagate from A -> α.β in the
//     kernel of I to B -> γ.δ in the kernel of J. Propagation does not
//     depend on the particular lookahead symbol; either all lookaheads
//     propagate from one item to another, or none do.
func determineLookaheads(g grammar.Grammar, K util.SVSet[grammar.LR0Item], X string) (spontaneous map[stateAndItemStr]util.StringSet, propagated map[stateAndItemStr][]stateAndItemStr) {
	nonGrammarSym := g.GenerateUniqueTerminal("#")

	spontaneous = map[stateAndItemStr]util.StringSet{}
	propagated = map[stateAndItemStr][]stateAndItemStr{}

	GOTO_I_X := g.LR0_GOTO(g.LR0_CLOSURE(K), X)

	if GOTO_I_X.Empty() {
		return spontaneous, propagated
	}

	for _, aItemName := range K.Elements() {
		aItem := K.Get(aItemName)

		lr1StartItem := grammar.LR1Item{LR0Item: aItem, Lookahead: nonGrammarSym}
		lr1StartKernels := util.NewSVSet[grammar.LR1Item]()
		lr1StartKernels.Set(lr1StartItem.String(), lr1StartItem)
		J := g.LR1_CLOSURE(lr1StartKernels)

		TRUE_GOTO_I_X := g.LR1_GOTO(J, X)

		for _, bItemName := range J.Elements() {
			bItem := J.Get(bItemName)

			newLeft := make([]string, len(bItem.Left))
			copy(newLeft, bItem.Left)

			var newRight []string
			if len(bItem.Right) > 0 {
				newRight = make([]string, len(bItem.Right)-1)
				copy(newRight, bItem.Right[1:])
				newLeft = append(newLeft, bItem.Right[0])
			} else {
				continue
			}

			shiftedLR0Item := grammar.LR0Item{
				NonTerminal: bItem.NonTerminal,
				Left:        newLeft,
				Right:       newRight,
			}

			prodInGoto := false
			for _, elemName := range TRUE_GOTO_I_X.Elements() {
				lr1Item := TRUE_GOTO_I_X.Get(elemName)
				if lr1Item.LR0Item.Equal(shiftedLR0Item) {
					prodInGoto = true
					break
				}
			}
			if !prodInGoto {
				continue
			}

			if bItem.Lookahead != nonGrammarSym {
				newItem := grammar.LR1Item{
					LR0Item:   shiftedLR0Item,
					Lookahead: bItem.Lookahead,
				}

				key := stateAndItemStr{
					state: GOTO_I_X.StringOrdered(),
					item:  newItem.LR0Item.String(),
				}

				spontSet, ok := spontaneous[key]
				if !ok {
					spontSet = util.NewStringSet()
				}
				spontSet.Add(bItem.Lookahead)

				spontaneous[key] = spontSet
			} else {
				from := stateAndItemStr{
					state: K.StringOrdered(),
					item:  aItem.String(),
				}

				to := stateAndItemStr{
					state: GOTO_I_X.StringOrdered(),
					item:  shiftedLR0Item.String(),
				}

				propagated[from] = append(propagated[from], to)
			}
		}
	}

	return spontaneous, propagated
}

// getLR0Kernels computes the kernel of every state of the canonical LR(0)
// collection for g: the items with a non-empty left side, plus the
// augmented start item in the initial state. g must NOT already be
// augmented.
func getLR0Kernels(g grammar.Grammar) util.VSet[string, util.SVSet[grammar.LR0Item]] {
	gPrime := g.Augmented()
	itemSets := gPrime.CanonicalLR0Items()

	kernels := util.SVSet[util.SVSet[grammar.LR0Item]]{}

	for _, s := range itemSets.Elements() {
		stateVal := itemSets.Get(s)

		kernelItems := util.SVSet[grammar.LR0Item]{}
		for _, stateItemName := range stateVal.Elements() {
			stateItem := stateVal.Get(stateItemName)
			if len(stateItem.Left) > 0 || (len(stateItem.Right) == 1 && stateItem.Right[0] == g.StartSymbol() && stateItem.NonTerminal == gPrime.StartSymbol()) {
				kernelItems.Set(stateItemName, stateItem)
			}
		}
		kernels.Set(kernelItems.StringOrdered(), kernelItems)
	}

	return kernels
}

type lalrBuildError struct {
	state string
	sym   string
}

func (e lalrBuildError) Error() string {
	return "grammar is not LALR(1): GOTO(" + e.state + ", " + e.sym + ") does not match any LR(0)-derived state"
}

func errNotLALR1(state, sym string) error {
	return lalrBuildError{state: state, sym: sym}
}
