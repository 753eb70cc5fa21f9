package parse

import (
	"fmt"

	"github.com/dekarrin/perch/grammar"
)

func isShiftReduceConflict(act1, act2 LRAction) (isSR bool, shiftAct LRAction) {
	if act1.Type == LRReduce && act2.Type == LRShift {
		return true, act2
	}
	if act2.Type == LRReduce && act1.Type == LRShift {
		return true, act1
	}

	return false, act1
}

func makeLRConflictError(act1, act2 LRAction, onInput string) error {
	if act1.Type == LRReduce && act2.Type == LRShift || act1.Type == LRShift && act2.Type == LRReduce {
		reduceRule := ""
		if act1.Type == LRReduce {
			reduceRule = act1.Symbol + " -> " + act1.Production.String()
		} else {
			reduceRule = act2.Symbol + " -> " + act2.Production.String()
		}
		return fmt.Errorf("shift/reduce conflict detected on terminal %q (shift or reduce %s)", onInput, reduceRule)
	} else if act1.Type == LRReduce && act2.Type == LRReduce {
		reduce1 := act1.Symbol + " -> " + act1.Production.String()
		reduce2 := act2.Symbol + " -> " + act2.Production.String()
		return fmt.Errorf("reduce/reduce conflict detected on terminal %q (reduce %s or reduce %s)", onInput, reduce1, reduce2)
	} else if act1.Type == LRAccept || act2.Type == LRAccept {
		nonAcceptAct := act2

		if act2.Type == LRAccept {
			nonAcceptAct = act1
		}

		if nonAcceptAct.Type == LRShift {
			return fmt.Errorf("accept/shift conflict detected on terminal %q", onInput)
		} else if nonAcceptAct.Type == LRReduce {
			reduce := nonAcceptAct.Symbol + " -> " + nonAcceptAct.Production.String()
			return fmt.Errorf("accept/reduce conflict detected on terminal %q (accept or reduce %s)", onInput, reduce)
		}
	} else if act1.Type == LRShift && act2.Type == LRShift {
		return fmt.Errorf("shift/shift conflict on terminal %q", onInput)
	}
	return fmt.Errorf("LR action conflict on terminal %q (%s or %s)", onInput, act1.String(), act2.String())
}

// LRActionType identifies the kind of action an LR parse table cell holds.
type LRActionType int

const (
	LRShift LRActionType = iota
	LRReduce
	LRAccept
	LRError
)

func (t LRActionType) String() string {
	switch t {
	case LRShift:
		return "SHIFT"
	case LRReduce:
		return "REDUCE"
	case LRAccept:
		return "ACCEPT"
	default:
		return "ERROR"
	}
}

// resolveByPrecedence resolves a shift/reduce conflict on terminal a using
// declared operator precedence, yacc-style: the production being reduced
// takes its precedence from its %prec override if it has one, else its
// rightmost terminal (grammar.RulePrecedence), compared against the
// precedence of the lookahead terminal itself. Higher
// precedence wins; equal precedence defers to the reducing production's
// associativity (left associates to reduce, right to shift, nonassoc removes
// both entries and resolves to an error cell). Returns ok=false when either
// side lacks a declared precedence, in which case the conflict is not
// resolvable this way.
func resolveByPrecedence(g grammar.Grammar, reduceSymbol string, reduceProd grammar.Production, a string) (act LRAction, resolvable bool, err error) {
	prodLevel, prodAssoc, prodOk := g.RulePrecedence(reduceSymbol, reduceProd)
	termLevel, _, termOk := g.TermPrecedence(a)

	if !prodOk || !termOk {
		return LRAction{}, false, nil
	}

	switch {
	case prodLevel > termLevel:
		return LRAction{Type: LRReduce}, true, nil
	case termLevel > prodLevel:
		return LRAction{Type: LRShift}, true, nil
	default:
		switch prodAssoc {
		case grammar.AssocLeft:
			return LRAction{Type: LRReduce}, true, nil
		case grammar.AssocRight:
			return LRAction{Type: LRShift}, true, nil
		default:
			return LRAction{Type: LRError}, true, nil
		}
	}
}

// productionIndex returns the declaration-order position of p among A's
// alternatives, or -1 if p is not one of A's productions.
func productionIndex(g grammar.Grammar, A string, p grammar.Production) int {
	rule := g.Rule(A)
	for i, alt := range rule.Productions {
		if alt.Equal(p) {
			return i
		}
	}
	return -1
}

// resolveConflict resolves a conflict between two differing ACTION entries
// for the same (state, a) cell, per spec.md §4.6:
//
//   - shift/reduce: offered to declared operator precedence first
//     (resolveByPrecedence); if neither side has a declared precedence, the
//     conflict defaults to shift, unconditionally, with a warning.
//   - reduce/reduce: the production declared earlier (lower index in its
//     nonterminal's alternative list) is kept, with a warning.
//   - anything else (accept/shift, accept/reduce, shift/shift) is a hard
//     error; these cannot arise from ambiguity that precedence or
//     declaration order can sensibly resolve.
func resolveConflict(g grammar.Grammar, act1, act2 LRAction, a string) (resolved LRAction, warn string, err error) {
	if isSR, _ := isShiftReduceConflict(act1, act2); isSR {
		shiftAct, reduceAct := act1, act2
		if act1.Type == LRReduce {
			shiftAct, reduceAct = act2, act1
		}

		precAct, ok, perr := resolveByPrecedence(g, reduceAct.Symbol, reduceAct.Production, a)
		if perr != nil {
			return LRAction{}, "", perr
		}
		if ok {
			chosen := shiftAct
			switch precAct.Type {
			case LRReduce:
				chosen = reduceAct
			case LRError:
				chosen = LRAction{Type: LRError}
				return chosen, fmt.Sprintf("%%nonassoc violation on terminal %q; removing both entries: %s", a, makeLRConflictError(act1, act2, a).Error()), nil
			}
			return chosen, fmt.Sprintf("shift/reduce conflict resolved by precedence: %s", makeLRConflictError(act1, act2, a).Error()), nil
		}

		return shiftAct, fmt.Sprintf("shift/reduce conflict with no declared precedence, defaulting to shift: %s", makeLRConflictError(act1, act2, a).Error()), nil
	}

	if act1.Type == LRReduce && act2.Type == LRReduce {
		idx1 := productionIndex(g, act1.Symbol, act1.Production)
		idx2 := productionIndex(g, act2.Symbol, act2.Production)

		chosen := act1
		if idx2 >= 0 && (idx1 < 0 || idx2 < idx1) {
			chosen = act2
		}

		return chosen, fmt.Sprintf("reduce/reduce conflict, keeping earlier-declared production: %s", makeLRConflictError(act1, act2, a).Error()), nil
	}

	return LRAction{}, "", makeLRConflictError(act1, act2, a)
}

// LRAction is a single ACTION table cell: what the driver should do given
// the current state and lookahead terminal.
type LRAction struct {
	Type LRActionType

	// Production is used when Type is LRReduce: the β of A -> β.
	Production grammar.Production

	// Symbol is used when Type is LRReduce: the A of A -> β.
	Symbol string

	// State is the state to shift to; used only when Type is LRShift.
	State string
}

func (act LRAction) String() string {
	switch act.Type {
	case LRAccept:
		return "ACTION<accept>"
	case LRError:
		return "ACTION<error>"
	case LRReduce:
		return fmt.Sprintf("ACTION<reduce %s -> %s>", act.Symbol, act.Production.String())
	case LRShift:
		return fmt.Sprintf("ACTION<shift %s>", act.State)
	default:
		return "ACTION<unknown>"
	}
}

func (act LRAction) Equal(o any) bool {
	other, ok := o.(LRAction)
	if !ok {
		otherPtr, ok := o.(*LRAction)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if act.Type != other.Type {
		return false
	} else if !act.Production.Equal(other.Production) {
		return false
	} else if act.State != other.State {
		return false
	} else if act.Symbol != other.Symbol {
		return false
	}

	return true
}
