// Package parse implements bottom-up LR(0)-derived shift-reduce parsing:
// SLR(1), canonical LR(1), and LALR(1) parse table construction, and the
// shift-reduce driver (Algorithm 4.44) that runs any of them against a
// token stream to produce a concrete parse tree.
package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/icterrors"
	"github.com/dekarrin/perch/types"
	"github.com/dekarrin/perch/util"
)

// LRParseTable is a table of information passed to an LR parser. These are
// generated from a grammar for the purposes of performing bottom-up parsing.
type LRParseTable interface {
	// Initial returns the initial state of the parse table.
	Initial() string

	// Action gets the next action to take based on a state i and terminal a.
	Action(state, symbol string) LRAction

	// Goto maps a state and a grammar symbol to some other state.
	Goto(state, symbol string) (string, error)

	// String prints a string representation of the table. If two
	// LRParseTables produce the same String() output, they are considered
	// equal.
	String() string
}

// Parser wraps an LRParseTable with the shift-reduce driver loop, the
// grammar it was built from, and optional error recovery.
type Parser struct {
	table     LRParseTable
	parseType types.ParserType
	gram      grammar.Grammar
	trace     func(s string)
	actions   map[actionKey]ProductionAction
	errorHook func(tok *types.Token)
}

// SetErrorHook installs the parser declaration's optional error(tok) handler
// (spec.md §6/§7): invoked exactly once per detected syntax error, with the
// offending token, or nil if the parser has reached EOF.
func (lr *Parser) SetErrorHook(hook func(tok *types.Token)) {
	lr.errorHook = hook
}

// BindAction attaches a semantic action to one alternative of nonTerminal's
// rule, identified by its 0-based position in declaration order (the same
// order grammar.Rule.Productions lists them in). It is invoked with that
// production's rhs values (spec.md §6's "P") every time the parser reduces
// by it, and its return value becomes the production's own semantic value
// on the stack. Productions with no bound action default to the
// just-built parse subtree as their value, so callers that never bind any
// action still get a usable result.
func (lr *Parser) BindAction(nonTerminal string, prodIndex int, action ProductionAction) {
	if lr.actions == nil {
		lr.actions = map[actionKey]ProductionAction{}
	}
	lr.actions[actionKey{nonTerminal: nonTerminal, index: prodIndex}] = action
}

// RegisterTraceListener installs a callback invoked with a line of
// human-readable commentary at every driver step. Pass nil to disable
// tracing.
func (lr *Parser) RegisterTraceListener(listener func(s string)) {
	lr.trace = listener
}

// Type returns the table-construction strategy this parser was built with.
func (lr *Parser) Type() types.ParserType {
	return lr.parseType
}

// TableString renders the underlying parse table.
func (lr *Parser) TableString() string {
	return lr.table.String()
}

func (lr Parser) notifyTraceFn(fn func() string) {
	if lr.trace != nil {
		lr.trace(fn())
	}
}

func (lr Parser) notifyTrace(fmtStr string, args ...interface{}) {
	lr.notifyTraceFn(func() string { return fmt.Sprintf(fmtStr, args...) })
}

func (lr Parser) notifyStatePeek(s string) {
	lr.notifyTrace("states.peek(): %s", s)
}

func (lr Parser) notifyStatePush(s string) {
	lr.notifyTrace("states.push(): %s", s)
}

func (lr Parser) notifyStatePop(s string) {
	if s == "" {
		lr.notifyTrace("states.pop()")
	} else {
		lr.notifyTrace("states.pop(): %s", s)
	}
}

func (lr Parser) notifyAction(act LRAction) {
	lr.notifyTrace("Action: %s", act.Type.String())
}

func (lr Parser) notifyNextToken(tok types.Token) {
	lr.notifyTrace("Got next token: %s", tok.String())
}

func (lr Parser) notifyTokenStack(st util.Stack[types.Token]) {
	lr.notifyTraceFn(func() string {
		var lexStr strings.Builder
		var tokStr strings.Builder
		for i := range st.Of {
			tok := st.Of[i]
			lexStr.WriteRune('"')
			lexStr.WriteString(tok.Lexeme())
			lexStr.WriteRune('"')

			tokStr.WriteString(strings.ToUpper(tok.Class().ID()))

			if i+1 < len(st.Of) {
				lexStr.WriteString(", ")
				tokStr.WriteString(", ")
			}
		}
		if st.Empty() {
			lexStr.WriteString("(empty)")
			tokStr.WriteString("(empty)")
		}

		str := fmt.Sprintf("Token stack (lexed): %s", lexStr.String())
		str += "\n"
		str += fmt.Sprintf("Token stack (ttype): %s", tokStr.String())

		return str
	})
}

// Parse parses the input stream with the internal LR parse table, attempting
// panic-mode error recovery when the driver enters an error state: it
// discards input tokens until one is found that the current state (or some
// state below it on the stack, once popped) has a valid shift or goto for,
// reporting every discarded span as a syntax error but continuing the parse
// rather than aborting at the first one.
//
// Alongside the concrete parse tree, Parse drives the semantic-value stack
// described in spec.md §4.7 step 3: every shift pushes the shifted token as
// its own value, and every reduce by A -> β collects β's values in rhs
// order into a P grouping (RHSValues) and calls whatever action was bound
// to that production with BindAction, pushing the result as A's value. A
// production with no bound action defaults to the parse subtree just built
// for it, so the returned Value is always populated even when the grammar
// binds no actions at all.
//
// This is an implementation of Algorithm 4.44, "LR-parsing algorithm", from
// the purple dragon book, extended with the recovery scheme sketched in
// §4.8.3, "Error Recovery in LR Parsing".
func (lr *Parser) Parse(stream types.TokenStream) (types.ParseTree, Value, error) {
	stateStack := util.Stack[string]{Of: []string{lr.table.Initial()}}

	// we will use these to build our parse tree
	tokenBuffer := util.Stack[types.Token]{}
	subTreeRoots := util.Stack[*types.ParseTree]{}

	// parallels stateStack one-for-one below the initial state: valueStack[i]
	// is the semantic value associated with the symbol that caused the push
	// onto stateStack[i+1], and symbolStack[i] is that symbol's name (needed
	// by recover to know, for an arbitrarily popped state, whether its
	// buffered data lives in tokenBuffer or subTreeRoots).
	valueStack := util.Stack[Value]{}
	symbolStack := util.Stack[string]{}

	var syntaxErrors []error

	// let a be the first symbol of w$;
	a := stream.Next()
	lr.notifyNextToken(a)

	for { /* repeat forever */
		lr.notifyTokenStack(tokenBuffer)

		// let s be the state on top of the stack;
		s := stateStack.Peek()
		lr.notifyStatePeek(s)

		ACTION := lr.table.Action(s, a.Class().ID())
		lr.notifyAction(ACTION)

		switch ACTION.Type {
		case LRShift: // if ( ACTION[s, a] = shift t )
			// add token to our buffer
			tokenBuffer.Push(a)
			valueStack.Push(Value(a))
			symbolStack.Push(a.Class().ID())

			t := ACTION.State

			// push t onto the stack
			stateStack.Push(t)
			lr.notifyStatePush(t)

			// let a be the next input symbol
			a = stream.Next()
			lr.notifyNextToken(a)
		case LRReduce: // else if ( ACTION[s, a] = reduce A -> β )
			A := ACTION.Symbol
			beta := ACTION.Production
			prodIdx := productionIndex(lr.gram, A, beta)

			// use the reduce to create a node in the parse tree
			node := &types.ParseTree{Value: A, Children: make([]*types.ParseTree, 0)}
			rhsNames := make([]string, len(beta))
			rhsValues := make([]Value, len(beta))
			// we need to go from right to left of the production to pop things
			// from the stacks in the correct order
			for i := len(beta) - 1; i >= 0; i-- {
				sym := beta[i]
				rhsNames[i] = sym
				rhsValues[i] = valueStack.Pop()
				if lr.gram.IsTerminal(sym) {
					// it is a terminal. read the source from the token buffer
					tok := tokenBuffer.Pop()
					subNode := &types.ParseTree{Terminal: true, Value: tok.Class().ID(), Source: tok}
					node.Children = append([]*types.ParseTree{subNode}, node.Children...)
				} else {
					// it is a non-terminal. it should be in our stack of
					// current tree roots.
					subNode := subTreeRoots.Pop()
					node.Children = append([]*types.ParseTree{subNode}, node.Children...)
				}
			}
			// remember it for next time
			subTreeRoots.Push(node)

			// if β is epsilon, there is no rhs value/name to report
			if len(beta) == 1 && beta[0] == "" {
				rhsNames = nil
				rhsValues = nil
			}

			var nodeValue Value = node
			if action, ok := lr.actions[actionKey{nonTerminal: A, index: prodIdx}]; ok {
				nodeValue = action(NewRHSValues(rhsNames, rhsValues))
			}
			valueStack.Push(nodeValue)

			// pop |β| symbols off the stack, unless β is epsilon
			popCount := len(beta)
			if popCount == 1 && beta[0] == "" {
				popCount = 0
			}
			for i := 0; i < popCount; i++ {
				stateStack.Pop()
				symbolStack.Pop()
				lr.notifyStatePop("")
			}

			// let state t now be on top of the stack
			t := stateStack.Peek()
			lr.notifyStatePeek(t)

			// push GOTO[t, A] onto the stack
			toPush, err := lr.table.Goto(t, A)
			if err != nil {
				return types.ParseTree{}, nil, icterrors.NewSyntaxErrorFromToken(fmt.Sprintf("LR parsing error; DFA has no valid transition from here on %q", A), a)
			}
			stateStack.Push(toPush)
			symbolStack.Push(A)
			lr.notifyStatePush(toPush)
		case LRAccept: // else if ( ACTION[s, a] = accept )
			// parsing is done. there should be at least one item on the stack
			pt := subTreeRoots.Pop()
			v := valueStack.Pop()
			if len(syntaxErrors) > 0 {
				return *pt, v, icterrors.NewSyntaxError(fmt.Sprintf("%d syntax error(s) recovered during parse; first: %s", len(syntaxErrors), syntaxErrors[0].Error()))
			}
			return *pt, v, nil
		case LRError:
			expMessage := lr.getExpectedString(s)
			recoverErr := icterrors.NewSyntaxErrorFromToken(fmt.Sprintf("unexpected %s; %s", a.Class().Human(), expMessage), a)

			lr.notifyErrorHook(a)

			if !lr.recover(&stateStack, &symbolStack, &tokenBuffer, &subTreeRoots, &valueStack, stream, &a) {
				return types.ParseTree{}, nil, recoverErr
			}
			syntaxErrors = append(syntaxErrors, recoverErr)
		}
	}
}

// notifyErrorHook invokes the bound error(tok) hook, if any, with the
// offending token, or nil if the parse has reached EOF (spec.md §7).
func (lr *Parser) notifyErrorHook(a types.Token) {
	if lr.errorHook == nil {
		return
	}
	if a.Class().ID() == "$" {
		lr.errorHook(nil)
		return
	}
	lr.errorHook(&a)
}

// errorTerminal is the reserved pseudo-terminal a grammar's productions may
// use as a synchronization point for panic-mode recovery (e.g. stmt -> error
// ';'). It is never produced by a lexer; the driver shifts it synthetically
// during recover.
const errorTerminal = "error"

// recover implements the classical error-nonterminal protocol (spec.md §7):
// pop states from the stack until one is found with a shift on the reserved
// pseudo-terminal "error"; shift it; discard input tokens until one is
// found that is a legal lookahead in the new state, or EOF is reached; then
// resume normal parsing. Returns false if the stack empties before a
// shift-on-error state is found, in which case the parse cannot continue.
func (lr *Parser) recover(stateStack *util.Stack[string], symbolStack *util.Stack[string], tokenBuffer *util.Stack[types.Token], subTreeRoots *util.Stack[*types.ParseTree], valueStack *util.Stack[Value], stream types.TokenStream, a *types.Token) bool {
	for stateStack.Len() > 0 {
		s := stateStack.Peek()

		if act := lr.table.Action(s, errorTerminal); act.Type == LRShift {
			errTok := types.NewToken(
				types.NewTokenClass(errorTerminal, errorTerminal),
				"", (*a).LinePos(), (*a).Line(), (*a).FullLine(), (*a).BytePos(),
			)

			tokenBuffer.Push(errTok)
			valueStack.Push(Value(errTok))
			symbolStack.Push(errorTerminal)
			stateStack.Push(act.State)

			// discard input tokens until one is a legal lookahead here, or EOF
			for lr.table.Action(act.State, (*a).Class().ID()).Type == LRError && (*a).Class().ID() != "$" {
				*a = stream.Next()
			}
			return true
		}

		stateStack.Pop()
		sym := ""
		if symbolStack.Len() > 0 {
			sym = symbolStack.Pop()
		}
		if valueStack.Len() > 0 {
			valueStack.Pop()
		}
		if lr.gram.IsTerminal(sym) {
			if tokenBuffer.Len() > 0 {
				tokenBuffer.Pop()
			}
		} else if sym != "" {
			if subTreeRoots.Len() > 0 {
				subTreeRoots.Pop()
			}
		}
	}

	return false
}

func (lr Parser) getExpectedString(stateName string) string {
	expected := lr.findExpectedTokens(stateName)

	var sb strings.Builder

	sb.WriteString("expected ")

	commas := false
	finalOr := false

	if len(expected) > 1 {
		finalOr = true
		if len(expected) > 2 {
			commas = true
		}
	}
	for i := range expected {
		t := expected[i]

		if i == 0 {
			sb.WriteString(util.ArticleFor(t.Human(), false))
			sb.WriteRune(' ')
		}

		if finalOr && i+1 == len(expected) {
			sb.WriteString(" or ")
		}

		sb.WriteString(t.Human())
		if commas && i+1 < len(expected) {
			sb.WriteString(", ")
		}
	}

	return sb.String()
}

// findExpectedTokens returns all token classes that are allowed/expected for
// the given state, that is, those symbols that result in a non-error entry.
func (lr Parser) findExpectedTokens(stateName string) []types.TokenClass {
	terms := lr.gram.Terminals()

	classes := make([]types.TokenClass, 0)
	for i := range terms {
		t, ok := lr.gram.Term(terms[i])
		if !ok {
			continue
		}
		act := lr.table.Action(stateName, t.ID())
		if act.Type != LRError {
			classes = append(classes, t)
		}
	}

	return classes
}
