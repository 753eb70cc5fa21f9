package lex

import "github.com/dekarrin/perch/types"

// Action is a token rule's attached action function (spec.md §3 "Token
// rule"). It receives a mutable view of the token about to be produced (with
// Kind and Value settable) along with the scanner's current line number, and
// returns whether the token should still be yielded and what line number
// lexing should continue from. Returning keep=false discards the match
// entirely (used by ignore_ rules and by actions that want to swallow their
// own input, e.g. comment skipping).
type Action func(tok *MutableToken, line int) (updated MutableToken, keep bool)

// MutableToken is the record an Action is invoked with: the token as matched
// by the rule, before keyword remap is applied, with a Line field the action
// may update (spec.md §4.3 step 3: "the scanner's (index, line) accessible
// for update" — index is tracked by the scanner itself, only line is handed
// to user code, since that's the only part a scanner-external action could
// sensibly want to adjust, e.g. counting blank lines inside a matched
// comment).
type MutableToken struct {
	Kind  string
	Value string
	Line  int
}
