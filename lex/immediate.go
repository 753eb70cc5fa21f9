package lex

import "github.com/dekarrin/perch/types"

// immediateTokenStream is a TokenStream backed by a slice of already-scanned
// tokens, produced by Lexer.LexImmediate. Kept near-verbatim from the
// teacher's lex/immediate.go.
type immediateTokenStream struct {
	tokens []types.Token
	cur    int
}

// Next returns the next token in the stream and advances the stream by one
// token. If at the end of the stream, this returns a token whose Class() is
// types.TokenEndOfText.
func (lx *immediateTokenStream) Next() types.Token {
	if lx.cur >= len(lx.tokens) {
		return types.NewToken(types.TokenEndOfText, "", 1, 1, "", 0)
	}
	n := lx.tokens[lx.cur]
	lx.cur++
	return n
}

// Peek returns the next token in the stream without advancing the stream.
func (lx *immediateTokenStream) Peek() types.Token {
	if lx.cur >= len(lx.tokens) {
		return types.NewToken(types.TokenEndOfText, "", 1, 1, "", 0)
	}
	return lx.tokens[lx.cur]
}

// HasNext returns whether the stream has any additional tokens.
func (lx *immediateTokenStream) HasNext() bool {
	return lx.Remaining() > 0
}

// Remaining returns the number of tokens not yet consumed.
func (lx *immediateTokenStream) Remaining() int {
	return len(lx.tokens) - lx.cur
}
