package parse

import "github.com/dekarrin/perch/types"

// mockStream is a simple, pre-built TokenStream for feeding a fixed sequence
// of terminal IDs into a parser under test, grounded on the teacher's
// parse/test_fixtures.go mockStream/mockTokens.
type mockStream struct {
	tokens []types.Token
	cur    int
}

func (ts *mockStream) Next() types.Token {
	n := ts.tokens[ts.cur]
	ts.cur++
	return n
}

func (ts *mockStream) Peek() types.Token {
	return ts.tokens[ts.cur]
}

func (ts *mockStream) HasNext() bool {
	return len(ts.tokens)-ts.cur > 0
}

// mockTokens builds a TokenStream where each entry in ofTerm becomes a token
// of that terminal's default class, with placeholder position information.
func mockTokens(ofTerm ...string) types.TokenStream {
	var mocked []types.Token
	for i, term := range ofTerm {
		var cl types.TokenClass
		if term == types.TokenEndOfText.ID() {
			cl = types.TokenEndOfText
		} else {
			cl = types.MakeDefaultClass(term)
		}
		mocked = append(mocked, types.NewToken(cl, term, i+1, 1, "", i))
	}
	return &mockStream{tokens: mocked}
}
