// Package perch is an in-process scanner/LALR(1) parser-generator library:
// the classical lex/yacc model reimplemented as a Go library rather than a
// source-generating command-line tool. A caller declares token rules and
// grammar productions, builds a lexer and a parser from them, and runs the
// pair over input text to get a stream of tokens and a reduction-driven
// parse tree with the caller's own semantic actions invoked along the way.
//
// This is the top-level convenience layer; grammar.Grammar, lex.Lexer, and
// parse.Parser can all be used directly for anything needing finer control.
package perch

import (
	"github.com/dekarrin/perch/grammar"
	"github.com/dekarrin/perch/lex"
	"github.com/dekarrin/perch/parse"
)

// NewLexer returns a new, empty lexer declaration. Both NewLexer and
// NewLazyLexer return the same kind of value; the distinction from the
// classical lex/yacc split (immediate vs. lazy scanning) is made later, by
// calling either LexImmediate or Lex on it.
func NewLexer() lex.Lexer {
	return lex.NewLexer()
}

// NewLazyLexer is an alias for NewLexer, kept for symmetry with the
// lazy/immediate naming used throughout the lex package and spec.md §6.
func NewLazyLexer() lex.Lexer {
	return lex.NewLexer()
}

// NewParser returns the most capable parser this package builds for g: an
// LALR(1) parser. Returns an error if g is not LALR(1).
func NewParser(g grammar.Grammar) (*parse.Parser, []string, error) {
	return NewLALR1Parser(g)
}

// NewLALR1Parser returns an LALR(1) parser for g. Returns an error if g is
// not LALR(1) (an unresolved conflict would have to be something other than
// a shift/reduce or reduce/reduce ambiguity, since those always resolve per
// spec.md §4.6).
func NewLALR1Parser(g grammar.Grammar) (*parse.Parser, []string, error) {
	return parse.GenerateLALR1Parser(g)
}

// NewSLRParser returns an SLR(1) parser for g. allowAmbig controls whether a
// conflict resolved only by the spec's default rule (not by declared
// precedence) is accepted with a warning (true) or rejected as a build error
// (false); see parse.GenerateSimpleLRParser.
func NewSLRParser(g grammar.Grammar, allowAmbig bool) (*parse.Parser, []string, error) {
	return parse.GenerateSimpleLRParser(g, allowAmbig)
}

// NewCLRParser returns a canonical LR(1) parser for g.
func NewCLRParser(g grammar.Grammar) (*parse.Parser, []string, error) {
	return parse.GenerateCanonicalLR1Parser(g)
}
