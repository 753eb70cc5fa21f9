// Package lex implements the scanner compiler and engine: per-token-rule
// regular expressions are merged into a single composite matcher (grounded
// on the teacher's lex/lazy.go "super pattern" technique), with a literal
// single-character fallback, ignore-name convention, and keyword remap on
// top, per spec.md §3/§4.2/§4.3.
package lex

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dekarrin/perch/icterrors"
	"github.com/dekarrin/perch/types"
)

// ignorePrefix is the reserved token-rule name prefix (spec.md §3 "Token
// rule") whose matches are consumed and discarded rather than yielded.
const ignorePrefix = "ignore_"

// ErrorHandler is invoked when no token rule and no literal matches the
// remaining input (spec.md §4.3 step 4). It must consume at least one byte
// to make progress; a zero consumed is treated as fatal. It may optionally
// return a synthetic token to yield.
type ErrorHandler func(remaining string, line int) (tok types.Token, yield bool, consumed int)

// Lexer builds a scanner from token rules, a literal set, and ignore
// characters (spec.md §3 "lexer declaration"), then compiles it into a
// TokenStream-producing engine.
type Lexer interface {
	// AddClass registers a token kind, making it usable as a rule's name or
	// as a keyword-remap target.
	AddClass(cl types.TokenClass)

	// AddToken adds a token rule with the given name and regular expression
	// pattern. action may be nil. Returns an error if the pattern doesn't
	// compile, matches the empty string, or name hasn't been registered via
	// AddClass.
	AddToken(name string, pattern string, action Action) error

	// RemapKeyword adds an entry to the named rule's keyword remap table: a
	// match whose matched text equals value is reclassified as kind to
	// (spec.md §3 "Keyword remap"). to must already be a declared class.
	RemapKeyword(name string, value string, to string) error

	// AddLiteral adds a single-character literal to the literal set (spec.md
	// §3 "Literal set"): matched as itself when no rule matches.
	AddLiteral(ch byte)

	// SetIgnore sets the set of characters skipped between token attempts
	// (spec.md §4.3 step 1).
	SetIgnore(chars string)

	// SetErrorHandler installs the handler invoked on unmatched input.
	SetErrorHandler(handler ErrorHandler)

	// Lex returns a lazily-evaluated TokenStream over input: each call to
	// Next() scans exactly as much of input as is needed to produce one
	// token.
	Lex(input io.Reader) (types.TokenStream, error)

	// LexImmediate scans all of input up front and returns a TokenStream
	// backed by the resulting slice, surfacing the first lex error (if any)
	// immediately rather than as an in-stream error token.
	LexImmediate(input io.Reader) (types.TokenStream, error)
}

type tokenRule struct {
	name     string
	pattern  string
	compiled *regexp.Regexp
	action   Action
	remap    map[string]string
	ignored  bool
}

type lexerTemplate struct {
	order        []string
	rules        map[string]*tokenRule
	classes      map[string]types.TokenClass
	literals     map[byte]bool
	ignoreChars  string
	errorHandler ErrorHandler
}

// NewLexer returns a new, empty Lexer declaration.
func NewLexer() Lexer {
	return &lexerTemplate{
		rules:    map[string]*tokenRule{},
		classes:  map[string]types.TokenClass{},
		literals: map[byte]bool{},
	}
}

func (lx *lexerTemplate) AddClass(cl types.TokenClass) {
	lx.classes[cl.ID()] = cl
}

func (lx *lexerTemplate) AddToken(name string, pattern string, action Action) error {
	if _, ok := lx.classes[name]; !ok {
		return fmt.Errorf("%q is not a defined token class; add it with AddClass first", name)
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("cannot compile regex for %q: %w", name, err)
	}
	if compiled.MatchString("") {
		return fmt.Errorf("pattern for %q matches the empty string", name)
	}

	if _, exists := lx.rules[name]; !exists {
		lx.order = append(lx.order, name)
	}

	lx.rules[name] = &tokenRule{
		name:     name,
		pattern:  pattern,
		compiled: compiled,
		action:   action,
		remap:    map[string]string{},
		ignored:  strings.HasPrefix(name, ignorePrefix),
	}

	return nil
}

func (lx *lexerTemplate) RemapKeyword(name string, value string, to string) error {
	rule, ok := lx.rules[name]
	if !ok {
		return fmt.Errorf("%q is not a defined token rule; add it with AddToken first", name)
	}
	if _, ok := lx.classes[to]; !ok {
		return fmt.Errorf("keyword remap target %q is not a defined token class", to)
	}
	rule.remap[value] = to
	return nil
}

func (lx *lexerTemplate) AddLiteral(ch byte) {
	lx.literals[ch] = true
}

func (lx *lexerTemplate) SetIgnore(chars string) {
	lx.ignoreChars = chars
}

func (lx *lexerTemplate) SetErrorHandler(handler ErrorHandler) {
	lx.errorHandler = handler
}

// compile builds the single composite "super pattern" alternation out of the
// declared rules' patterns in insertion order, exactly as the teacher's
// lazyLex construction does: one capturing group per rule, anchored at the
// start of the remaining input on every match attempt.
func (lx *lexerTemplate) compile() (*regexp.Regexp, []*tokenRule, error) {
	ordered := make([]*tokenRule, len(lx.order))
	var super strings.Builder
	super.WriteString("^(?:")
	for i, name := range lx.order {
		rule := lx.rules[name]
		ordered[i] = rule
		super.WriteString("(" + rule.pattern + ")")
		if i+1 < len(lx.order) {
			super.WriteRune('|')
		}
	}
	super.WriteRune(')')

	compiled, err := regexp.Compile(super.String())
	if err != nil {
		return nil, nil, fmt.Errorf("composing token regexes: %w", err)
	}

	return compiled, ordered, nil
}

func (lx *lexerTemplate) Lex(input io.Reader) (types.TokenStream, error) {
	pattern, rules, err := lx.compile()
	if err != nil {
		return nil, err
	}

	return &lazyLex{
		r:            newRegexReader(input),
		pattern:      pattern,
		rules:        rules,
		classes:      lx.classes,
		literals:     lx.literals,
		ignoreChars:  lx.ignoreChars,
		errorHandler: lx.errorHandler,
		curLine:      1,
		curLinePos:   1,
	}, nil
}

func (lx *lexerTemplate) LexImmediate(input io.Reader) (types.TokenStream, error) {
	lazyCore, err := lx.Lex(input)
	if err != nil {
		return nil, err
	}

	var tokens []types.Token
	for lazyCore.HasNext() {
		tok := lazyCore.Next()
		if tok.Class().ID() == types.TokenError.ID() {
			return nil, icterrors.NewLexErrorFromPosition(tok.Lexeme(), tok.Line(), tok.LinePos(), tok.FullLine())
		}
		tokens = append(tokens, tok)
	}

	return &immediateTokenStream{tokens: tokens}, nil
}
