package grammar

import (
	"fmt"
	"strings"
)

// addEBNFProductionString parses an EBNF-shorthand right-hand side and
// expands it into one or more plain BNF productions added as alternatives of
// nonTerminal. Supported shorthand, nestable and combinable left to right:
//
//	[ X ]          optional: equivalent to a synthesized helper that derives X or ε
//	{ X }          zero-or-more: a synthesized helper that recurses on itself
//	A | B          alternation grouped by parentheses, expands to separate productions
//	X %prec NAME   top-level alternative X takes NAME's declared precedence
//	               instead of its own rightmost terminal (yacc's %prec tag)
//
// This mirrors the convenience shorthand offered by yacc-family and PEG
// generators' grammar front ends, layered on top of the plain BNF model the
// rest of the package works with.
func (g *Grammar) addEBNFProductionString(nonTerminal string, rhs string) error {
	toks, err := tokenizeEBNF(rhs)
	if err != nil {
		return fmt.Errorf("nonterminal %q: %w", nonTerminal, err)
	}

	// %prec only makes sense pinned to a single top-level alternative, so it
	// is stripped out here, before any EBNF group expansion, rather than
	// threaded generically through expandAlternation/expandSequence.
	for _, group := range splitTopLevel(toks, "|") {
		group, precName, err := stripPrecTag(group)
		if err != nil {
			return fmt.Errorf("nonterminal %q: %w", nonTerminal, err)
		}

		alts, err := g.expandSequence(group)
		if err != nil {
			return fmt.Errorf("nonterminal %q: %w", nonTerminal, err)
		}

		for _, alt := range alts {
			prod := Production(alt)
			if len(alt) == 0 {
				prod = Epsilon
			}
			if precName != "" {
				g.AddRuleWithPrec(nonTerminal, prod, precName)
			} else {
				g.AddRule(nonTerminal, prod)
			}
		}
	}

	return nil
}

// stripPrecTag removes a trailing "%prec NAME" pair from a top-level
// alternative's token sequence, returning the remaining tokens and the
// precedence name, or group unchanged and "" if no tag is present.
func stripPrecTag(group []ebnfTok) ([]ebnfTok, string, error) {
	for i, t := range group {
		if t.kind != "sym" || t.sym != "%prec" {
			continue
		}
		if i != len(group)-2 {
			return nil, "", fmt.Errorf("%%prec tag must be the last two symbols of an alternative")
		}
		name := group[i+1]
		if name.kind != "sym" {
			return nil, "", fmt.Errorf("%%prec must be followed by a precedence name")
		}
		return group[:i], name.sym, nil
	}
	return group, "", nil
}

// ebnfTok is one lexical unit of an EBNF RHS string: a bare symbol name or
// one of the shorthand grouping delimiters.
type ebnfTok struct {
	kind string // "sym", "[", "]", "{", "}", "(", ")", "|"
	sym  string
}

func tokenizeEBNF(rhs string) ([]ebnfTok, error) {
	var toks []ebnfTok
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, ebnfTok{kind: "sym", sym: cur.String()})
			cur.Reset()
		}
	}

	for _, r := range rhs {
		switch r {
		case '[', ']', '{', '}', '(', ')', '|':
			flush()
			toks = append(toks, ebnfTok{kind: string(r)})
		case ' ', '\t', '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()

	return toks, nil
}

// expandAlternation splits toks on top-level "|" tokens and expands each
// side into a cross product of its optional/repetition groups, returning the
// full list of concrete symbol-sequence alternatives.
func (g *Grammar) expandAlternation(toks []ebnfTok) ([][]string, error) {
	groups := splitTopLevel(toks, "|")

	var allAlts [][]string
	for _, group := range groups {
		seqAlts, err := g.expandSequence(group)
		if err != nil {
			return nil, err
		}
		allAlts = append(allAlts, seqAlts...)
	}

	return allAlts, nil
}

// expandSequence walks a token sequence left to right, expanding each
// grouping construct it finds into a helper nonterminal, and returns the
// cross product of all choices as a list of concrete symbol sequences.
func (g *Grammar) expandSequence(toks []ebnfTok) ([][]string, error) {
	sequences := [][]string{{}}

	i := 0
	for i < len(toks) {
		t := toks[i]

		switch t.kind {
		case "sym":
			for j := range sequences {
				sequences[j] = append(sequences[j], t.sym)
			}
			i++

		case "[":
			end, err := matchGroup(toks, i, "[", "]")
			if err != nil {
				return nil, err
			}
			helper := g.synthesizeOptional(toks[i+1 : end])
			for j := range sequences {
				sequences[j] = append(sequences[j], helper)
			}
			i = end + 1

		case "{":
			end, err := matchGroup(toks, i, "{", "}")
			if err != nil {
				return nil, err
			}
			helper := g.synthesizeRepetition(toks[i+1 : end])
			for j := range sequences {
				sequences[j] = append(sequences[j], helper)
			}
			i = end + 1

		case "(":
			end, err := matchGroup(toks, i, "(", ")")
			if err != nil {
				return nil, err
			}
			innerAlts, err := g.expandAlternation(toks[i+1 : end])
			if err != nil {
				return nil, err
			}
			var expanded [][]string
			for _, seq := range sequences {
				for _, alt := range innerAlts {
					newSeq := append(append([]string{}, seq...), alt...)
					expanded = append(expanded, newSeq)
				}
			}
			sequences = expanded
			i = end + 1

		default:
			return nil, fmt.Errorf("unexpected token %q in production", t.kind)
		}
	}

	return sequences, nil
}

func matchGroup(toks []ebnfTok, start int, open, close string) (int, error) {
	depth := 0
	for i := start; i < len(toks); i++ {
		if toks[i].kind == open {
			depth++
		} else if toks[i].kind == close {
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("unterminated %q group", open)
}

func splitTopLevel(toks []ebnfTok, sep string) [][]ebnfTok {
	var groups [][]ebnfTok
	var cur []ebnfTok
	depth := 0

	for _, t := range toks {
		switch t.kind {
		case "[", "{", "(":
			depth++
		case "]", "}", ")":
			depth--
		}
		if depth == 0 && t.kind == sep {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)

	return groups
}

// synthesizeOptional adds a helper nonterminal "$optN" with two
// productions: the expansion of inner, and epsilon. Returns the helper's
// name.
func (g *Grammar) synthesizeOptional(inner []ebnfTok) string {
	helper := g.uniqueHelperName("opt")

	alts, err := g.expandAlternation(inner)
	if err != nil {
		// malformed inner content degrades to a literal passthrough; the
		// caller already validated bracket matching.
		alts = nil
	}
	for _, alt := range alts {
		g.AddRule(helper, Production(alt))
	}
	g.AddRule(helper, Epsilon)

	return helper
}

// synthesizeRepetition adds a helper nonterminal "$repN" with two
// productions: a recursive reference to itself followed by inner, and
// epsilon — i.e. left-recursive zero-or-more, so the LR table needed to
// recognize it stays bounded regardless of repetition count (purple dragon
// book's standard treatment of "{ X }" favors left recursion for exactly
// this reason). Returns the helper's name.
func (g *Grammar) synthesizeRepetition(inner []ebnfTok) string {
	helper := g.uniqueHelperName("rep")

	alts, err := g.expandAlternation(inner)
	if err != nil {
		alts = nil
	}
	for _, alt := range alts {
		rec := append(append([]string{helper}, alt...))
		g.AddRule(helper, Production(rec))
	}
	g.AddRule(helper, Epsilon)

	return helper
}

func (g *Grammar) uniqueHelperName(kind string) string {
	for {
		g.uniqueNum++
		name := fmt.Sprintf("$%s%d", kind, g.uniqueNum)
		if _, taken := g.rules[name]; !taken {
			return name
		}
	}
}
