package lex

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"unicode/utf8"

	"github.com/dekarrin/perch/types"
)

// lazyLex is a TokenStream that scans input one token at a time, grounded on
// the teacher's lazyLex (lex/lazy.go): a single composite regex per scan
// attempt, longest-match-wins with declaration-order tie-break
// (selectMatch), and running line/position tracking for error reporting.
// Extended per spec.md §3/§4.2/§4.3 with ignore characters, a literal
// fallback, keyword remap, and a single attached error handler in place of
// the teacher's multi-state machine (this scanner has no states).
type lazyLex struct {
	r       *regexReader
	pattern *regexp.Regexp
	rules   []*tokenRule

	classes  map[string]types.TokenClass
	literals map[byte]bool

	ignoreChars  string
	errorHandler ErrorHandler

	curLine     int
	curLinePos  int
	curFullLine string
	bytePos     int

	done      bool
	panicMode bool
}

// Next returns the next token in the stream and advances the stream by one
// token. If at the end of the stream, this returns a token whose Class() is
// types.TokenEndOfText. If scanning fails and no error handler resolves it,
// it returns a token whose Class() is types.TokenError.
func (lx *lazyLex) Next() types.Token {
	if lx.done {
		return lx.makeEOTToken()
	}

	for {
		// step 1: skip ignore characters
		skipped, err := lx.skipIgnoreChars()
		if err != nil {
			return lx.tokenForIOError(err)
		}
		if skipped {
			continue
		}

		// step 2/3: attempt the composite rule matcher
		matches, err := lx.r.SearchAndAdvance(lx.pattern)
		if err != nil {
			return lx.tokenForIOError(err)
		}

		if len(matches) > 0 {
			ruleIdx, lexeme := selectMatch(matches)
			rule := lx.rules[ruleIdx]

			startLine := lx.curLine
			startLinePos := lx.curLinePos
			startFullLine := lx.curFullLine
			startBytePos := lx.bytePos

			lx.advancePosition(lexeme)

			mut := &MutableToken{Kind: rule.name, Value: lexeme, Line: startLine}
			updated := *mut
			keep := true
			if rule.action != nil {
				updated, keep = rule.action(mut, startLine)
				// an action may move the line counter forward (e.g. an
				// ignored newline-run rule tracking blank lines); it is
				// authoritative from this point on. With no action, curLine
				// already reflects advancePosition's count of newlines
				// consumed by the match, so it must be left alone.
				lx.curLine = updated.Line
			}

			if !keep || rule.ignored {
				continue
			}

			if to, ok := rule.remap[updated.Value]; ok {
				updated.Kind = to
			}

			class, ok := lx.classes[updated.Kind]
			if !ok {
				class = types.MakeDefaultClass(updated.Kind)
			}

			return lexerTokenAt(class, updated.Value, startLinePos, startLine, startFullLine, startBytePos)
		}

		// step 4: no rule matched. try the literal fallback.
		ch, ok, err := lx.peekByte()
		if err != nil {
			return lx.tokenForIOError(err)
		}
		if ok && lx.literals[ch] {
			startLine := lx.curLine
			startLinePos := lx.curLinePos
			startFullLine := lx.curFullLine
			startBytePos := lx.bytePos

			lexeme := string(ch)
			if _, _, err := lx.r.ReadRune(); err != nil && err != io.EOF {
				return lx.tokenForIOError(err)
			}
			lx.advancePosition(lexeme)

			class := types.MakeDefaultClass(lexeme)
			return lexerTokenAt(class, lexeme, startLinePos, startLine, startFullLine, startBytePos)
		}

		if !ok {
			// genuinely at end of input with nothing left to try
			lx.done = true
			return lx.makeEOTToken()
		}

		tok, handled := lx.runErrorHandler()
		if handled {
			return tok
		}
		// handler asked to discard its match and keep scanning
	}
}

// Peek returns the next token in the stream without advancing the stream.
func (lx *lazyLex) Peek() types.Token {
	lx.r.Mark("peek")
	oldLine, oldLinePos, oldFullLine := lx.curLine, lx.curLinePos, lx.curFullLine
	oldBytePos := lx.bytePos
	oldDone, oldPanic := lx.done, lx.panicMode

	tok := lx.Next()

	lx.r.Restore("peek")
	lx.curLine, lx.curLinePos, lx.curFullLine = oldLine, oldLinePos, oldFullLine
	lx.bytePos = oldBytePos
	lx.done, lx.panicMode = oldDone, oldPanic

	return tok
}

// HasNext returns whether the stream has any additional tokens.
func (lx *lazyLex) HasNext() bool {
	return !lx.done
}

// advancePosition updates line/column/byte tracking for text that has just
// been consumed from the input.
func (lx *lazyLex) advancePosition(text string) {
	for _, ch := range text {
		if ch == '\n' {
			lx.curLine++
			lx.curLinePos = 0
			lx.curFullLine = ""
		}
		lx.curLinePos++
		lx.curFullLine += string(ch)
	}
	lx.bytePos += len(text)
}

// skipIgnoreChars advances past a run of characters in the ignore set
// (spec.md §4.3 step 1), returning whether anything was skipped.
func (lx *lazyLex) skipIgnoreChars() (bool, error) {
	if lx.ignoreChars == "" {
		return false, nil
	}

	var any bool
	for {
		ch, ok, err := lx.peekByte()
		if err != nil {
			return any, err
		}
		if !ok || !containsByte(lx.ignoreChars, ch) {
			return any, nil
		}
		if _, err := lx.r.ReadRune(); err != nil && err != io.EOF {
			return any, err
		}
		lx.advancePosition(string(ch))
		any = true
	}
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// peekByte returns the next unread byte without consuming it, or ok=false at
// end of input.
func (lx *lazyLex) peekByte() (byte, bool, error) {
	lx.r.Mark("peekByte")
	defer lx.r.Restore("peekByte")

	buf := make([]byte, 1)
	n, err := lx.r.Read(buf)
	if n == 0 {
		if err == io.EOF || err == nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return buf[0], true, nil
}

// runErrorHandler invokes the declared ErrorHandler on the remaining input
// (spec.md §4.3 step 4). It returns (tok, true) when a token should be
// yielded to the caller, or (_, false) when the caller should keep scanning.
func (lx *lazyLex) runErrorHandler() (types.Token, bool) {
	lx.r.Mark("errHandler")
	remainder, _ := io.ReadAll(lx.r)
	lx.r.Restore("errHandler")

	startLine := lx.curLine
	startLinePos := lx.curLinePos
	startFullLine := lx.curFullLine
	startBytePos := lx.bytePos

	if lx.errorHandler == nil {
		lx.done = true
		return lexerTokenAt(types.TokenError, "no rule matches remaining input", startLinePos, startLine, startFullLine, startBytePos), true
	}

	tok, yield, consumed := lx.errorHandler(string(remainder), startLine)
	if consumed <= 0 {
		lx.done = true
		return lexerTokenAt(types.TokenError, "error handler made no progress; aborting scan", startLinePos, startLine, startFullLine, startBytePos), true
	}
	if consumed > len(remainder) {
		consumed = len(remainder)
	}

	lx.advancePosition(string(remainder[:consumed]))
	lx.r.Seek(int64(consumed), io.SeekCurrent)

	if yield {
		return tok, true
	}
	return nil, false
}

func (lx *lazyLex) makeEOTToken() types.Token {
	return lexerTokenAt(types.TokenEndOfText, "", lx.curLinePos, lx.curLine, lx.curFullLine, lx.bytePos)
}

func (lx *lazyLex) makeErrorTokenf(formatMsg string, args ...any) types.Token {
	msg := fmt.Sprintf(formatMsg, args...)
	return lexerTokenAt(types.TokenError, msg, lx.curLinePos, lx.curLine, lx.curFullLine, lx.bytePos)
}

// tokenForIOError takes an error returned from an I/O operation and produces
// an appropriate token: TokenEndOfText for io.EOF, else TokenError.
func (lx *lazyLex) tokenForIOError(err error) types.Token {
	lx.done = true

	if err == io.EOF {
		lx.panicMode = false
		return lx.makeEOTToken()
	}
	return lx.makeErrorTokenf("I/O error: %s", err.Error())
}

func lexerTokenAt(class types.TokenClass, lexeme string, linePos, lineNum int, fullLine string, bytePos int) types.Token {
	return types.NewToken(class, lexeme, linePos, lineNum, fullLine, bytePos)
}

// selectMatch picks among the candidate sub-expression matches from one
// SearchAndAdvance call. candidates[0] is the whole-match group (discarded);
// candidates[i] for i>=1 corresponds to rule i-1. When more than one rule
// matched (possible when their patterns overlap), the longest match wins;
// ties are broken by declaration order (GNU lex semantics, spec.md §4.1
// "Token rules also carry an insertion order, which defines match priority
// when patterns overlap").
//
// Returns the index of the winning rule and the text it matched.
func selectMatch(candidates []string) (int, string) {
	subExprMatches := map[int]string{}
	for i := 1; i < len(candidates); i++ {
		if candidates[i] != "" {
			subExprMatches[i-1] = candidates[i]
		}
	}

	if len(subExprMatches) > 1 {
		var longest int
		for i := range subExprMatches {
			if n := utf8.RuneCountInString(subExprMatches[i]); n > longest {
				longest = n
			}
		}

		keep := map[int]string{}
		for i := range subExprMatches {
			if utf8.RuneCountInString(subExprMatches[i]) == longest {
				keep[i] = subExprMatches[i]
			}
		}
		subExprMatches = keep

		if len(subExprMatches) > 1 {
			lowestIndex := math.MaxInt
			for i := range subExprMatches {
				if i < lowestIndex {
					lowestIndex = i
				}
			}
			subExprMatches = map[int]string{lowestIndex: subExprMatches[lowestIndex]}
		}
	}

	var matchIndex int
	var matchText string
	for i, m := range subExprMatches {
		matchIndex, matchText = i, m
		break
	}

	return matchIndex, matchText
}
