package diagnostics

import (
	"testing"

	"github.com/dekarrin/perch/parse"
	"github.com/stretchr/testify/assert"
)

// fakeTable is a minimal parse.LRParseTable stand-in, used only to exercise
// NewReport without needing a real constructed parser table.
type fakeTable struct{ dump string }

func (f fakeTable) Initial() string                          { return "0" }
func (f fakeTable) Action(state, symbol string) parse.LRAction { return parse.LRAction{} }
func (f fakeTable) Goto(state, symbol string) (string, error)  { return "", nil }
func (f fakeTable) String() string                             { return f.dump }

func Test_ParseConflictLog_SplitsStateAndMessage(t *testing.T) {
	assert := assert.New(t)

	warnings := []string{
		`state 3: shift/reduce conflict resolved by precedence: shift/reduce conflict detected on terminal "+" (shift or reduce E -> E + E)`,
		`state 7: reduce/reduce conflict, keeping earlier-declared production: reduce/reduce conflict detected on terminal "a" (reduce A -> a or reduce B -> a)`,
		"some warning with no state prefix",
	}

	entries := ParseConflictLog(warnings)
	assert.Len(entries, 3)

	assert.Equal("3", entries[0].State)
	assert.Contains(entries[0].Message, "shift/reduce conflict resolved by precedence")

	assert.Equal("7", entries[1].State)
	assert.Contains(entries[1].Message, "reduce/reduce conflict")

	assert.Equal("", entries[2].State)
	assert.Equal("some warning with no state prefix", entries[2].Message)
}

func Test_ParseConflictLog_Empty(t *testing.T) {
	assert := assert.New(t)
	assert.Empty(ParseConflictLog(nil))
}

func Test_NewReport(t *testing.T) {
	assert := assert.New(t)

	table := fakeTable{dump: "S | A:a\n0 | s1"}
	warnings := []string{`state 2: shift/reduce conflict with no declared precedence, defaulting to shift: shift/reduce conflict detected on terminal "a" (shift or reduce S -> a)`}

	r := NewReport(table, warnings)
	assert.Equal(table.dump, r.TableDump)
	assert.Len(r.Conflicts, 1)
	assert.Equal("2", r.Conflicts[0].State)
}

func Test_Report_String_NoConflicts(t *testing.T) {
	assert := assert.New(t)

	r := Report{TableDump: "TABLE", Conflicts: nil}
	out := r.String()
	assert.Contains(out, "TABLE")
	assert.Contains(out, "no conflicts")
}

func Test_Report_String_WithConflicts(t *testing.T) {
	assert := assert.New(t)

	r := Report{
		TableDump: "TABLE",
		Conflicts: []ConflictEntry{
			{State: "1", Message: "shift/reduce conflict resolved by precedence"},
			{Message: "no state here"},
		},
	}
	out := r.String()
	assert.Contains(out, "TABLE")
	assert.Contains(out, "conflicts:")
	assert.Contains(out, "1. state 1: shift/reduce conflict resolved by precedence")
	assert.Contains(out, "2. no state here")
}
