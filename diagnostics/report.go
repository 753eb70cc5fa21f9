// Package diagnostics renders human-readable build-time output for a
// constructed parser: the ACTION/GOTO table dump (delegated to the table's
// own String(), grounded on the teacher's rosed-based renderer in
// parse/{slr,lalr,clr1}.go) alongside the conflict log collected during its
// construction (spec.md §4.6/§6: "Warnings: conflict resolutions, unused
// rules, unreachable productions, and unused precedences are reported to the
// diagnostic log but do not prevent parser construction").
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/dekarrin/perch/parse"
)

// ConflictEntry is one resolved-conflict warning, split into the state it
// occurred in (when the constructor recorded one) and the resolution
// message itself.
type ConflictEntry struct {
	State   string
	Message string
}

// ParseConflictLog splits the raw warning strings returned alongside a
// constructed parser (parse.GenerateLALR1Parser et al.) into ConflictEntry
// values. Warnings are expected in "state <s>: <message>" form, as produced
// by every parse table constructor; any warning not in that form is kept
// with an empty State.
func ParseConflictLog(warnings []string) []ConflictEntry {
	entries := make([]ConflictEntry, 0, len(warnings))
	for _, w := range warnings {
		if state, msg, ok := strings.Cut(w, ": "); ok && strings.HasPrefix(state, "state ") {
			entries = append(entries, ConflictEntry{State: strings.TrimPrefix(state, "state "), Message: msg})
			continue
		}
		entries = append(entries, ConflictEntry{Message: w})
	}
	return entries
}

// Report bundles a parser's table dump with its construction-time conflict
// log for presentation in a build log or diagnostic command.
type Report struct {
	TableDump string
	Conflicts []ConflictEntry
}

// NewReport builds a Report from a constructed table and the warnings
// returned alongside it.
func NewReport(table parse.LRParseTable, warnings []string) Report {
	return Report{
		TableDump: table.String(),
		Conflicts: ParseConflictLog(warnings),
	}
}

// String renders the table dump followed by a numbered list of conflict
// resolutions, or "no conflicts" when the grammar was unambiguous.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString(r.TableDump)
	sb.WriteString("\n\n")

	if len(r.Conflicts) == 0 {
		sb.WriteString("no conflicts\n")
		return sb.String()
	}

	sb.WriteString("conflicts:\n")
	for i, c := range r.Conflicts {
		if c.State != "" {
			fmt.Fprintf(&sb, "  %d. state %s: %s\n", i+1, c.State, c.Message)
		} else {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, c.Message)
		}
	}
	return sb.String()
}
