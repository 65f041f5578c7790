package filtering

import (
	"context"
	"log/slog"
)

// Decision is the filter outcome for one identifier
type Decision struct {
	ID       string
	Included bool
	Reason   string
}

// Selection holds the decisions for a batch of identifiers, in input order
type Selection struct {
	Decisions []Decision
}

// Included returns the identifiers that passed the filter
func (s *Selection) Included() []string {
	return s.ids(true)
}

// Excluded returns the identifiers that did not pass the filter
func (s *Selection) Excluded() []string {
	return s.ids(false)
}

func (s *Selection) ids(included bool) []string {
	out := make([]string, 0, len(s.Decisions))
	for _, d := range s.Decisions {
		if d.Included == included {
			out = append(out, d.ID)
		}
	}
	return out
}

// Select decides every identifier and logs each decision at debug level
//
// The filtering process:
// 1. Decide each identifier with the include and exclude patterns
// 2. Record the decision and its reason in input order
// 3. Log a summary of included and excluded counts
func (f *FileFilter) Select(ctx context.Context, ids []string) *Selection {
	sel := &Selection{Decisions: make([]Decision, 0, len(ids))}

	includedCount := 0
	for _, id := range ids {
		included, reason := f.Decide(id)
		sel.Decisions = append(sel.Decisions, Decision{ID: id, Included: included, Reason: reason})

		if included {
			includedCount++
			slog.DebugContext(ctx, "Including file", "id", id, "reason", reason)
		} else {
			slog.DebugContext(ctx, "Excluding file", "id", id, "reason", reason)
		}
	}

	slog.DebugContext(ctx, "File filtering completed",
		"included", includedCount,
		"excluded", len(ids)-includedCount)

	return sel
}
