package tui

import (
	"fmt"
	"strings"

	"github.com/amishk599/sponsorscout/internal/model"
)

const maxDetailWidth = 60

// renderHistory lists settled actions, newest first, two lines each.
func renderHistory(entries []model.HistoryEntry, width int) string {
	if len(entries) == 0 {
		return dimStyle.Render("No actions have settled yet.")
	}

	limit := maxDetailWidth
	if width > 0 && width-4 < limit {
		limit = max(width-4, 8)
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		outcome := successStyle.Render("ok")
		if e.Outcome == model.OutcomeFailure {
			outcome = failureStyle.Render("failed")
		}
		fmt.Fprintf(&b, "#%d  %s  %-6s  %s  %s\n",
			e.Seq, e.SettledAt.Format("15:04:05"), e.Flow, outcome, truncate(e.Detail, limit))
		b.WriteString(dimStyle.Render("    " + truncate(historyResult(e), limit)))
	}
	return b.String()
}

func historyResult(e model.HistoryEntry) string {
	if e.Outcome == model.OutcomeFailure {
		return e.Result
	}
	switch e.Flow {
	case model.FlowUpload:
		return fmt.Sprintf("%d jobs: %s", e.NumJobs, e.Result)
	case model.FlowQuery:
		return fmt.Sprintf("%d relevant: %s", e.NumJobs, e.Result)
	}
	return e.Result
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
