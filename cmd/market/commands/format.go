package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/wonny/stockmarket/internal/stats"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints quotes through these helpers
// ═══════════════════════════════════════════════════════════

const timeLayout = "2006-01-02 15:04"

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block with the simulated time
func PrintHeader(w io.Writer, title string, now time.Time) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "  Market time : %s\n", now.Format(timeLayout))
	PrintSeparator(w)
}

// PrintPage prints one page of slots. Empty slots are printed as blank rows
// so every page keeps the same height.
func PrintPage(w io.Writer, index, count int, slots []*stats.Quote) {
	fmt.Fprintf(w, "  %-8s %10s %10s %6s %10s %10s %10s\n",
		"SYMBOL", "PRICE", "TODAY", "", "DAILY", "WEEKLY", "MONTHLY")
	PrintSeparator(w)

	for _, q := range slots {
		if q == nil {
			fmt.Fprintln(w, "  -")
			continue
		}
		fmt.Fprintf(w, "  %-8s %10s %10s %6s %10s %10s %10s\n",
			q.Symbol,
			q.Price.StringFixed(2),
			q.Today.StringFixed(2),
			trendMark(q.TodayTrend),
			q.Daily,
			q.Weekly,
			q.Monthly,
		)
	}

	PrintSeparator(w)
	fmt.Fprintf(w, "  Page %d/%d\n", index+1, count)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

func trendMark(t stats.Trend) string {
	switch t {
	case stats.Up:
		return "▲"
	case stats.Down:
		return "▼"
	default:
		return "="
	}
}
