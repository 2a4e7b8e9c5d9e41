// Package output provides terminal output utilities for rulemine.
//
// This package includes:
//   - Table rendering for rules, frequent itemsets, stored runs and level summaries
//   - Report writers for the plain text, JSON and YAML report formats
//   - Progress bars and spinners for long-running mining passes
//
// Table rendering uses ASCII columns and ANSI color codes, which are
// suppressed when stdout is not a terminal or NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/rulemine/internal/store"
)

// ANSI color codes for confidence display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Confidence bands used to color rule tables.
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.5
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// confidenceColor returns the ANSI color code for a confidence value.
func confidenceColor(c float64) string {
	switch {
	case c >= HighConfidence:
		return colorGreen
	case c >= MediumConfidence:
		return colorYellow
	default:
		return colorRed
	}
}

// RenderRuleTable renders rules in the order given. Callers pass rules
// already ranked.
func RenderRuleTable(rules []*store.RuleRecord) string {
	if len(rules) == 0 {
		return "No rules found.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("%-4s %-28s %-20s %-6s %-6s %s\n",
		"#", "If", "Then", "Freq", "Base", "Confidence"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	// Rows
	for i, r := range rules {
		conf := fmt.Sprintf("%.4f", r.Confidence)
		sb.WriteString(fmt.Sprintf("%-4d %-28s %-20s %-6d %-6d %s\n",
			i+1,
			truncate(braced(r.Antecedent), 28),
			truncate(braced(r.Consequent), 20),
			r.AllFreq,
			r.LeftFreq,
			colorize(confidenceColor(r.Confidence), conf)))
	}

	return sb.String()
}

// RenderItemsetTable renders frequent itemsets with their support counts.
// total is the number of transactions mined; when positive a support
// percentage column is added.
func RenderItemsetTable(itemsets []*store.ItemsetRecord, total int) string {
	if len(itemsets) == 0 {
		return "No frequent itemsets found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-6s %-40s %-8s %s\n", "Level", "Items", "Count", "Support"))
	sb.WriteString(strings.Repeat("─", 66))
	sb.WriteString("\n")

	for _, rec := range itemsets {
		support := "—"
		if total > 0 {
			support = fmt.Sprintf("%.2f%%", 100*float64(rec.Count)/float64(total))
		}
		sb.WriteString(fmt.Sprintf("%-6d %-40s %-8d %s\n",
			rec.Level,
			truncate(strings.Join(rec.Items, " "), 40),
			rec.Count,
			support))
	}

	return sb.String()
}

// RenderRunTable renders stored runs, newest first as returned by the store.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-15s %-12s %-9s %-7s %-9s %s\n",
		"ID", "Created", "Transactions", "Support", "Levels", "Took", "Source"))
	sb.WriteString(strings.Repeat("─", 90))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-10s %-15s %-12d %-9d %-7d %-9s %s\n",
			ShortID(run.ID),
			formatRelativeTime(run.CreatedAt),
			run.TransactionCount,
			run.MinSupport,
			run.MaxLevel,
			FormatDuration(run.Duration),
			truncate(run.SourcePath, 30)))
	}

	return sb.String()
}

// RenderLevelSummary renders one line per level with its frequent itemset
// and rule counts. Levels with no frequent itemsets are grayed out.
func RenderLevelSummary(summaries []store.LevelSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-10s %-10s %s\n", "Level", "Frequent", "Rules"))
	sb.WriteString(strings.Repeat("─", 30))
	sb.WriteString("\n")

	for _, ls := range summaries {
		line := fmt.Sprintf("%-10s %-10d %d", LevelName(ls.Level), ls.Itemsets, ls.Rules)
		if ls.Itemsets == 0 {
			line = colorize(colorGray, line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// LevelName returns the plural name of itemsets of size k: singles, pairs,
// triples, then "k-itemsets".
func LevelName(k int) string {
	switch k {
	case 1:
		return "singles"
	case 2:
		return "pairs"
	case 3:
		return "triples"
	}
	return fmt.Sprintf("%d-itemsets", k)
}

// levelNoun is the singular of LevelName.
func levelNoun(k int) string {
	return strings.TrimSuffix(LevelName(k), "s")
}

// ShortID returns the first eight characters of a run id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// FormatDuration renders d in seconds with two decimals, e.g. "1.52s".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func braced(items []string) string {
	return "{" + strings.Join(items, " ") + "}"
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
