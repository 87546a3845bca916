// Package report renders a valuation run as a Markdown document and,
// optionally, as HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/models"
)

// BuildMarkdown produces a Markdown report: the summary block followed
// by up to maxRows leading periods of the table. maxRows <= 0 shows the
// whole table.
func BuildMarkdown(scenario string, rows []engine.PeriodRow, summary models.ValuationSummary, maxRows int) string {
	var b strings.Builder

	title := "Credit Valuation Report"
	if scenario != "" {
		title = fmt.Sprintf("Credit Valuation Report: %s", scenario)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Accounts | %d |\n", summary.NumAccounts)
	fmt.Fprintf(&b, "| Periods | %d |\n", summary.NumPeriods)
	fmt.Fprintf(&b, "| Total Revenue | $%.2f |\n", summary.TotalRevenue)
	fmt.Fprintf(&b, "| Total Cost | $%.2f |\n", summary.TotalCost)
	fmt.Fprintf(&b, "| Total Net Income | $%.2f |\n", summary.TotalNetIncome)
	fmt.Fprintf(&b, "| Total PV | $%.2f |\n", summary.TotalPV)
	fmt.Fprintf(&b, "| PV per Account | $%.2f |\n", summary.PVPerAccount)
	fmt.Fprintf(&b, "| Final Survival Rate | %.2f%% |\n", summary.FinalSurvivalRate*100)

	n := len(rows)
	if maxRows > 0 && maxRows < n {
		n = maxRows
	}
	fmt.Fprintf(&b, "\n## Periods (first %d of %d)\n\n", n, len(rows))
	fmt.Fprintf(&b, "| Period | Active BOP | Revenue | Cost | Net Income | PV | Cumulative PV |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|\n")
	for _, r := range rows[:n] {
		fmt.Fprintf(&b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
			r.Period, r.ActiveAccountsBOP, r.TotalRevenue, r.TotalCost,
			r.NetIncome, r.PVNetIncome, r.CumulativePV)
	}

	return b.String()
}

// RenderHTML converts a Markdown report to HTML.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ValidateMarkdown checks that the input parses as Markdown. Goldmark
// is very permissive, so this is a basic sanity check.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
