package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"outgo/internal/core"
)

// fraction divides part by total, safe against a zero total.
func fraction(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	f, _ := part.Div(total).Float64()
	return f
}

// renderCategoryChart draws one bar per category, scaled against the
// grand total so the bars read as shares of spending. All five
// categories are always shown, zero totals included.
func renderCategoryChart(records []core.Expense, width int) string {
	totals := core.CategoryTotals(records)
	grand := core.GrandTotal(records)

	var b strings.Builder
	b.WriteString(titleStyle.Render("By category"))
	b.WriteString("\n")
	for _, ct := range totals {
		style := categoryStyle(ct.Category)
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-14s", ct.Category)),
			style.Render(bar(fraction(ct.Total, grand), width)),
			mutedStyle.Render(core.FormatAmount(ct.Total)),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderMonthlyChart draws one bar per calendar month present in the
// record set, chronological, scaled against the largest month.
func renderMonthlyChart(records []core.Expense, width int) string {
	totals := core.MonthlyTotals(records)

	var b strings.Builder
	b.WriteString(titleStyle.Render("By month"))
	b.WriteString("\n")
	if len(totals) == 0 {
		b.WriteString(mutedStyle.Render("no records"))
		return b.String()
	}

	max := decimal.Zero
	for _, mt := range totals {
		if mt.Total.GreaterThan(max) {
			max = mt.Total
		}
	}
	for _, mt := range totals {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-14s", mt.Label())),
			accentStyle.Render(bar(fraction(mt.Total, max), width)),
			mutedStyle.Render(core.FormatAmount(mt.Total)),
		))
	}
	return strings.TrimRight(b.String(), "\n")
}
