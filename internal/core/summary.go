package core

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the amount aggregated over one category.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

// MonthlyTotal is the amount aggregated over one calendar month.
type MonthlyTotal struct {
	Year  int
	Month time.Month // 1-12
	Total decimal.Decimal
}

// Label renders the month for display, e.g. "March 2024".
func (m MonthlyTotal) Label() string {
	return m.Month.String() + " " + strconv.Itoa(m.Year)
}

// CategoryTotals sums amounts per category over records. The result
// always has exactly one entry per category in the fixed set, in
// display order; categories with no records total zero.
func CategoryTotals(records []Expense) []CategoryTotal {
	byCategory := make(map[Category]decimal.Decimal, len(Categories))
	for _, r := range records {
		byCategory[r.Category] = byCategory[r.Category].Add(r.Amount)
	}
	out := make([]CategoryTotal, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, CategoryTotal{Category: c, Total: byCategory[c]})
	}
	return out
}

// MonthlyTotals sums amounts per distinct (year, month) over records,
// ordered chronologically. Empty input yields an empty slice.
func MonthlyTotals(records []Expense) []MonthlyTotal {
	type ym struct {
		year  int
		month time.Month
	}
	byMonth := make(map[ym]decimal.Decimal)
	for _, r := range records {
		k := ym{year: r.Date.Year(), month: r.Date.Month()}
		byMonth[k] = byMonth[k].Add(r.Amount)
	}
	out := make([]MonthlyTotal, 0, len(byMonth))
	for k, total := range byMonth {
		out = append(out, MonthlyTotal{Year: k.year, Month: k.month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// GrandTotal sums amounts over all records.
func GrandTotal(records []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
