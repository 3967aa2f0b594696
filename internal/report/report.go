// Package report turns an owner's expenses into yearly and single-month
// spending summaries. All calendar arithmetic is done in UTC.
package report

import (
	"context" // Request scope
	"time"    // Calendar arithmetic

	"finance_tracker/internal/domain" // Domain models
	"finance_tracker/internal/store"  // Expense lookups

	"github.com/shopspring/decimal" // Exact sums
	"gorm.io/gorm"                  // GORM ORM library
)

// Accepted year range
const (
	MinYear = 1900
	MaxYear = 9999
)

// monthNames is fixed so labels never depend on the host locale
var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of month (1-12)
func MonthName(month time.Month) string {
	return monthNames[month-1]
}

// MonthTotal is one bucket of a yearly report
type MonthTotal struct {
	Month string          `json:"month"` // English month name
	Total decimal.Decimal `json:"total"` // Sum of amounts, zero when empty
}

// YearReport holds spending per calendar month of one year
type YearReport struct {
	Year       int             `json:"year"`       // Reported year
	Data       []MonthTotal    `json:"data"`       // January..December
	TotalSpent decimal.Decimal `json:"totalSpent"` // Sum of all twelve months
}

// MonthReport holds the expenses of one calendar month
type MonthReport struct {
	Month      string           `json:"month"`      // English month name
	Year       int              `json:"year"`       // Reported year
	TotalSpent decimal.Decimal  `json:"totalSpent"` // Sum of Expenses amounts
	Expenses   []domain.Expense `json:"expenses"`   // Matching expenses, oldest first
}

// YearWindow returns Jan 1 00:00:00.000 and Dec 31 23:59:59.999 UTC of year
func YearWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	return start, end
}

// MonthWindow returns the first and last millisecond of month in UTC. The
// last day is day 0 of the following month, so month length and leap
// years come from the calendar rather than a table.
func MonthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	end := lastDay.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// Yearly buckets expenses by UTC calendar month. Expenses outside year are
// ignored.
func Yearly(year int, expenses []domain.Expense) YearReport {
	var sums [12]decimal.Decimal
	for _, e := range expenses {
		d := e.Date.UTC()
		if d.Year() != year {
			continue
		}
		sums[d.Month()-1] = sums[d.Month()-1].Add(e.Amount)
	}

	r := YearReport{Year: year, Data: make([]MonthTotal, 12), TotalSpent: decimal.Zero}
	for i, sum := range sums {
		r.Data[i] = MonthTotal{Month: monthNames[i], Total: sum}
		r.TotalSpent = r.TotalSpent.Add(sum)
	}
	return r
}

// Monthly sums the given expenses of one month
func Monthly(year int, month time.Month, expenses []domain.Expense) MonthReport {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return MonthReport{Month: MonthName(month), Year: year, TotalSpent: total, Expenses: expenses}
}

// BuildYearly loads the owner's expenses of year and aggregates them
func BuildYearly(ctx context.Context, db *gorm.DB, ownerID uint, year int) (*YearReport, error) {
	from, to := YearWindow(year)
	expenses, err := store.ExpensesBetween(ctx, db, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	r := Yearly(year, expenses)
	return &r, nil
}

// BuildMonthly loads the owner's expenses of one month and sums them
func BuildMonthly(ctx context.Context, db *gorm.DB, ownerID uint, year int, month time.Month) (*MonthReport, error) {
	from, to := MonthWindow(year, month)
	expenses, err := store.ExpensesBetween(ctx, db, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	r := Monthly(year, month, expenses)
	return &r, nil
}
