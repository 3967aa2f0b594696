package store

import (
	"context" // Request scope
	"fmt"     // Error wrapping
	"time"    // Date bounds

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/domain" // Domain models

	"github.com/shopspring/decimal" // Exact amounts
	"golang.org/x/sync/errgroup"    // Concurrent count and page fetch
	"gorm.io/gorm"                  // GORM ORM library
)

var errExpenseNotFound = apperr.New(apperr.NotFound, "Expense not found")

// Pagination defaults and bounds
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ExpenseFilter narrows an expense listing. Nil fields do not filter;
// the rest are combined with AND and every bound is inclusive.
type ExpenseFilter struct {
	StartDate *time.Time       // date >= StartDate
	EndDate   *time.Time       // date <= EndDate
	MinAmount *decimal.Decimal // amount >= MinAmount
	MaxAmount *decimal.Decimal // amount <= MaxAmount
	Category  *string          // exact label match
}

func (f ExpenseFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.StartDate != nil {
		tx = tx.Where("date >= ?", f.StartDate.UTC())
	}
	if f.EndDate != nil {
		tx = tx.Where("date <= ?", f.EndDate.UTC())
	}
	if f.MinAmount != nil {
		tx = tx.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		tx = tx.Where("amount <= ?", *f.MaxAmount)
	}
	if f.Category != nil {
		tx = tx.Where("category = ?", *f.Category)
	}
	return tx
}

// Page selects one page of results
type Page struct {
	Page  int // 1-based page number
	Limit int // Page size, 1..MaxLimit
}

// Offset is the number of rows before this page
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// TotalPages is ceil(total / limit)
func (p Page) TotalPages(total int64) int {
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ExpensePage is one page of a filtered listing
type ExpensePage struct {
	Records    []domain.Expense // Rows of this page, newest first
	Total      int64            // Rows matching the filter across all pages
	Page       int              // Current page
	Limit      int              // Page size
	TotalPages int              // ceil(Total / Limit)
}

// ListExpenses returns one page of the owner's expenses matching f, newest
// first with ties in insertion order. The page and the total count are
// fetched concurrently.
func ListExpenses(ctx context.Context, db *gorm.DB, ownerID uint, f ExpenseFilter, p Page) (*ExpensePage, error) {
	if p.Page < 1 || p.Limit < 1 || p.Limit > MaxLimit {
		return nil, fmt.Errorf("invalid page %d/%d", p.Page, p.Limit)
	}
	records := []domain.Expense{}
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Each goroutine builds its own statement; chained *gorm.DB values are not shareable
		return db.WithContext(gctx).Scopes(OwnedBy(ownerID), f.scope).
			Order("date desc").Order("id asc").
			Offset(p.Offset()).Limit(p.Limit).
			Find(&records).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).Model(&domain.Expense{}).Scopes(OwnedBy(ownerID), f.scope).
			Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return &ExpensePage{
		Records:    records,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}, nil
}

// ExpensesBetween returns the owner's expenses with from <= date <= to,
// oldest first
func ExpensesBetween(ctx context.Context, db *gorm.DB, ownerID uint, from, to time.Time) ([]domain.Expense, error) {
	expenses := []domain.Expense{}
	err := db.WithContext(ctx).Scopes(OwnedBy(ownerID), ExpenseFilter{StartDate: &from, EndDate: &to}.scope).
		Order("date asc").Order("id asc").
		Find(&expenses).Error
	if err != nil {
		return nil, fmt.Errorf("load expenses between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}
	return expenses, nil
}

// NewExpense holds validated input for CreateExpense
type NewExpense struct {
	Amount      decimal.Decimal // Strictly positive
	Description *string         // Optional
	Date        time.Time       // Any zone, stored as UTC
	Category    *string         // Optional free-text label
	CategoryID  *uint           // Optional link, must be owned
}

// CreateExpense stores a new expense for ownerID and returns it as stored
func CreateExpense(ctx context.Context, db *gorm.DB, ownerID uint, in NewExpense) (*domain.Expense, error) {
	if err := requireOwnedCategory(ctx, db, ownerID, in.CategoryID); err != nil {
		return nil, err
	}
	expense := domain.Expense{
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date.UTC(),
		Category:    in.Category,
		CategoryID:  in.CategoryID,
		UserID:      ownerID, // Always the caller, never client supplied
	}
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return GetExpense(ctx, db, ownerID, expense.ID) // Report what the column kept
}

// GetExpense returns one of the owner's expenses
func GetExpense(ctx context.Context, db *gorm.DB, ownerID, id uint) (*domain.Expense, error) {
	expense, err := Owned[domain.Expense](ctx, db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, errExpenseNotFound
	}
	return expense, nil
}

// ExpensePatch lists the fields of an update. Nil pointers leave a field
// unchanged; the Clear flags set nullable fields to NULL.
type ExpensePatch struct {
	Amount           *decimal.Decimal
	Date             *time.Time
	Description      *string
	ClearDescription bool
	Category         *string
	ClearCategory    bool
	CategoryID       *uint
	ClearCategoryID  bool
}

func (p ExpensePatch) columns() map[string]any {
	cols := map[string]any{}
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	if p.Date != nil {
		cols["date"] = p.Date.UTC()
	}
	if p.ClearDescription {
		cols["description"] = nil
	} else if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.ClearCategory {
		cols["category"] = nil
	} else if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.ClearCategoryID {
		cols["category_id"] = nil
	} else if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	return cols
}

// UpdateExpense applies patch to one of the owner's expenses and returns
// the stored result
func UpdateExpense(ctx context.Context, db *gorm.DB, ownerID, id uint, patch ExpensePatch) (*domain.Expense, error) {
	if _, err := GetExpense(ctx, db, ownerID, id); err != nil {
		return nil, err
	}
	if !patch.ClearCategoryID {
		if err := requireOwnedCategory(ctx, db, ownerID, patch.CategoryID); err != nil {
			return nil, err
		}
	}
	if cols := patch.columns(); len(cols) > 0 {
		err := db.WithContext(ctx).Model(&domain.Expense{}).Scopes(OwnedBy(ownerID)).
			Where("id = ?", id).
			Updates(cols).Error
		if err != nil {
			return nil, fmt.Errorf("update expense %d: %w", id, err)
		}
	}
	return GetExpense(ctx, db, ownerID, id)
}

// DeleteExpense removes one of the owner's expenses
func DeleteExpense(ctx context.Context, db *gorm.DB, ownerID, id uint) error {
	if _, err := GetExpense(ctx, db, ownerID, id); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Delete(&domain.Expense{}, id).Error; err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func requireOwnedCategory(ctx context.Context, db *gorm.DB, ownerID uint, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	category, err := Owned[domain.Category](ctx, db, *categoryID, ownerID)
	if err != nil {
		return err
	}
	if category == nil {
		return errCategoryNotFound
	}
	return nil
}
