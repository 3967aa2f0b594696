package api

import (
	"math"         // Page bound
	"net/http"     // HTTP status codes
	"strconv"      // Message formatting
	"unicode/utf8" // Length limits

	"finance_tracker/internal/store"    // Record store
	"finance_tracker/internal/utils"    // Cache
	"finance_tracker/internal/validate" // Input validation

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact amounts
	"github.com/sirupsen/logrus"    // Logging
	"gorm.io/gorm"                  // GORM ORM library
)

// Field length limits shared by create and update
const (
	maxDescriptionLen = 500
	maxCategoryLen    = 100
)

// Amounts are stored as DECIMAL(14,2)
const amountScale = 2

var maxAmount = decimal.New(1, 12) // Exclusive upper bound

// CreateExpenseRequest is the body of POST /api/expenses
type CreateExpenseRequest struct {
	Amount      *validate.Number `json:"amount" binding:"required"`               // Must be > 0
	Description *string          `json:"description" binding:"omitempty,max=500"` // Optional
	Date        *string          `json:"date" binding:"required"`                 // RFC 3339 or YYYY-MM-DD
	Category    *string          `json:"category" binding:"omitempty,max=100"`    // Optional free-text label
	CategoryID  *uint            `json:"categoryId" binding:"omitempty,gt=0"`     // Optional owned category
}

// UpdateExpenseRequest is the body of PUT /api/expenses/:id; absent fields
// are left alone, null clears the optional ones
type UpdateExpenseRequest struct {
	Amount      validate.Nullable[validate.Number] `json:"amount"`
	Description validate.Nullable[string]          `json:"description"`
	Date        validate.Nullable[string]          `json:"date"`
	Category    validate.Nullable[string]          `json:"category"`
	CategoryID  validate.Nullable[uint]            `json:"categoryId"`
}

// ExpenseListResponse is one page of expenses
type ExpenseListResponse struct {
	Data       any        `json:"data"`       // Expenses of this page
	Pagination Pagination `json:"pagination"` // Paging metadata
}

// Pagination describes the page returned
type Pagination struct {
	Total      int64 `json:"total"`      // Matching expenses over all pages
	Page       int   `json:"page"`       // Current page
	Limit      int   `json:"limit"`      // Page size
	TotalPages int   `json:"totalPages"` // ceil(total / limit)
}

// checkAmount keeps amounts within what the amount column stores exactly
func checkAmount(issues *validate.Issues, amount decimal.Decimal) {
	switch {
	case !amount.IsPositive():
		issues.Add("amount", "Amount must be a positive number")
	case !amount.Equal(amount.Round(amountScale)):
		issues.Add("amount", "must have at most 2 decimal places")
	case amount.GreaterThanOrEqual(maxAmount):
		issues.Add("amount", "must be less than "+maxAmount.String())
	}
}

func checkLength(issues *validate.Issues, field string, s *string, limit int) {
	if s != nil && utf8.RuneCountInString(*s) > limit {
		issues.Add(field, "must be at most "+strconv.Itoa(limit)+" characters")
	}
}

// CreateExpenseHandler records an expense for the authenticated user
func CreateExpenseHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateExpenseRequest
		issues, decoded := bindJSON(c, &req)
		if !decoded {
			respondError(c, issues.Err(), "create expense")
			return
		}
		in := store.NewExpense{
			Description: req.Description,
			Category:    trimmed(req.Category),
			CategoryID:  req.CategoryID,
		}
		if req.Amount != nil {
			checkAmount(&issues, req.Amount.Decimal)
			in.Amount = req.Amount.Decimal
		}
		if req.Date != nil {
			date, err := validate.ParseDate(*req.Date)
			if err != nil {
				issues.Add("date", "must be a valid date")
			}
			in.Date = date
		}
		if err := issues.Err(); err != nil {
			respondError(c, err, "create expense")
			return
		}
		expense, err := store.CreateExpense(c.Request.Context(), db, userID, in)
		if err != nil {
			respondError(c, err, "create expense")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "expense_id": expense.ID}).Info("Expense created")
		c.JSON(http.StatusCreated, expense)
	}
}

// parseExpenseQuery validates every list parameter before any is applied
func parseExpenseQuery(c *gin.Context) (store.ExpenseFilter, store.Page, error) {
	var issues validate.Issues
	page := store.Page{Page: store.DefaultPage, Limit: store.DefaultLimit}
	if v, ok := issues.QueryInt("page", c.Query("page"), 1, math.MaxInt32); ok {
		page.Page = v
	}
	if v, ok := issues.QueryInt("limit", c.Query("limit"), 1, store.MaxLimit); ok {
		page.Limit = v
	}
	f := store.ExpenseFilter{
		StartDate: issues.QueryDate("startDate", c.Query("startDate")),
		EndDate:   issues.QueryDate("endDate", c.Query("endDate")),
		MinAmount: issues.QueryDecimal("minAmount", c.Query("minAmount")),
		MaxAmount: issues.QueryDecimal("maxAmount", c.Query("maxAmount")),
	}
	if category, ok := c.GetQuery("category"); ok && category != "" {
		f.Category = &category
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		issues.Add("endDate", "must not be before startDate")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		issues.Add("maxAmount", "must not be less than minAmount")
	}
	return f, page, issues.Err()
}

// ListExpensesHandler returns a filtered page of the user's expenses
func ListExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		filter, page, err := parseExpenseQuery(c)
		if err != nil {
			respondError(c, err, "list expenses")
			return
		}
		result, err := store.ListExpenses(c.Request.Context(), db, userID, filter, page)
		if err != nil {
			respondError(c, err, "list expenses")
			return
		}
		c.JSON(http.StatusOK, ExpenseListResponse{
			Data: result.Records,
			Pagination: Pagination{
				Total:      result.Total,
				Page:       result.Page,
				Limit:      result.Limit,
				TotalPages: result.TotalPages,
			},
		})
	}
}

// GetExpenseHandler returns one of the user's expenses
func GetExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		expense, err := store.GetExpense(c.Request.Context(), db, userID, id)
		if err != nil {
			respondError(c, err, "get expense")
			return
		}
		c.JSON(http.StatusOK, expense)
	}
}

// buildPatch validates an update body and converts it into a store patch
func buildPatch(req UpdateExpenseRequest) (store.ExpensePatch, error) {
	var issues validate.Issues
	var patch store.ExpensePatch

	if req.Amount.Set {
		if req.Amount.Value == nil {
			issues.Add("amount", "cannot be null")
		} else {
			checkAmount(&issues, req.Amount.Value.Decimal)
			patch.Amount = &req.Amount.Value.Decimal
		}
	}
	if req.Date.Set {
		if req.Date.Value == nil {
			issues.Add("date", "cannot be null")
		} else if date, err := validate.ParseDate(*req.Date.Value); err != nil {
			issues.Add("date", "must be a valid date")
		} else {
			patch.Date = &date
		}
	}
	if req.Description.Set {
		checkLength(&issues, "description", req.Description.Value, maxDescriptionLen)
		patch.Description = req.Description.Value
		patch.ClearDescription = req.Description.Value == nil
	}
	if req.Category.Set {
		checkLength(&issues, "category", req.Category.Value, maxCategoryLen)
		patch.Category = trimmed(req.Category.Value)
		patch.ClearCategory = patch.Category == nil
	}
	if req.CategoryID.Set {
		if req.CategoryID.Value != nil && *req.CategoryID.Value == 0 {
			issues.Add("categoryId", "must be greater than 0")
		}
		patch.CategoryID = req.CategoryID.Value
		patch.ClearCategoryID = req.CategoryID.Value == nil
	}
	return patch, issues.Err()
}

// UpdateExpenseHandler changes the supplied fields of one of the user's expenses
func UpdateExpenseHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req UpdateExpenseRequest
		if issues, _ := bindJSON(c, &req); len(issues) > 0 {
			respondError(c, issues.Err(), "update expense")
			return
		}
		patch, err := buildPatch(req)
		if err != nil {
			respondError(c, err, "update expense")
			return
		}
		expense, err := store.UpdateExpense(c.Request.Context(), db, userID, id, patch)
		if err != nil {
			respondError(c, err, "update expense")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "expense_id": id}).Info("Expense updated")
		c.JSON(http.StatusOK, expense)
	}
}

// DeleteExpenseHandler removes one of the user's expenses
func DeleteExpenseHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := store.DeleteExpense(c.Request.Context(), db, userID, id); err != nil {
			respondError(c, err, "delete expense")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "expense_id": id}).Info("Expense deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
	}
}
