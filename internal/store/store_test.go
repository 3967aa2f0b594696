package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"finance_tracker/internal/apperr"
	"finance_tracker/internal/db"
	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// StoreTestSuite runs store operations against a fresh SQLite file
type StoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	ctx   context.Context
	alice *domain.User
	bob   *domain.User
}

func (s *StoreTestSuite) SetupTest() {
	conn, err := db.OpenSQLite(filepath.Join(s.T().TempDir(), "store.db"))
	require.NoError(s.T(), err, "failed to open test database")
	s.db = conn
	s.ctx = context.Background()

	s.alice, err = CreateUser(s.ctx, s.db, "alice@example.com", "hash", nil)
	require.NoError(s.T(), err)
	s.bob, err = CreateUser(s.ctx, s.db, "bob@example.com", "hash", nil)
	require.NoError(s.T(), err)
}

func (s *StoreTestSuite) TearDownTest() {
	if s.db != nil {
		_ = db.Close(s.db)
	}
}

func (s *StoreTestSuite) addExpense(owner uint, amount string, date time.Time, category *string) *domain.Expense {
	e, err := CreateExpense(s.ctx, s.db, owner, NewExpense{
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Category: category,
	})
	require.NoError(s.T(), err)
	return e
}

func strPtr(s string) *string { return &s }

func (s *StoreTestSuite) TestCreateUserRejectsDuplicateEmail() {
	_, err := CreateUser(s.ctx, s.db, "alice@example.com", "other", nil)
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.Is(err, apperr.Conflict))
}

func (s *StoreTestSuite) TestFindUserByEmailMissing() {
	user, err := FindUserByEmail(s.ctx, s.db, "nobody@example.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), user)
}

func (s *StoreTestSuite) TestOwnedHidesOtherUsersRecords() {
	category, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)

	mine, err := Owned[domain.Category](s.ctx, s.db, category.ID, s.alice.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), mine)
	assert.Equal(s.T(), "Food", mine.Name)

	theirs, err := Owned[domain.Category](s.ctx, s.db, category.ID, s.bob.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), theirs)
}

func (s *StoreTestSuite) TestCategoryNameUniquePerOwner() {
	_, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)

	_, err = CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	assert.True(s.T(), apperr.Is(err, apperr.Conflict))

	// Another owner may reuse the name
	_, err = CreateCategory(s.ctx, s.db, s.bob.ID, "Food")
	assert.NoError(s.T(), err)
}

func (s *StoreTestSuite) TestCategoryNamesIgnoreCase() {
	food, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)
	_, err = CreateCategory(s.ctx, s.db, s.alice.ID, "Bills")
	require.NoError(s.T(), err)

	_, err = CreateCategory(s.ctx, s.db, s.alice.ID, "FOOD")
	assert.True(s.T(), apperr.Is(err, apperr.Conflict))

	_, err = RenameCategory(s.ctx, s.db, s.alice.ID, food.ID, "bills")
	assert.True(s.T(), apperr.Is(err, apperr.Conflict))

	// Changing only the case of its own name is allowed
	renamed, err := RenameCategory(s.ctx, s.db, s.alice.ID, food.ID, "food")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "food", renamed.Name)
}

func (s *StoreTestSuite) TestListCategoriesSortedAndScoped() {
	for _, name := range []string{"Travel", "Bills", "Food"} {
		_, err := CreateCategory(s.ctx, s.db, s.alice.ID, name)
		require.NoError(s.T(), err)
	}
	_, err := CreateCategory(s.ctx, s.db, s.bob.ID, "Aaa")
	require.NoError(s.T(), err)

	categories, err := ListCategories(s.ctx, s.db, s.alice.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), categories, 3)
	assert.Equal(s.T(), "Bills", categories[0].Name)
	assert.Equal(s.T(), "Food", categories[1].Name)
	assert.Equal(s.T(), "Travel", categories[2].Name)
}

func (s *StoreTestSuite) TestRenameCategory() {
	food, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)
	_, err = CreateCategory(s.ctx, s.db, s.alice.ID, "Bills")
	require.NoError(s.T(), err)

	renamed, err := RenameCategory(s.ctx, s.db, s.alice.ID, food.ID, "Groceries")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Groceries", renamed.Name)

	_, err = RenameCategory(s.ctx, s.db, s.alice.ID, food.ID, "Bills")
	assert.True(s.T(), apperr.Is(err, apperr.Conflict))

	_, err = RenameCategory(s.ctx, s.db, s.bob.ID, food.ID, "Stolen")
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))
}

func (s *StoreTestSuite) TestDeleteCategoryInUseIsRejected() {
	food, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)
	_, err = CreateExpense(s.ctx, s.db, s.alice.ID, NewExpense{
		Amount:     decimal.RequireFromString("12.00"),
		Date:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CategoryID: &food.ID,
	})
	require.NoError(s.T(), err)

	err = DeleteCategory(s.ctx, s.db, s.alice.ID, food.ID)
	require.Error(s.T(), err)
	assert.True(s.T(), apperr.Is(err, apperr.InvalidOperation))

	still, err := Owned[domain.Category](s.ctx, s.db, food.ID, s.alice.ID)
	require.NoError(s.T(), err)
	assert.NotNil(s.T(), still, "category must survive a rejected delete")
}

func (s *StoreTestSuite) TestDeleteCategory() {
	food, err := CreateCategory(s.ctx, s.db, s.alice.ID, "Food")
	require.NoError(s.T(), err)

	err = DeleteCategory(s.ctx, s.db, s.bob.ID, food.ID)
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))

	require.NoError(s.T(), DeleteCategory(s.ctx, s.db, s.alice.ID, food.ID))
	gone, err := Owned[domain.Category](s.ctx, s.db, food.ID, s.alice.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), gone)
}

func (s *StoreTestSuite) TestCreateExpenseWithForeignCategoryIsNotFound() {
	bobs, err := CreateCategory(s.ctx, s.db, s.bob.ID, "Food")
	require.NoError(s.T(), err)

	_, err = CreateExpense(s.ctx, s.db, s.alice.ID, NewExpense{
		Amount:     decimal.RequireFromString("5"),
		Date:       time.Now(),
		CategoryID: &bobs.ID,
	})
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))
}

func (s *StoreTestSuite) TestExpenseCrudIsOwnerScoped() {
	e := s.addExpense(s.alice.ID, "42.50", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), strPtr("food"))

	got, err := GetExpense(s.ctx, s.db, s.alice.ID, e.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), decimal.RequireFromString("42.5").Equal(got.Amount))
	assert.Equal(s.T(), "food", *got.Category)

	_, err = GetExpense(s.ctx, s.db, s.bob.ID, e.ID)
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))

	amount := decimal.RequireFromString("99")
	_, err = UpdateExpense(s.ctx, s.db, s.bob.ID, e.ID, ExpensePatch{Amount: &amount})
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))

	err = DeleteExpense(s.ctx, s.db, s.bob.ID, e.ID)
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))

	// Untouched by bob's attempts
	got, err = GetExpense(s.ctx, s.db, s.alice.ID, e.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), decimal.RequireFromString("42.5").Equal(got.Amount))
}

func (s *StoreTestSuite) TestUpdateExpensePartial() {
	e := s.addExpense(s.alice.ID, "10", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), strPtr("food"))

	amount := decimal.RequireFromString("15.25")
	updated, err := UpdateExpense(s.ctx, s.db, s.alice.ID, e.ID, ExpensePatch{
		Amount:        &amount,
		Description:   strPtr("lunch"),
		ClearCategory: true,
	})
	require.NoError(s.T(), err)
	assert.True(s.T(), amount.Equal(updated.Amount))
	require.NotNil(s.T(), updated.Description)
	assert.Equal(s.T(), "lunch", *updated.Description)
	assert.Nil(s.T(), updated.Category)
	assert.True(s.T(), e.Date.Equal(updated.Date), "date must be unchanged")
}

func (s *StoreTestSuite) TestDeleteExpense() {
	e := s.addExpense(s.alice.ID, "10", time.Now(), nil)

	require.NoError(s.T(), DeleteExpense(s.ctx, s.db, s.alice.ID, e.ID))
	_, err := GetExpense(s.ctx, s.db, s.alice.ID, e.ID)
	assert.True(s.T(), apperr.Is(err, apperr.NotFound))
}

func (s *StoreTestSuite) TestListExpensesFilters() {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.addExpense(s.alice.ID, "5", base, strPtr("food"))
	s.addExpense(s.alice.ID, "50", base.AddDate(0, 0, 1), strPtr("rent"))
	s.addExpense(s.alice.ID, "20", base.AddDate(0, 0, 2), strPtr("food"))
	s.addExpense(s.alice.ID, "80", base.AddDate(0, 0, 3), strPtr("food"))
	s.addExpense(s.bob.ID, "20", base.AddDate(0, 0, 2), strPtr("food"))

	start := base.AddDate(0, 0, 1)
	end := base.AddDate(0, 0, 3)
	lo := decimal.RequireFromString("20")
	hi := decimal.RequireFromString("80")
	page, err := ListExpenses(s.ctx, s.db, s.alice.ID, ExpenseFilter{
		StartDate: &start,
		EndDate:   &end,
		MinAmount: &lo,
		MaxAmount: &hi,
		Category:  strPtr("food"),
	}, Page{Page: 1, Limit: 10})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), int64(2), page.Total)
	require.Len(s.T(), page.Records, 2)
	// Inclusive bounds, newest first
	assert.True(s.T(), hi.Equal(page.Records[0].Amount))
	assert.True(s.T(), lo.Equal(page.Records[1].Amount))
}

func (s *StoreTestSuite) TestListExpensesPagination() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const total = 23
	for i := 0; i < total; i++ {
		// Pairs of expenses share a date to exercise the tie-break
		s.addExpense(s.alice.ID, "1", base.AddDate(0, 0, i/2), nil)
	}

	const limit = 5
	seen := map[uint]bool{}
	var all []domain.Expense
	for p := 1; ; p++ {
		page, err := ListExpenses(s.ctx, s.db, s.alice.ID, ExpenseFilter{}, Page{Page: p, Limit: limit})
		require.NoError(s.T(), err)
		assert.Equal(s.T(), int64(total), page.Total)
		assert.Equal(s.T(), 5, page.TotalPages) // ceil(23/5)
		if len(page.Records) == 0 {
			break
		}
		for _, e := range page.Records {
			assert.False(s.T(), seen[e.ID], "expense %d returned twice", e.ID)
			seen[e.ID] = true
		}
		all = append(all, page.Records...)
	}

	require.Len(s.T(), all, total)
	for i := 1; i < len(all); i++ {
		assert.False(s.T(), all[i].Date.After(all[i-1].Date), "not ordered by date descending at %d", i)
	}
}

func (s *StoreTestSuite) TestListExpensesEmpty() {
	page, err := ListExpenses(s.ctx, s.db, s.alice.ID, ExpenseFilter{}, Page{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), page.Total)
	assert.Equal(s.T(), 0, page.TotalPages)
	assert.NotNil(s.T(), page.Records)
}

func (s *StoreTestSuite) TestExpensesBetweenIsInclusive() {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	s.addExpense(s.alice.ID, "1", from, nil)
	s.addExpense(s.alice.ID, "2", to, nil)
	s.addExpense(s.alice.ID, "4", to.Add(time.Millisecond), nil)
	s.addExpense(s.alice.ID, "8", from.Add(-time.Millisecond), nil)

	expenses, err := ExpensesBetween(s.ctx, s.db, s.alice.ID, from, to)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 2)
	assert.True(s.T(), decimal.NewFromInt(1).Equal(expenses[0].Amount))
	assert.True(s.T(), decimal.NewFromInt(2).Equal(expenses[1].Amount))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestPageMath(t *testing.T) {
	p := Page{Page: 3, Limit: 10}
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}

func TestIntegrityErrorDetection(t *testing.T) {
	assert.True(t, IsDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.False(t, IsDuplicate(nil))
	assert.False(t, IsForeignKeyViolation(gorm.ErrRecordNotFound))
}
