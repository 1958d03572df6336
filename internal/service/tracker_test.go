package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensesbot/internal/daterange"
	"expensesbot/internal/model"
	"expensesbot/internal/storage"
)

// fakeStore is an in-memory storage.Store for service tests.
type fakeStore struct {
	users    map[int64]*model.User
	expenses []model.Expense
	nextID   int64
	now      time.Time

	failSetBalance error
	failAddExpense error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[int64]*model.User),
		now:   time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, id int64) (*model.User, error) {
	if _, ok := f.users[id]; !ok {
		f.users[id] = &model.User{ID: id, CreatedAt: f.now}
	}
	return f.GetUser(ctx, id)
}

func (f *fakeStore) SetBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	if f.failSetBalance != nil {
		return f.failSetBalance
	}
	u, ok := f.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Balance = balance
	return nil
}

func (f *fakeStore) AddExpense(_ context.Context, expense *model.Expense) error {
	if f.failAddExpense != nil {
		return f.failAddExpense
	}
	f.nextID++
	expense.ID = f.nextID
	expense.CreatedAt = f.now
	f.expenses = append(f.expenses, *expense)
	return nil
}

func (f *fakeStore) ListExpenses(_ context.Context, userID int64, filter storage.ExpenseFilter) ([]model.Expense, error) {
	var out []model.Expense
	for i := len(f.expenses) - 1; i >= 0; i-- {
		e := f.expenses[i]
		if e.UserID != userID {
			continue
		}
		if filter.Start != nil && e.CreatedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && e.CreatedAt.After(*filter.End) {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) CategoryTotals(ctx context.Context, userID int64, filter storage.ExpenseFilter) ([]model.CategoryTotal, error) {
	filter.Category = nil
	expenses, err := f.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return storage.TotalsByCategory(expenses), nil
}

func (f *fakeStore) Close() error { return nil }

var _ storage.Store = (*fakeStore)(nil)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalanceCreatesUserOnFirstContact(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)

	balance, err := tracker.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.Contains(t, store.users, int64(1))
}

func TestAddBalance(t *testing.T) {
	tracker := NewExpenseTracker(newFakeStore())
	ctx := context.Background()

	balance, err := tracker.AddBalance(ctx, 1, amt("100.50"))
	require.NoError(t, err)
	assert.Equal(t, "100.5", balance.String())

	balance, err = tracker.AddBalance(ctx, 1, amt("0.25"))
	require.NoError(t, err)
	assert.Equal(t, "100.75", balance.String())
}

func TestAddBalanceRejectsNonPositive(t *testing.T) {
	tracker := NewExpenseTracker(newFakeStore())
	ctx := context.Background()

	_, err := tracker.AddBalance(ctx, 1, decimal.Zero)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = tracker.AddBalance(ctx, 1, amt("-5"))
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestAddExpenseDebitsAndAppends(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	_, err := tracker.AddBalance(ctx, 1, amt("100"))
	require.NoError(t, err)

	balance, err := tracker.AddExpense(ctx, 1, amt("30.25"), model.Food, "lunch")
	require.NoError(t, err)
	assert.Equal(t, "69.75", balance.String())

	require.Len(t, store.expenses, 1)
	e := store.expenses[0]
	assert.Equal(t, int64(1), e.UserID)
	assert.Equal(t, model.Food, e.Category)
	assert.Equal(t, "lunch", e.Description)
	assert.NotZero(t, e.ID)
}

func TestAddExpenseIntoDebt(t *testing.T) {
	tracker := NewExpenseTracker(newFakeStore())
	ctx := context.Background()

	// No balance added; spending from zero goes negative without error.
	balance, err := tracker.AddExpense(ctx, 1, amt("40"), model.Bills, "")
	require.NoError(t, err)
	assert.Equal(t, "-40", balance.String())
}

func TestAddExpenseStoreFailure(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	store.failSetBalance = errors.New("db down")
	_, err := tracker.AddExpense(ctx, 1, amt("10"), model.Food, "")
	require.Error(t, err)
	assert.Empty(t, store.expenses, "no expense row after a failed debit")
}

func TestAddExpenseAppendFailureThenRetry(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	_, err := tracker.AddBalance(ctx, 1, amt("100"))
	require.NoError(t, err)

	// The debit lands but the append fails; the debit must be undone so the
	// user-facing retry of the same expense moves the balance exactly once.
	store.failAddExpense = errors.New("db down")
	_, err = tracker.AddExpense(ctx, 1, amt("10"), model.Food, "lunch")
	require.Error(t, err)
	assert.Equal(t, "100", store.users[int64(1)].Balance.String(), "failed commit leaves the balance untouched")
	assert.Empty(t, store.expenses)

	store.failAddExpense = nil
	balance, err := tracker.AddExpense(ctx, 1, amt("10"), model.Food, "lunch")
	require.NoError(t, err)
	assert.Equal(t, "90", balance.String())
	assert.Equal(t, "90", store.users[int64(1)].Balance.String())
	require.Len(t, store.expenses, 1)
}

func TestReportAggregation(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	_, err := tracker.AddExpense(ctx, 1, amt("10.10"), model.Food, "a")
	require.NoError(t, err)
	_, err = tracker.AddExpense(ctx, 1, amt("20.20"), model.Food, "b")
	require.NoError(t, err)
	_, err = tracker.AddExpense(ctx, 1, amt("50"), model.Bills, "c")
	require.NoError(t, err)

	rng, err := daterange.Resolve("today", store.now)
	require.NoError(t, err)

	report, err := tracker.Report(ctx, 1, rng)
	require.NoError(t, err)

	assert.Equal(t, "Today", report.Label)
	assert.Equal(t, "80.3", report.TotalSpent.String())
	require.Len(t, report.Expenses, 3)
	assert.Equal(t, "c", report.Expenses[0].Description, "newest first")

	require.Len(t, report.Totals, 2)
	assert.Equal(t, model.Bills, report.Totals[0].Category)
	assert.Equal(t, "50", report.Totals[0].Total.String())
	assert.Equal(t, model.Food, report.Totals[1].Category)
	assert.Equal(t, "30.3", report.Totals[1].Total.String())
}

func TestReportEmptyRange(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	_, err := tracker.AddExpense(ctx, 1, amt("10"), model.Food, "")
	require.NoError(t, err)

	rng, err := daterange.Resolve("yesterday", store.now)
	require.NoError(t, err)

	report, err := tracker.Report(ctx, 1, rng)
	require.NoError(t, err)
	assert.Empty(t, report.Expenses)
	assert.Empty(t, report.Totals)
	assert.True(t, report.TotalSpent.IsZero())
}

func TestListExpensesCategoryOnly(t *testing.T) {
	store := newFakeStore()
	tracker := NewExpenseTracker(store)
	ctx := context.Background()

	_, err := tracker.AddExpense(ctx, 1, amt("10"), model.Food, "")
	require.NoError(t, err)
	_, err = tracker.AddExpense(ctx, 1, amt("20"), model.Transit, "")
	require.NoError(t, err)

	transit := model.Transit
	expenses, err := tracker.ListExpenses(ctx, 1, nil, &transit)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, model.Transit, expenses[0].Category)
}
