// Package service implements the ledger operations and the aggregation
// engine behind reports.
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"expensesbot/internal/daterange"
	"expensesbot/internal/model"
	"expensesbot/internal/storage"
)

// ExpenseTracker provides balance mutations, expense commits and report
// aggregation over a ledger store.
type ExpenseTracker struct {
	store storage.Store
}

func NewExpenseTracker(store storage.Store) *ExpenseTracker {
	return &ExpenseTracker{store: store}
}

// Report is the aggregate a rendered report is built from. Expenses carry
// the complete matching set, newest first; presentation-level truncation is
// the caller's concern.
type Report struct {
	Label      string
	TotalSpent decimal.Decimal
	Totals     []model.CategoryTotal
	Expenses   []model.Expense
}

// ensureUser makes the user row exist before any delta is computed from it.
// Creation is idempotent, so this is safe on every commit path.
func (s *ExpenseTracker) ensureUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.store.CreateUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return user, nil
}

// Balance returns the user's current balance, creating the user with a zero
// balance on first contact.
func (s *ExpenseTracker) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return user.Balance, nil
}

// AddBalance credits a positive amount and returns the new balance.
func (s *ExpenseTracker) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, model.ErrInvalidAmount
	}

	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := user.Balance.Add(amount)
	if err := s.store.SetBalance(ctx, userID, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("add balance: %w", err)
	}
	return newBalance, nil
}

// AddExpense debits the balance and appends the expense. The balance may go
// negative; debt is valid state, not an error.
func (s *ExpenseTracker) AddExpense(ctx context.Context, userID int64, amount decimal.Decimal, category model.Category, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, model.ErrInvalidAmount
	}

	user, err := s.ensureUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := user.Balance.Sub(amount)
	if err := s.store.SetBalance(ctx, userID, newBalance); err != nil {
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}

	expense := &model.Expense{
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: description,
	}
	if err := s.store.AddExpense(ctx, expense); err != nil {
		// Undo the debit so retrying the same expense debits once, not twice.
		if undoErr := s.store.SetBalance(ctx, userID, user.Balance); undoErr != nil {
			return decimal.Zero, fmt.Errorf("add expense: %w (restore balance: %v)", err, undoErr)
		}
		return decimal.Zero, fmt.Errorf("add expense: %w", err)
	}
	return newBalance, nil
}

// ListExpenses returns matching expenses newest first. A nil range means all
// time; a nil category means all categories.
func (s *ExpenseTracker) ListExpenses(ctx context.Context, userID int64, rng *daterange.Range, category *model.Category) ([]model.Expense, error) {
	return s.store.ListExpenses(ctx, userID, filterOf(rng, category))
}

// CategoryTotals returns per-category sums sorted by total descending,
// omitting categories with no matching expense.
func (s *ExpenseTracker) CategoryTotals(ctx context.Context, userID int64, rng *daterange.Range) ([]model.CategoryTotal, error) {
	return s.store.CategoryTotals(ctx, userID, filterOf(rng, nil))
}

// Report aggregates one date range: complete listing, category breakdown and
// decimal-exact total spend.
func (s *ExpenseTracker) Report(ctx context.Context, userID int64, rng daterange.Range) (*Report, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, filterOf(&rng, nil))
	if err != nil {
		return nil, fmt.Errorf("report expenses: %w", err)
	}
	totals, err := s.store.CategoryTotals(ctx, userID, filterOf(&rng, nil))
	if err != nil {
		return nil, fmt.Errorf("report totals: %w", err)
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	return &Report{
		Label:      rng.Label,
		TotalSpent: total,
		Totals:     totals,
		Expenses:   expenses,
	}, nil
}

func filterOf(rng *daterange.Range, category *model.Category) storage.ExpenseFilter {
	filter := storage.ExpenseFilter{Category: category}
	if rng != nil {
		start, end := rng.Start, rng.End
		filter.Start = &start
		filter.End = &end
	}
	return filter
}
