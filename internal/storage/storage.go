// Package storage provides the durable ledger: per-user balances and the
// append-only expense log.
package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensesbot/internal/model"
)

// ErrUserNotFound is returned by GetUser for unknown user IDs.
var ErrUserNotFound = errors.New("user not found")

// Store is the persistence contract consumed by the service layer.
type Store interface {
	// GetUser returns the user or ErrUserNotFound.
	GetUser(ctx context.Context, id int64) (*model.User, error)
	// CreateUser is idempotent: a no-op if the user exists, otherwise the
	// user is created with a zero balance.
	CreateUser(ctx context.Context, id int64) (*model.User, error)
	SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	// AddExpense appends one immutable expense, assigning its ID and the
	// commit timestamp.
	AddExpense(ctx context.Context, expense *model.Expense) error
	// ListExpenses returns matching expenses newest first, never truncated.
	ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error)
	// CategoryTotals returns per-category sums for categories with at least
	// one matching expense, sorted by total descending.
	CategoryTotals(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.CategoryTotal, error)
	Close() error
}

// ExpenseFilter narrows expense queries. Nil fields mean unfiltered; the
// time bounds are both inclusive.
type ExpenseFilter struct {
	Start    *time.Time
	End      *time.Time
	Category *model.Category
}

// TotalsByCategory groups expenses into per-category decimal sums, sorted by
// total descending with ties broken by category order. Categories without
// expenses produce no row. Both backends aggregate through this helper so
// sums stay decimal-exact instead of going through SQL floating point.
func TotalsByCategory(expenses []model.Expense) []model.CategoryTotal {
	sums := make(map[model.Category]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	totals := make([]model.CategoryTotal, 0, len(sums))
	for _, c := range model.Categories() {
		if total, ok := sums[c]; ok {
			totals = append(totals, model.CategoryTotal{Category: c, Total: total})
		}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}
