package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User holds a running account balance. Created lazily with a zero balance
// on first interaction; the balance may go negative (debt is valid state).
type User struct {
	ID        int64           `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
}

// Expense is one append-only ledger entry. Immutable once created.
type Expense struct {
	ID          int64           `json:"id,omitempty"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"-"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// CategoryTotal is one row of a per-category spending breakdown.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}
