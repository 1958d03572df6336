package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"

	"expensesbot/internal/model"
)

// SupabaseStore keeps the ledger in hosted Postgres behind PostgREST. Schema
// management is external; the tables mirror the SQLite migrations.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(url, key string) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}
	return &SupabaseStore{client: client}, nil
}

func (s *SupabaseStore) Close() error {
	return nil
}

type supabaseUser struct {
	ID        int64           `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

type supabaseExpense struct {
	ID          int64           `json:"id,omitempty"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *SupabaseStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	data, _, err := s.client.From("users").
		Select("*", "", false).
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var users []supabaseUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &model.User{
		ID:        users[0].ID,
		Balance:   users[0].Balance,
		CreatedAt: users[0].CreatedAt,
	}, nil
}

func (s *SupabaseStore) CreateUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err == nil {
		// Already exists; creation is a no-op so the balance is untouched.
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	row := supabaseUser{ID: id, Balance: decimal.Zero, CreatedAt: time.Now().UTC()}
	data, _, err := s.client.From("users").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	var created []supabaseUser
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("parse created user: %w", err)
	}
	if len(created) == 0 {
		return s.GetUser(ctx, id)
	}
	return &model.User{
		ID:        created[0].ID,
		Balance:   created[0].Balance,
		CreatedAt: created[0].CreatedAt,
	}, nil
}

func (s *SupabaseStore) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	_, _, err := s.client.From("users").
		Update(map[string]string{"balance": balance.String()}, "", "").
		Eq("id", strconv.FormatInt(id, 10)).
		Execute()
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (s *SupabaseStore) AddExpense(ctx context.Context, expense *model.Expense) error {
	expense.CreatedAt = time.Now().UTC().Truncate(time.Second)
	row := supabaseExpense{
		UserID:      expense.UserID,
		Amount:      expense.Amount,
		Category:    expense.Category.String(),
		Description: expense.Description,
		CreatedAt:   expense.CreatedAt,
	}

	data, _, err := s.client.From("expenses").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("add expense: %w", err)
	}

	var created []supabaseExpense
	if err := json.Unmarshal(data, &created); err != nil {
		return fmt.Errorf("parse created expense: %w", err)
	}
	if len(created) > 0 {
		expense.ID = created[0].ID
	}
	return nil
}

func (s *SupabaseStore) ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error) {
	query := s.client.From("expenses").
		Select("*", "", false).
		Eq("user_id", strconv.FormatInt(userID, 10))

	if filter.Start != nil {
		query = query.Gte("created_at", filter.Start.UTC().Format(time.RFC3339))
	}
	if filter.End != nil {
		query = query.Lte("created_at", filter.End.UTC().Format(time.RFC3339))
	}
	if filter.Category != nil {
		query = query.Eq("category", filter.Category.String())
	}
	query = query.Order("created_at.desc", nil)

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	var rows []supabaseExpense
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse expenses: %w", err)
	}

	expenses := make([]model.Expense, 0, len(rows))
	for _, row := range rows {
		category, err := model.ParseCategory(row.Category)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", row.ID, err)
		}
		expenses = append(expenses, model.Expense{
			ID:          row.ID,
			UserID:      row.UserID,
			Amount:      row.Amount,
			Category:    category,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return expenses, nil
}

func (s *SupabaseStore) CategoryTotals(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.CategoryTotal, error) {
	filter.Category = nil
	expenses, err := s.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return TotalsByCategory(expenses), nil
}

var _ Store = (*SupabaseStore)(nil)
