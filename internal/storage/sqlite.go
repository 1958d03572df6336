package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"expensesbot/internal/model"
)

// Timestamps are stored as UTC strings in this layout so that range filters
// can compare them directly in SQL.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// SQLiteStore is the default ledger backend, a single local database file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, balance, created_at FROM users WHERE id = ?`

	var (
		user       model.User
		balance    string
		createdRaw string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &balance, &createdRaw)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	user.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	if user.CreatedAt, err = parseSQLiteTime(createdRaw); err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, id int64) (*model.User, error) {
	const query = `INSERT OR IGNORE INTO users (id, balance, created_at) VALUES (?, '0', ?)`

	_, err := s.db.ExecContext(ctx, query, id, time.Now().UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *SQLiteStore) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	const query = `UPDATE users SET balance = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, balance.String(), id)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) AddExpense(ctx context.Context, expense *model.Expense) error {
	const query = `INSERT INTO expenses (user_id, amount, category, description, created_at)
	VALUES (?, ?, ?, ?, ?)`

	expense.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, query,
		expense.UserID,
		expense.Amount.String(),
		expense.Category.String(),
		expense.Description,
		expense.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("add expense: %w", err)
	}

	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("expense id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.Expense, error) {
	query := `SELECT id, user_id, amount, category, description, created_at FROM expenses WHERE user_id = ?`
	args := []any{userID}

	if filter.Start != nil {
		query += ` AND created_at >= ?`
		args = append(args, filter.Start.UTC().Format(sqliteTimeLayout))
	}
	if filter.End != nil {
		query += ` AND created_at <= ?`
		args = append(args, filter.End.UTC().Format(sqliteTimeLayout))
	}
	if filter.Category != nil {
		query += ` AND category = ?`
		args = append(args, filter.Category.String())
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var (
			e          model.Expense
			amount     string
			category   string
			createdRaw string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &amount, &category, &e.Description, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		if e.Category, err = model.ParseCategory(category); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseSQLiteTime(createdRaw); err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (s *SQLiteStore) CategoryTotals(ctx context.Context, userID int64, filter ExpenseFilter) ([]model.CategoryTotal, error) {
	filter.Category = nil
	expenses, err := s.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return TotalsByCategory(expenses), nil
}

func parseSQLiteTime(s string) (time.Time, error) {
	// Tolerate both our layout and RFC3339 in case the file was written by
	// another tool.
	if t, err := time.ParseInLocation(sqliteTimeLayout, strings.TrimSuffix(s, "Z"), time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	// A zero time here would silently drop the row from every range filter.
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}

var _ Store = (*SQLiteStore)(nil)
