// Package session owns transient per-user conversation state. Sessions live
// in process memory only and are lost on restart.
package session

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expensesbot/internal/model"
)

// State names the input a user's session is waiting for. Transition logic
// switches over this set exhaustively; there are no free-form state strings.
type State int

const (
	Idle State = iota
	AwaitingBalanceAmount
	AwaitingExpenseAmount
	AwaitingCategory
	AwaitingDescription
	AwaitingRangeStart
	AwaitingRangeEnd
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingBalanceAmount:
		return "awaiting_balance_amount"
	case AwaitingExpenseAmount:
		return "awaiting_expense_amount"
	case AwaitingCategory:
		return "awaiting_category"
	case AwaitingDescription:
		return "awaiting_description"
	case AwaitingRangeStart:
		return "awaiting_range_start"
	case AwaitingRangeEnd:
		return "awaiting_range_end"
	}
	return "unknown"
}

// Session tracks one user's in-progress multi-step flow. At most one flow is
// outstanding per user; starting a new flow discards the previous partial
// input wholesale.
type Session struct {
	State           State
	PendingAmount   decimal.Decimal
	PendingCategory model.Category
	RangeStart      time.Time
	RangeStartLabel string
}

// Begin resets the session to the entry state of a new flow, dropping any
// partial input from an interrupted one.
func (s *Session) Begin(state State) {
	*s = Session{State: state}
}

// Clear returns the session to idle. Called on commit, cancellation, or a
// flow-fatal error.
func (s *Session) Clear() {
	*s = Session{}
}

// Store is a mutex-guarded session map keyed by user ID, plus a per-user
// lock that serializes all event handling for a single user while letting
// different users proceed in parallel.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns the user's session, creating an idle one on first use.
// Callers must hold the user's lock (see Lock).
func (st *Store) Get(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{}
		st.sessions[userID] = s
	}
	return s
}

// Lock acquires the per-user mutex and returns its unlock func. Every read
// and write of a user's flow (check state, validate input, mutate session,
// mutate ledger) happens under this lock, so concurrent events from the same
// user cannot both pass validation and both commit.
func (st *Store) Lock(userID int64) func() {
	st.mu.Lock()
	l, ok := st.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		st.locks[userID] = l
	}
	st.mu.Unlock()

	l.Lock()
	return l.Unlock
}
