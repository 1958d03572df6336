// Serverless entry point: receives Telegram webhook updates through an API
// gateway and feeds them to the bot. The long-polling daemon lives in
// cmd/bot.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"expensesbot/internal/bot"
	"expensesbot/internal/config"
	"expensesbot/internal/service"
	"expensesbot/internal/storage"
)

// Request is the API gateway's envelope around the raw webhook body.
type Request struct {
	Body string `json:"body"`
}

// Response is the API gateway's expected reply shape.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return errorResponse(err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return errorResponse(err)
	}
	defer store.Close()

	tracker := service.NewExpenseTracker(store)

	b, err := bot.NewBot(cfg.TelegramToken, tracker, cfg.Currency)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		return storage.NewSQLiteStore(cfg.SQLiteDBPath)
	case config.BackendSupabase:
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func errorResponse(err error) (*Response, error) {
	slog.Error("webhook", "error", err)
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	// Entry point for local smoke testing only; deployments invoke Handler.
}
