package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"expensesbot/internal/bot"
	"expensesbot/internal/config"
	"expensesbot/internal/service"
	"expensesbot/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	tracker := service.NewExpenseTracker(store)

	b, err := bot.NewBot(cfg.TelegramToken, tracker, cfg.Currency)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", "backend", cfg.StorageBackend, "currency", cfg.Currency)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		b.Stop()
		return nil
	})
	return g.Wait()
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
