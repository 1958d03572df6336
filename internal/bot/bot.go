// Package bot wires the Telegram transport to the conversation state
// machine. All flow logic lives in the handlers; rendering in render.go.
package bot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expensesbot/internal/charts"
	"expensesbot/internal/service"
	"expensesbot/internal/session"
)

// sender is the slice of the Telegram API the handlers use. *tgbotapi.BotAPI
// satisfies it; tests substitute a fake.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	client   *tgbotapi.BotAPI // nil when constructed for tests or webhooks only
	api      sender
	tracker  *service.ExpenseTracker
	sessions *session.Store
	charts   *charts.ChartGenerator
	currency string
	logger   *slog.Logger
	now      func() time.Time
}

func NewBot(token string, tracker *service.ExpenseTracker, currency string) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}

	b := newBot(client, tracker, currency)
	b.client = client
	return b, nil
}

func newBot(api sender, tracker *service.ExpenseTracker, currency string) *Bot {
	return &Bot{
		api:      api,
		tracker:  tracker,
		sessions: session.NewStore(),
		charts:   charts.NewChartGenerator(),
		currency: currency,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// Start runs the long-polling loop until the updates channel closes.
func (b *Bot) Start() error {
	if b.client == nil {
		return fmt.Errorf("bot has no api client")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.client.GetUpdatesChan(u)
	for update := range updates {
		b.handleUpdate(update)
	}
	return nil
}

// Stop ends the long-polling loop started by Start.
func (b *Bot) Stop() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
}

// HandleWebhook processes one webhook-delivered update. Webhook invocations
// may run concurrently; the per-user lock inside handleUpdate keeps each
// user's flow serial.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	b.handleUpdate(update)
	return nil
}
