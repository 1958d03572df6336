package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"expensesbot/internal/daterange"
	"expensesbot/internal/model"
	"expensesbot/internal/session"
)

// Callback action IDs emitted by the inline keyboards. handleCallback
// matches the closed set exhaustively and logs anything unrecognized.
const (
	actionAddBalance     = "cmd_balance"
	actionAddExpense     = "cmd_expense"
	actionReportMenu     = "cmd_report"
	actionCheckBalance   = "cmd_check"
	actionHelp           = "cmd_help"
	actionCustomSearch   = "custom_search"
	actionCategorySearch = "category_search"
	actionSkipDesc       = "skip_description"
	actionBackToMenu     = "back_to_menu"

	categoryPrefix       = "category_"
	searchCategoryPrefix = "search_category_"
	reportPrefix         = "report_"
)

const (
	msgInvalidAmount = "❌ Please enter a valid positive amount."
	msgInvalidDate   = "❌ Invalid date format. Please use:\n\n" +
		"• 2025-09-08 for specific dates\n" +
		"• 2025-09 for entire months\n" +
		"• 15/09/2025 for day/month/year\n" +
		"• 2025-08-01 to 2025-08-31 for date ranges\n" +
		"• today, yesterday, this week, last week, this month, last month"
	msgStorageFailure = "❌ Something went wrong. Please try again."
	msgRestartFlow    = "❌ Something went wrong. Please start over with /expense."
)

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	var userID, chatID int64
	switch {
	case update.Message != nil && update.Message.From != nil:
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		userID = update.CallbackQuery.From.ID
		chatID = update.CallbackQuery.Message.Chat.ID
	case update.CallbackQuery != nil:
		// A button on a message too old to still be attached. Nothing to act
		// on, but the client spinner must stop.
		b.answerCallback(update.CallbackQuery.ID, "")
		return
	default:
		return
	}

	// Serialize everything for this user: a duplicate tap must not pass
	// validation twice and double-commit.
	unlock := b.sessions.Lock(userID)
	defer unlock()

	ctx := context.Background()
	sess := b.sessions.Get(userID)

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.logger.Info("command", "user_id", userID, "trace_id", uuid.NewString(),
			"command", update.Message.Command(), "state", sess.State.String())
		b.handleCommand(ctx, chatID, userID, sess, update.Message)
	case update.CallbackQuery != nil:
		b.logger.Info("callback", "user_id", userID, "trace_id", uuid.NewString(),
			"action", update.CallbackQuery.Data, "state", sess.State.String())
		b.handleCallback(ctx, chatID, userID, sess, update.CallbackQuery)
	case update.Message != nil:
		b.logger.Info("message", "user_id", userID, "trace_id", uuid.NewString(),
			"state", sess.State.String())
		b.handleMessage(ctx, chatID, userID, sess, update.Message.Text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID, userID int64, sess *session.Session, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		sess.Clear()
		b.sendWelcome(ctx, chatID, userID)
	case "help":
		b.sendKeyboard(chatID, helpText, backToMenuKeyboard())
	case "balance":
		sess.Begin(session.AwaitingBalanceAmount)
		b.send(chatID, "💰 Enter the amount to add to your balance:")
	case "expense":
		sess.Begin(session.AwaitingExpenseAmount)
		b.send(chatID, "💸 Enter the expense amount:")
	case "report":
		sess.Clear()
		args := strings.TrimSpace(message.CommandArguments())
		if args == "" {
			b.sendKeyboard(chatID, "📊 Select a report type:", reportKeyboard())
			return
		}
		rng, err := daterange.ResolveExpression(args, b.now())
		if err != nil {
			b.send(chatID, msgInvalidDate)
			return
		}
		b.sendReport(ctx, chatID, userID, "📊 Expense Report", rng)
	}
}

func (b *Bot) handleCallback(ctx context.Context, chatID, userID int64, sess *session.Session, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	ack := "" // shown as a toast when non-empty

	switch {
	case data == actionAddBalance:
		sess.Begin(session.AwaitingBalanceAmount)
		b.send(chatID, "💰 Enter the amount to add to your balance (in "+b.currency+"):")

	case data == actionAddExpense:
		sess.Begin(session.AwaitingExpenseAmount)
		b.send(chatID, "💸 Enter the expense amount (in "+b.currency+"):")

	case data == actionCheckBalance:
		sess.Clear()
		balance, err := b.tracker.Balance(ctx, userID)
		if err != nil {
			b.logger.Error("check balance", "user_id", userID, "error", err)
			b.send(chatID, msgStorageFailure)
			break
		}
		b.sendKeyboard(chatID, formatBalance(balance, b.currency), backToMenuKeyboard())

	case data == actionReportMenu:
		sess.Clear()
		b.sendKeyboard(chatID, "📊 Select a report type:", reportKeyboard())

	case data == actionHelp:
		b.sendKeyboard(chatID, helpText, backToMenuKeyboard())

	case data == actionBackToMenu:
		sess.Clear()
		b.sendWelcome(ctx, chatID, userID)

	case data == actionCustomSearch:
		sess.Begin(session.AwaitingRangeStart)
		b.send(chatID, "🔍 Custom Date Search\n\n"+
			"Enter the start date (or a full range with \"to\"):\n\n"+
			"• 2025-09-08 for a specific date\n"+
			"• 2025-09 for an entire month\n"+
			"• 2025-08-01 to 2025-08-31 for a range in one message")

	case data == actionCategorySearch:
		b.sendKeyboard(chatID, "📂 Search by Category\n\nSelect a category to view all expenses:",
			searchCategoryKeyboard())

	case data == actionSkipDesc:
		b.commitExpense(ctx, chatID, userID, sess, "")

	case strings.HasPrefix(data, reportPrefix):
		period := strings.TrimPrefix(data, reportPrefix)
		rng, err := daterange.Resolve(period, b.now())
		if err != nil {
			b.logger.Warn("bad report period", "user_id", userID, "period", period)
			ack = "❌ Invalid period"
			break
		}
		sess.Clear()
		b.sendReport(ctx, chatID, userID, "📊 Expense Report", rng)

	case strings.HasPrefix(data, searchCategoryPrefix):
		category, err := model.ParseCategory(strings.TrimPrefix(data, searchCategoryPrefix))
		if err != nil {
			ack = "❌ Invalid category"
			break
		}
		b.sendCategoryListing(ctx, chatID, userID, category)

	case strings.HasPrefix(data, categoryPrefix):
		ack = b.selectCategory(sess, chatID, strings.TrimPrefix(data, categoryPrefix))

	default:
		// Closed action set: anything else is a stale or foreign button.
		b.logger.Warn("unrecognized action", "user_id", userID, "action", data)
	}

	b.answerCallback(callback.ID, ack)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Error("answer callback", "callback_id", id, "error", err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, chatID, userID int64, sess *session.Session, text string) {
	switch sess.State {
	case session.Idle:
		b.sendWelcome(ctx, chatID, userID)

	case session.AwaitingBalanceAmount:
		amount, err := model.ParseAmount(text)
		if err != nil {
			// Re-prompt in place; the flow stays open.
			b.send(chatID, msgInvalidAmount)
			return
		}
		newBalance, err := b.tracker.AddBalance(ctx, userID, amount)
		if err != nil {
			b.logger.Error("add balance", "user_id", userID, "error", err)
			b.send(chatID, msgStorageFailure)
			return
		}
		sess.Clear()
		b.sendKeyboard(chatID,
			"✅ Added "+formatAmount(amount, b.currency)+" to your balance!\n"+
				formatBalance(newBalance, b.currency)+"\n\nUse the buttons below to continue:",
			mainMenuKeyboard())

	case session.AwaitingExpenseAmount:
		amount, err := model.ParseAmount(text)
		if err != nil {
			b.send(chatID, msgInvalidAmount)
			return
		}
		sess.PendingAmount = amount
		sess.State = session.AwaitingCategory
		b.sendKeyboard(chatID,
			"💸 Expense: "+formatAmount(amount, b.currency)+"\n\nSelect a category:",
			categoryKeyboard())

	case session.AwaitingCategory:
		// Category choice is a button press, not free text.
		b.sendKeyboard(chatID, "Select a category using the buttons:", categoryKeyboard())

	case session.AwaitingDescription:
		b.commitExpense(ctx, chatID, userID, sess, strings.TrimSpace(text))

	case session.AwaitingRangeStart:
		input := strings.TrimSpace(text)
		if strings.Contains(input, " to ") {
			rng, err := daterange.ResolveExpression(input, b.now())
			if err != nil {
				b.send(chatID, msgInvalidDate)
				return
			}
			sess.Clear()
			b.sendReport(ctx, chatID, userID, "🔍 Custom Search", rng)
			return
		}
		rng, err := daterange.Resolve(input, b.now())
		if err != nil {
			b.send(chatID, msgInvalidDate)
			return
		}
		sess.RangeStart = rng.Start
		sess.RangeStartLabel = rng.Label
		sess.State = session.AwaitingRangeEnd
		b.send(chatID, "📅 Start: "+rng.Label+"\n\nNow enter the end date:")

	case session.AwaitingRangeEnd:
		end, err := daterange.Resolve(strings.TrimSpace(text), b.now())
		if err != nil {
			b.send(chatID, msgInvalidDate)
			return
		}
		rng := daterange.Compose(daterange.Range{Start: sess.RangeStart, Label: sess.RangeStartLabel}, end)
		sess.Clear()
		b.sendReport(ctx, chatID, userID, "🔍 Custom Search", rng)
	}
}

// selectCategory handles a category button during the add-expense flow and
// returns the toast text for the callback answer.
func (b *Bot) selectCategory(sess *session.Session, chatID int64, slug string) string {
	if sess.State != session.AwaitingCategory {
		return "❌ Nothing in progress"
	}
	category, err := model.ParseCategory(slug)
	if err != nil {
		// Rejected, state unchanged; the keyboard stays usable.
		return "❌ Invalid category"
	}

	sess.PendingCategory = category
	sess.State = session.AwaitingDescription
	b.sendKeyboard(chatID,
		"💸 Expense: "+formatAmount(sess.PendingAmount, b.currency)+"\n"+
			category.Emoji()+" Category: "+category.Title()+"\n\n"+
			"Enter a description or click Skip:",
		skipDescriptionKeyboard())
	return ""
}

// commitExpense finishes the add-expense flow from either the description
// text or the skip button.
func (b *Bot) commitExpense(ctx context.Context, chatID, userID int64, sess *session.Session, description string) {
	if sess.State != session.AwaitingDescription || !sess.PendingAmount.IsPositive() {
		// The session lost its pending input; fatal to this flow only.
		sess.Clear()
		b.send(chatID, msgRestartFlow)
		return
	}

	amount, category := sess.PendingAmount, sess.PendingCategory
	newBalance, err := b.tracker.AddExpense(ctx, userID, amount, category, description)
	if err != nil {
		// Session is left as it was so the same input can be retried.
		b.logger.Error("commit expense", "user_id", userID, "error", err)
		b.send(chatID, msgStorageFailure)
		return
	}
	sess.Clear()

	text := "✅ Expense added!\n\n" +
		category.Emoji() + " " + formatAmount(amount, b.currency) + " - " + category.Title()
	if description != "" {
		text += "\n📝 " + description
	}
	text += "\n\n" + formatBalance(newBalance, b.currency) + "\n\nUse the buttons below to continue:"
	b.sendKeyboard(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWelcome(ctx context.Context, chatID, userID int64) {
	balance, err := b.tracker.Balance(ctx, userID)
	if err != nil {
		b.logger.Error("welcome balance", "user_id", userID, "error", err)
		b.send(chatID, msgStorageFailure)
		return
	}
	b.sendKeyboard(chatID,
		"🎯 Welcome to Expenses Tracker Bot!\n\n"+
			formatBalance(balance, b.currency)+"\n\n"+
			"Use the buttons below to manage your expenses:",
		mainMenuKeyboard())
}

func (b *Bot) sendReport(ctx context.Context, chatID, userID int64, header string, rng daterange.Range) {
	report, err := b.tracker.Report(ctx, userID, rng)
	if err != nil {
		b.logger.Error("report", "user_id", userID, "error", err)
		b.send(chatID, msgStorageFailure)
		return
	}

	if len(report.Expenses) == 0 {
		b.sendKeyboard(chatID, "📊 No expenses found for "+strings.ToLower(report.Label)+".",
			backToMenuKeyboard())
		return
	}

	b.sendKeyboard(chatID, renderReport(header, report, b.currency), backToMenuKeyboard())

	png, err := b.charts.CategoryBreakdown(report.Totals)
	if err != nil {
		b.logger.Error("report chart", "user_id", userID, "error", err)
		return
	}
	if png == nil {
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "breakdown.png", Bytes: png})
	photo.Caption = "Spending by category - " + report.Label
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Error("send chart", "user_id", userID, "error", err)
	}
}

func (b *Bot) sendCategoryListing(ctx context.Context, chatID, userID int64, category model.Category) {
	expenses, err := b.tracker.ListExpenses(ctx, userID, nil, &category)
	if err != nil {
		b.logger.Error("category listing", "user_id", userID, "error", err)
		b.send(chatID, msgStorageFailure)
		return
	}

	if len(expenses) == 0 {
		b.sendKeyboard(chatID,
			"📊 No expenses found for "+category.Emoji()+" "+category.Title()+".",
			backToReportsKeyboard())
		return
	}
	b.sendKeyboard(chatID, renderCategoryListing(category, expenses, b.currency), backToReportsKeyboard())
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
