package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expensesbot/internal/model"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Add Balance", actionAddBalance),
			tgbotapi.NewInlineKeyboardButtonData("💸 Add Expense", actionAddExpense),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 View Report", actionReportMenu),
			tgbotapi.NewInlineKeyboardButtonData("💳 Check Balance", actionCheckBalance),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", actionHelp),
		),
	)
}

func reportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Today", reportPrefix+"today"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Yesterday", reportPrefix+"yesterday"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 This Week", reportPrefix+"week"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Last Week", reportPrefix+"last week"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 This Month", reportPrefix+"month"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Last Month", reportPrefix+"last month"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Custom Search", actionCustomSearch),
			tgbotapi.NewInlineKeyboardButtonData("📂 By Category", actionCategorySearch),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", actionBackToMenu),
		),
	)
}

// categoryButtons lays the fixed category set out two per row.
func categoryButtons(prefix string) [][]tgbotapi.InlineKeyboardButton {
	categories := model.Categories()
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, (len(categories)+1)/2)
	for i := 0; i < len(categories); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				categories[i].Emoji()+" "+categories[i].Title(),
				prefix+categories[i].String()),
		}
		if i+1 < len(categories) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				categories[i+1].Emoji()+" "+categories[i+1].Title(),
				prefix+categories[i+1].String()))
		}
		rows = append(rows, row)
	}
	return rows
}

func categoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(categoryButtons(categoryPrefix)...)
}

func searchCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := categoryButtons(searchCategoryPrefix)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", actionReportMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func skipDescriptionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", actionSkipDesc),
		),
	)
}

func backToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to Menu", actionBackToMenu),
		),
	)
}

func backToReportsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back to Reports", actionReportMenu),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", actionBackToMenu),
		),
	)
}
