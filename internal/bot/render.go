package bot

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"expensesbot/internal/model"
	"expensesbot/internal/service"
)

// maxReportRows caps the transaction lines shown per report message. The
// aggregates above the listing always cover the full matching set.
const maxReportRows = 10

const helpText = `❓ Help

Commands:
/start - show the main menu
/balance - add money to your balance
/expense - record an expense
/report [period] - expense report (defaults to the report menu)
/help - this message

Report periods:
today, yesterday, week, last week, month, last month,
2025-09-08, 2025-09, 15/09/2025, or "2025-08-01 to 2025-08-31".

Your balance can go negative; a negative balance means debt.`

func formatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

func formatBalance(balance decimal.Decimal, currency string) string {
	text := "💳 Balance: " + formatAmount(balance, currency)
	if balance.IsNegative() {
		text += "\n⚠️ You are in debt."
	}
	return text
}

func renderReport(header string, report *service.Report, currency string) string {
	var sb strings.Builder
	sb.WriteString(header + "\n")
	sb.WriteString("📅 Period: " + report.Label + "\n\n")
	sb.WriteString("💸 Total spent: " + formatAmount(report.TotalSpent, currency) + "\n")

	if len(report.Totals) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, t := range report.Totals {
			sb.WriteString(t.Category.Emoji() + " " + t.Category.Title() + ": " +
				formatAmount(t.Total, currency) + "\n")
		}
	}

	sb.WriteString("\nTransactions:\n")
	writeExpenseLines(&sb, report.Expenses, currency)
	return sb.String()
}

func renderCategoryListing(category model.Category, expenses []model.Expense, currency string) string {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	var sb strings.Builder
	sb.WriteString("📂 " + category.Emoji() + " " + category.Title() + " - all time\n\n")
	sb.WriteString("💸 Total spent: " + formatAmount(total, currency) + "\n")
	sb.WriteString("\nTransactions:\n")
	writeExpenseLines(&sb, expenses, currency)
	return sb.String()
}

func writeExpenseLines(sb *strings.Builder, expenses []model.Expense, currency string) {
	shown := expenses
	if len(shown) > maxReportRows {
		shown = shown[:maxReportRows]
	}
	for _, e := range shown {
		sb.WriteString(e.Category.Emoji() + " " + formatAmount(e.Amount, currency))
		if e.Description != "" {
			sb.WriteString(" - " + e.Description)
		}
		sb.WriteString("\n   🕒 " + e.CreatedAt.Format("2006-01-02 15:04") + "\n")
	}
	if rest := len(expenses) - len(shown); rest > 0 {
		sb.WriteString("... and " + strconv.Itoa(rest) + " more transactions\n")
	}
}
