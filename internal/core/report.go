package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period selects the reporting window.
type Period string

const (
	PeriodCurrentMonth Period = "current-month"
	PeriodAllTime      Period = "all-time"
)

// Fixed user-facing messages. These are part of the bot's contract with its
// users and are rendered byte for byte.
const (
	MsgNoExpenses       = "Nenhum gasto registrado para este período."
	MsgNoInstallments   = "Você não tem parcelas ativas."
	MsgMonthCleared     = "✅ Gastos do mês foram limpos! (Parcelas não foram afetadas)"
	MsgAudioPlaceholder = "[Áudio - será implementado com Google Speech-to-Text]"

	MsgHelp = "*🤖 COMANDOS DISPONÍVEIS*\n\n" +
		"/relatorio - Relatório do mês atual\n" +
		"/total - Gastos totais\n" +
		"/parcelas - Parcelas ativas\n" +
		"/limpar - Limpar gastos do mês\n" +
		"/ajuda - Esta mensagem\n\n" +
		"*Exemplos de gastos:*\n" +
		"• \"Gasolina: 50 reais\"\n" +
		"• \"Almoço: 45,50\"\n" +
		"• \"Presente para mãe: 120\"\n" +
		"• \"Parcela produto: 89,90 x 12\""

	MsgAmountNotFound = "❌ Não consegui identificar o valor.\n\n" +
		"Tente novamente com o formato:\n" +
		"• \"Gasolina: 50\"\n" +
		"• \"Almoço: 45,50\"\n\n" +
		"Use /ajuda para mais comandos."
)

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary aggregates a set of expenses by category.
type Summary struct {
	Total      Money
	ByCategory []CategoryAmount
}

// Summarize groups expenses by category, summing amounts and the grand
// total. Categories keep their first-occurrence order, then are stably
// sorted by amount descending, so equal sums preserve grouping order.
func Summarize(expenses []Expense) Summary {
	index := map[string]int{}
	var s Summary
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(s.ByCategory)
			index[e.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryAmount{Name: e.Category})
		}
		s.ByCategory[i].Amount = s.ByCategory[i].Amount.Add(e.Amount)
		s.Total = s.Total.Add(e.Amount)
	}
	sort.SliceStable(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Amount.Cents > s.ByCategory[j].Amount.Cents
	})
	return s
}

// GenerateReport renders the per-category spending report for one user.
// The current-month window is the calendar month of now, evaluated in
// now's location.
func GenerateReport(l *Ledger, userID string, period Period, now time.Time) string {
	expenses := l.UserExpenses(userID)
	if period == PeriodCurrentMonth {
		filtered := expenses[:0:0]
		for _, e := range expenses {
			if e.Date.InMonth(now.Year(), now.Month()) {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}
	if len(expenses) == 0 {
		return MsgNoExpenses
	}

	s := Summarize(expenses)
	var b strings.Builder
	b.WriteString("*📊 RELATÓRIO DE GASTOS*\n\n")
	for _, ca := range s.ByCategory {
		pct := float64(ca.Amount.Cents) * 100 / float64(s.Total.Cents)
		fmt.Fprintf(&b, "• *%s*: %s (%.1f%%)\n", ca.Name, ca.Amount.FormatBRL(), pct)
	}
	fmt.Fprintf(&b, "\n*Total: %s*", s.Total.FormatBRL())
	return b.String()
}

// GenerateInstallmentsReport lists the user's active installment plans.
// Plans are rendered in lexical plan-id order so repeated calls produce
// identical output.
func GenerateInstallmentsReport(l *Ledger, userID string) string {
	plans := l.UserInstallments(userID)
	if len(plans) == 0 {
		return MsgNoInstallments
	}

	ids := make([]string, 0, len(plans))
	for id := range plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString("*💳 PARCELAS ATIVAS*\n\n")
	for _, id := range ids {
		p := plans[id]
		fmt.Fprintf(&b, "• %s\n  Total: %s\n  Restam: %dx de %s\n\n",
			p.Description, p.TotalAmount.FormatBRL(), p.Remaining(), p.MonthlyAmount.FormatBRL())
	}
	return b.String()
}

// GenerateTotalReport sums every expense of the user across all time.
func GenerateTotalReport(l *Ledger, userID string) string {
	var total Money
	for _, e := range l.UserExpenses(userID) {
		total = total.Add(e.Amount)
	}
	return fmt.Sprintf("*💰 GASTOS TOTAIS*\nTotal geral: %s", total.FormatBRL())
}
