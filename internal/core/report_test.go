package core

import (
	"strings"
	"testing"
	"time"
)

func sampleLedger() *Ledger {
	l := NewLedger()
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	l.Append(Expense{ID: 1, UserID: "5511999990000", Description: "Gasolina:", Amount: Money{Cents: 5000}, Category: "Combustível", Date: DateOf(now), Timestamp: now})
	l.Append(Expense{ID: 2, UserID: "5511999990000", Description: "Almoço:", Amount: Money{Cents: 4550}, Category: "Comida", Date: DateOf(now), Timestamp: now})
	l.Append(Expense{ID: 3, UserID: "5511999990000", Description: "Jantar:", Amount: Money{Cents: 5450}, Category: "Comida", Date: DateOf(now), Timestamp: now})
	l.Append(Expense{ID: 4, UserID: "5511888880000", Description: "Uber:", Amount: Money{Cents: 1800}, Category: "Transporte", Date: DateOf(now), Timestamp: now})
	return l
}

func TestGenerateReportEmptyLedger(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	got := GenerateReport(NewLedger(), "5511999990000", PeriodCurrentMonth, now)
	if got != MsgNoExpenses {
		t.Fatalf("expected fixed empty message, got %q", got)
	}
}

func TestGenerateReportCurrentMonth(t *testing.T) {
	l := sampleLedger()
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	got := GenerateReport(l, "5511999990000", PeriodCurrentMonth, now)

	want := "*📊 RELATÓRIO DE GASTOS*\n\n" +
		"• *Comida*: R$ 100,00 (66.7%)\n" +
		"• *Combustível*: R$ 50,00 (33.3%)\n" +
		"\n*Total: R$ 150,00*"
	if got != want {
		t.Fatalf("report mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateReportFiltersOtherUsersAndMonths(t *testing.T) {
	l := sampleLedger()
	// Expense from a previous month must not show in current-month report.
	old := time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC)
	l.Append(Expense{ID: 5, UserID: "5511999990000", Description: "antigo", Amount: Money{Cents: 99900}, Category: "Shopping", Date: DateOf(old), Timestamp: old})

	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	got := GenerateReport(l, "5511999990000", PeriodCurrentMonth, now)
	if strings.Contains(got, "Shopping") {
		t.Fatalf("previous-month expense leaked into report: %q", got)
	}
	if strings.Contains(got, "Transporte") {
		t.Fatalf("other user's expense leaked into report: %q", got)
	}

	all := GenerateReport(l, "5511999990000", PeriodAllTime, now)
	if !strings.Contains(all, "Shopping") {
		t.Fatalf("all-time report should include previous months: %q", all)
	}
}

func TestSummarizeTotalsMatch(t *testing.T) {
	l := sampleLedger()
	s := Summarize(l.UserExpenses("5511999990000"))

	var sum int64
	for _, ca := range s.ByCategory {
		sum += ca.Amount.Cents
	}
	if sum != s.Total.Cents {
		t.Fatalf("per-category sum %d != total %d", sum, s.Total.Cents)
	}
}

func TestSummarizeStableSortOnTies(t *testing.T) {
	expenses := []Expense{
		{UserID: "u", Category: "Comida", Amount: Money{Cents: 1000}},
		{UserID: "u", Category: "Contas", Amount: Money{Cents: 1000}},
		{UserID: "u", Category: "Transporte", Amount: Money{Cents: 2000}},
	}
	s := Summarize(expenses)
	if s.ByCategory[0].Name != "Transporte" {
		t.Fatalf("expected Transporte first, got %q", s.ByCategory[0].Name)
	}
	// Ties keep first-occurrence order: Comida grouped before Contas.
	if s.ByCategory[1].Name != "Comida" || s.ByCategory[2].Name != "Contas" {
		t.Fatalf("tie order broken: %q then %q", s.ByCategory[1].Name, s.ByCategory[2].Name)
	}
}

func TestGenerateInstallmentsReport(t *testing.T) {
	l := NewLedger()
	if got := GenerateInstallmentsReport(l, "u"); got != MsgNoInstallments {
		t.Fatalf("expected fixed no-installments message, got %q", got)
	}

	l.PutInstallment("u", "plan-1", InstallmentPlan{
		Description:   "Parcela produto:",
		TotalAmount:   Money{Cents: 107880},
		MonthlyAmount: Money{Cents: 8990},
		Count:         12,
		PaidCount:     2,
	})
	got := GenerateInstallmentsReport(l, "u")
	want := "*💳 PARCELAS ATIVAS*\n\n" +
		"• Parcela produto:\n  Total: R$ 1078,80\n  Restam: 10x de R$ 89,90\n\n"
	if got != want {
		t.Fatalf("installments mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestGenerateTotalReport(t *testing.T) {
	l := sampleLedger()
	got := GenerateTotalReport(l, "5511999990000")
	want := "*💰 GASTOS TOTAIS*\nTotal geral: R$ 150,00"
	if got != want {
		t.Fatalf("total mismatch: got %q want %q", got, want)
	}

	if again := GenerateTotalReport(l, "5511999990000"); again != got {
		t.Fatalf("total report not idempotent")
	}

	empty := GenerateTotalReport(l, "nobody")
	if empty != "*💰 GASTOS TOTAIS*\nTotal geral: R$ 0,00" {
		t.Fatalf("unexpected empty total: %q", empty)
	}
}
