package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNoAmount         = errors.New("no amount found")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptyCategory    = errors.New("empty category")
)

type (
	// Date is a calendar date; the time-of-day part is always midnight.
	// It marshals as "YYYY-MM-DD", the format the ledger files use.
	Date struct {
		time.Time
	}

	// Expense is a single recorded expense. Immutable once created except
	// by bulk deletion (/limpar).
	Expense struct {
		ID          int64     `json:"id"`
		UserID      string    `json:"userId"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		Timestamp   time.Time `json:"timestamp"`
	}

	// InstallmentPlan is a recurring multi-payment obligation tracked
	// separately from one-off expenses.
	InstallmentPlan struct {
		Description   string `json:"description"`
		TotalAmount   Money  `json:"totalAmount"`
		MonthlyAmount Money  `json:"monthlyAmount"`
		Count         int    `json:"count"`
		PaidCount     int    `json:"paidCount"`
	}

	// Ledger is the whole persisted state: every expense in insertion
	// order plus installment plans keyed by user id and plan id. It is
	// loaded and saved as a unit.
	Ledger struct {
		Expenses     []Expense                             `json:"expenses"`
		Installments map[string]map[string]InstallmentPlan `json:"installments"`
	}
)

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// InMonth reports whether the date falls in the given calendar month.
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// String renders the date in the ledger's YYYY-MM-DD format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// FormatBR renders the date as dd/mm/yyyy for user-facing messages.
func (d Date) FormatBR() string {
	return d.Format("02/01/2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Validate checks the invariants every stored expense must satisfy.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date.IsZero() {
		return errors.New("zero date")
	}
	return nil
}

// Validate checks an installment plan before it is stored.
func (p InstallmentPlan) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if err := p.MonthlyAmount.Validate(); err != nil {
		return err
	}
	if p.Count < 1 {
		return errors.New("installment count must be at least 1")
	}
	if p.PaidCount < 0 || p.PaidCount > p.Count {
		return errors.New("paid count out of range")
	}
	return nil
}

// Remaining returns the number of unpaid installments.
func (p InstallmentPlan) Remaining() int {
	return p.Count - p.PaidCount
}

// NewLedger returns an empty ledger ready for use.
func NewLedger() *Ledger {
	return &Ledger{
		Expenses:     []Expense{},
		Installments: map[string]map[string]InstallmentPlan{},
	}
}

// Normalize repairs nil collections after JSON decoding so callers never
// see a nil map or slice.
func (l *Ledger) Normalize() {
	if l.Expenses == nil {
		l.Expenses = []Expense{}
	}
	if l.Installments == nil {
		l.Installments = map[string]map[string]InstallmentPlan{}
	}
}

// UserExpenses returns the user's expenses preserving insertion order.
func (l *Ledger) UserExpenses(userID string) []Expense {
	var out []Expense
	for _, e := range l.Expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// UserInstallments returns the user's installment plans, or an empty map.
func (l *Ledger) UserInstallments(userID string) map[string]InstallmentPlan {
	if plans, ok := l.Installments[userID]; ok {
		return plans
	}
	return map[string]InstallmentPlan{}
}

// Append adds an expense to the end of the ledger.
func (l *Ledger) Append(e Expense) {
	l.Expenses = append(l.Expenses, e)
}

// PutInstallment stores a plan under the user's key.
func (l *Ledger) PutInstallment(userID, planID string, p InstallmentPlan) {
	if l.Installments == nil {
		l.Installments = map[string]map[string]InstallmentPlan{}
	}
	if l.Installments[userID] == nil {
		l.Installments[userID] = map[string]InstallmentPlan{}
	}
	l.Installments[userID][planID] = p
}

// ClearMonth removes the user's expenses dated inside the given calendar
// month. Installment plans are untouched. Returns how many were removed.
func (l *Ledger) ClearMonth(userID string, year int, month time.Month) int {
	kept := l.Expenses[:0]
	removed := 0
	for _, e := range l.Expenses {
		if e.UserID == userID && e.Date.InMonth(year, month) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.Expenses = kept
	return removed
}
