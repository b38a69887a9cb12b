// Package services orchestrates the message-handling pipeline: command
// dispatch, amount extraction, categorization, ledger mutation and the
// outbound replies.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gastobot/internal/amqp"
	"gastobot/internal/core"
	"gastobot/internal/ledger"
	"gastobot/internal/whapi"
)

// Sender delivers an outbound text message to a user.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// EventPublisher announces recorded expenses to downstream consumers.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// MessageService interprets inbound messages as commands or expense
// submissions. It is stateless between messages except for the shared
// ledger store; all mutations run under one process-wide lock so the
// read-modify-write snapshot cycle cannot race with itself.
type MessageService struct {
	store  ledger.Store
	sender Sender
	events EventPublisher // optional, nil skips publishing
	loc    *time.Location
	now    func() time.Time

	mu     sync.Mutex
	lastID int64
}

// installmentTailRE matches the "x 12" suffix of an installment entry.
var installmentTailRE = regexp.MustCompile(`(?i)x\s*(\d{1,3})\s*$`)

// NewMessageService wires the dispatcher. loc pins the calendar used for
// "current month"; a nil events publisher disables the backup events.
func NewMessageService(store ledger.Store, sender Sender, events EventPublisher, loc *time.Location) *MessageService {
	if loc == nil {
		loc = time.UTC
	}
	return &MessageService{
		store:  store,
		sender: sender,
		events: events,
		loc:    loc,
		now:    time.Now,
	}
}

// ProcessWebhook handles one webhook delivery: the ledger is loaded once,
// messages are processed strictly in array order, the snapshot is persisted
// after each mutation and replies are sent sequentially. Send failures are
// logged and dropped. It returns the ids of users whose data changed.
func (s *MessageService) ProcessWebhook(ctx context.Context, messages []whapi.Message) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	mutated := map[string]bool{}
	var mutatedOrder []string

	for _, msg := range messages {
		if msg.Type != whapi.TypeText && msg.Type != whapi.TypeAudio {
			continue
		}

		userID := msg.UserID()
		response, changed := s.handleMessage(ctx, l, userID, msg)
		if changed && !mutated[userID] {
			mutated[userID] = true
			mutatedOrder = append(mutatedOrder, userID)
		}
		if response == "" {
			continue
		}
		if err := s.sender.SendText(ctx, userID, response); err != nil {
			slog.ErrorContext(ctx, "Failed to send response",
				"error", err,
				"user_id", userID)
		}
	}

	return mutatedOrder, nil
}

// handleMessage runs the command state machine over a single message and
// returns the reply text ("" for silence) plus whether the ledger changed.
func (s *MessageService) handleMessage(ctx context.Context, l *core.Ledger, userID string, msg whapi.Message) (string, bool) {
	text := msg.Body
	if msg.Type == whapi.TypeAudio {
		// Transcription is delegated to an external collaborator; until
		// then audio carries a fixed placeholder through dispatch.
		text = core.MsgAudioPlaceholder
	}

	now := s.now().In(s.loc)
	lower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(lower, "/relatorio"):
		return core.GenerateReport(l, userID, core.PeriodCurrentMonth, now), false

	case strings.HasPrefix(lower, "/limpar"):
		removed := l.ClearMonth(userID, now.Year(), now.Month())
		s.persist(ctx, l)
		slog.InfoContext(ctx, "Cleared current-month expenses",
			"user_id", userID,
			"removed", removed)
		return core.MsgMonthCleared, true

	case strings.HasPrefix(lower, "/parcelas"):
		return core.GenerateInstallmentsReport(l, userID), false

	case strings.HasPrefix(lower, "/total"):
		return core.GenerateTotalReport(l, userID), false

	case strings.HasPrefix(lower, "/ajuda"):
		return core.MsgHelp, false

	case strings.HasPrefix(lower, "parcela") && installmentTailRE.MatchString(text):
		return s.recordInstallment(ctx, l, userID, text, now)

	case strings.TrimSpace(text) != "":
		return s.recordExpense(ctx, l, userID, text, now)
	}

	// Blank messages are silently ignored.
	return "", false
}

// recordExpense turns free text into a stored expense.
func (s *MessageService) recordExpense(ctx context.Context, l *core.Ledger, userID, text string, now time.Time) (string, bool) {
	amount, err := core.ExtractAmount(text)
	if err != nil {
		return core.MsgAmountNotFound, false
	}

	expense := core.Expense{
		ID:          s.nextID(now),
		UserID:      userID,
		Description: core.StripAmountTokens(text),
		Amount:      amount,
		Category:    core.DetectCategory(text),
		Date:        core.DateOf(now),
		Timestamp:   now,
	}
	l.Append(expense)
	s.persist(ctx, l)
	s.publishRecorded(ctx, expense)

	slog.InfoContext(ctx, "Expense recorded",
		"id", expense.ID,
		"user_id", userID,
		"category", expense.Category,
		"amount_cents", expense.Amount.Cents)

	return fmt.Sprintf("✅ *Gasto registrado!*\n\n"+
		"Descrição: %s\n"+
		"Categoria: *%s*\n"+
		"Valor: *%s*\n"+
		"Data: %s\n\n"+
		"_Use /relatorio para ver seu resumo do mês_",
		expense.Description, expense.Category, expense.Amount.FormatBRL(), expense.Date.FormatBR()), true
}

// recordInstallment parses the advertised "Parcela produto: 89,90 x 12"
// syntax and stores an installment plan.
func (s *MessageService) recordInstallment(ctx context.Context, l *core.Ledger, userID, text string, now time.Time) (string, bool) {
	match := installmentTailRE.FindStringSubmatch(text)
	count, err := strconv.Atoi(match[1])
	if err != nil || count < 1 || count > 120 {
		return core.MsgAmountNotFound, false
	}

	head := strings.TrimSpace(installmentTailRE.ReplaceAllString(text, ""))
	monthly, err := core.ExtractAmount(head)
	if err != nil {
		return core.MsgAmountNotFound, false
	}

	plan := core.InstallmentPlan{
		Description:   core.StripAmountTokens(head),
		TotalAmount:   monthly.Mul(count),
		MonthlyAmount: monthly,
		Count:         count,
		PaidCount:     0,
	}
	if err := plan.Validate(); err != nil {
		return core.MsgAmountNotFound, false
	}

	planID := uuid.NewString()
	l.PutInstallment(userID, planID, plan)
	s.persist(ctx, l)

	slog.InfoContext(ctx, "Installment plan recorded",
		"plan_id", planID,
		"user_id", userID,
		"count", count,
		"monthly_cents", monthly.Cents)

	return fmt.Sprintf("✅ *Parcelamento registrado!*\n\n"+
		"Descrição: %s\n"+
		"Total: *%s*\n"+
		"Parcelas: *%dx de %s*\n\n"+
		"_Use /parcelas para acompanhar suas parcelas_",
		plan.Description, plan.TotalAmount.FormatBRL(), count, monthly.FormatBRL()), true
}

// persist saves the snapshot; failures are logged and processing continues
// with the in-memory state.
func (s *MessageService) persist(ctx context.Context, l *core.Ledger) {
	if err := s.store.Save(ctx, l); err != nil {
		slog.ErrorContext(ctx, "Failed to persist ledger", "error", err)
	}
}

// publishRecorded emits the expense-recorded event. Publishing is best
// effort: the expense is already saved and the user reply must not fail.
func (s *MessageService) publishRecorded(ctx context.Context, e core.Expense) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded event",
			"error", err,
			"id", e.ID)
	}
}

// nextID returns a time-based identifier, bumped when two expenses land in
// the same millisecond so ids stay unique and monotonic.
func (s *MessageService) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
