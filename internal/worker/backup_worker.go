// Package worker consumes expense-recorded events and mirrors them into
// the configured Google spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gastobot/internal/amqp"
)

// SheetAppender writes one expense row to the backup spreadsheet.
type SheetAppender interface {
	AppendExpense(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// BackupWorker drains the expense-recorded queue into the spreadsheet.
// Append failures are returned so the broker redelivers the message; the
// sheet row is the only durable side effect and appending twice for the
// same expense is visible but harmless.
type BackupWorker struct {
	client   *amqp.Client
	appender SheetAppender
}

func NewBackupWorker(client *amqp.Client, appender SheetAppender) *BackupWorker {
	return &BackupWorker{
		client:   client,
		appender: appender,
	}
}

// Run blocks consuming messages until ctx is cancelled or the consume
// channel closes.
func (w *BackupWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Backup worker started")
	return w.client.ConsumeExpenseRecorded(ctx, w.handle)
}

func (w *BackupWorker) handle(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	slog.InfoContext(ctx, "Processing expense backup",
		"id", msg.ID,
		"user_id", msg.UserID,
		"category", msg.Category)

	if err := w.appender.AppendExpense(ctx, msg); err != nil {
		return fmt.Errorf("append expense %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Expense backed up", "id", msg.ID)
	return nil
}
