// Package storage implements the ledger snapshot store on SQLite.
//
// The store keeps the whole-snapshot contract of ledger.Store: Save
// replaces every row inside one transaction, Load reads everything back in
// insertion order. That trades write amplification for simple
// last-writer-wins semantics while gaining durable single-file storage
// over the JSON snapshot.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastobot/internal/core"
	"gastobot/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database and applies
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the whole snapshot. Expenses come back in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) (*core.Ledger, error) {
	l := core.NewLedger()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, amount_cents, category, date, timestamp
		 FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e        core.Expense
			cents    int64
			date, ts string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &cents, &e.Category, &date, &ts); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = core.Money{Cents: cents}
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		e.Date = core.Date{Time: d}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse expense timestamp %q: %w", ts, err)
		}
		l.Append(e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	planRows, err := s.db.QueryContext(ctx,
		`SELECT user_id, plan_id, description, total_cents, monthly_cents, count, paid_count
		 FROM installment_plans`)
	if err != nil {
		return nil, fmt.Errorf("query installment plans: %w", err)
	}
	defer planRows.Close()

	for planRows.Next() {
		var (
			userID, planID         string
			p                      core.InstallmentPlan
			totalCents, monthCents int64
		)
		if err := planRows.Scan(&userID, &planID, &p.Description, &totalCents, &monthCents, &p.Count, &p.PaidCount); err != nil {
			return nil, fmt.Errorf("scan installment plan: %w", err)
		}
		p.TotalAmount = core.Money{Cents: totalCents}
		p.MonthlyAmount = core.Money{Cents: monthCents}
		l.PutInstallment(userID, planID, p)
	}
	if err := planRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installment plans: %w", err)
	}

	return l, nil
}

// Save replaces the persisted snapshot inside a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, l *core.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM installment_plans`); err != nil {
		return fmt.Errorf("clear installment plans: %w", err)
	}

	for _, e := range l.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, user_id, description, amount_cents, category, date, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.UserID, e.Description, e.Amount.Cents, e.Category,
			e.Date.String(), e.Timestamp.Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert expense %d: %w", e.ID, err)
		}
	}

	for userID, plans := range l.Installments {
		for planID, p := range plans {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO installment_plans (user_id, plan_id, description, total_cents, monthly_cents, count, paid_count)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				userID, planID, p.Description, p.TotalAmount.Cents, p.MonthlyAmount.Cents, p.Count, p.PaidCount)
			if err != nil {
				return fmt.Errorf("insert installment plan %s/%s: %w", userID, planID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Ledger snapshot saved",
		"expenses", len(l.Expenses),
		"installment_users", len(l.Installments))
	return nil
}
