// Package sheets appends recorded expenses to a Google spreadsheet. It is
// the terminal stage of the backup pipeline and never sits on the user's
// request path.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastobot/internal/amqp"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Config carries everything the exporter needs. Credentials come from an
// inline JSON blob or a service-account key file; the file wins only when
// no blob is set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates an exporter from a service-account credential.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Gastos"
	}

	credentials := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	if len(credentials) == 0 {
		if strings.TrimSpace(cfg.CredentialsFile) == "" {
			return nil, errors.New("missing service account credentials")
		}
		var err error
		credentials, err = os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendExpense writes one expense row: date, description, category,
// amount (decimal), user id, expense id.
func (e *Exporter) AppendExpense(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	amount := float64(msg.AmountCents) / 100.0
	vr := &gsheet.ValueRange{
		Values: [][]any{{msg.Date, msg.Description, msg.Category, amount, msg.UserID, msg.ID}},
	}

	rng := fmt.Sprintf("%s!A:F", e.sheetName)
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	return nil
}
