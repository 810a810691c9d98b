// Package worker mirrors ledger events into the report spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"floatdesk/internal/amqp"
	"floatdesk/internal/core"
	"floatdesk/internal/export"
	applog "floatdesk/internal/log"
)

// ReportWorker appends one spreadsheet row per ledger event. Errors bubble
// to the consumer, which nacks the message for redelivery.
type ReportWorker struct {
	writer export.RowWriter
	sheet  string
}

func NewReportWorker(writer export.RowWriter, sheet string) *ReportWorker {
	return &ReportWorker{writer: writer, sheet: sheet}
}

// HandleEvent converts the event into a row: date, type, reference,
// description, decimal amount, month.
func (w *ReportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	row := []any{
		event.OccurredAt.Format(time.RFC3339),
		event.Type,
		event.Ref,
		event.Description,
		core.Money{Cents: event.AmountCents}.String(),
		event.Month,
	}

	if err := w.writer.AppendRow(ctx, w.sheet, row); err != nil {
		return fmt.Errorf("append report row: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored ledger event",
		applog.FieldEventType, event.Type,
		applog.FieldEventRef, event.Ref,
		applog.FieldSheet, w.sheet)
	return nil
}
