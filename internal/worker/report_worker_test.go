package worker

import (
	"context"
	"testing"
	"time"

	"floatdesk/internal/amqp"
	"floatdesk/internal/export/memory"
)

func TestHandleEvent(t *testing.T) {
	writer := memory.NewWriter()
	w := NewReportWorker(writer, "Ledger")

	event := &amqp.LedgerEvent{
		Type:        amqp.EventDebtSettled,
		Ref:         "7",
		Description: "Debt repayment from John Doe",
		AmountCents: 25000,
		OccurredAt:  time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
	}

	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	rows := writer.Rows("Ledger")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row[1] != amqp.EventDebtSettled {
		t.Errorf("unexpected type column: %v", row[1])
	}
	if row[4] != "250.00" {
		t.Errorf("expected decimal amount 250.00, got %v", row[4])
	}
}

func TestHandleEventCommissionMonth(t *testing.T) {
	writer := memory.NewWriter()
	w := NewReportWorker(writer, "Ledger")

	event := &amqp.LedgerEvent{
		Type:        amqp.EventCommissionRecorded,
		Ref:         "abc-123",
		Description: "M-Pesa",
		AmountCents: 4200,
		Month:       "2025-06",
		OccurredAt:  time.Now(),
	}

	if err := w.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}

	rows := writer.Rows("Ledger")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0][5] != "2025-06" {
		t.Errorf("expected month column 2025-06, got %v", rows[0][5])
	}
}
