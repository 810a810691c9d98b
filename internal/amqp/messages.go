package amqp

import (
	"encoding/json"
	"time"
)

// Event types published by the ledger engine.
const (
	EventBalanceUpdated     = "balance_updated"
	EventDebtSettled        = "debt_settled"
	EventIncomeRecorded     = "income_recorded"
	EventCommissionRecorded = "commission_recorded"
)

// LedgerEvent is a lightweight record of one ledger mutation. The report
// worker mirrors these into the spreadsheet; consumers that need the full
// row fetch it from storage by Ref.
type LedgerEvent struct {
	Type        string    `json:"type"`
	Ref         string    `json:"ref"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Month       string    `json:"month,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
