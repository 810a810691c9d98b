package core

// Aggregate is a point-in-time snapshot of the four ledger streams. The
// total balance is derived from it and never persisted as its own source of
// truth.
type Aggregate struct {
	Channels []ChannelBalance `json:"channelBalances"`
	Cash     CashAtHand       `json:"cashAtHand"`
	Debts    []Debt           `json:"debts"`
	Incomes  []Income         `json:"incomes"`
}

// TotalBalance computes
//
//	Σ channel amounts + cash at hand − Σ unpaid debts + Σ incomes.
//
// Paid debts do not subtract. Missing streams contribute zero. Summation is
// integer cents, so the result is deterministic regardless of insertion
// order.
func (a Aggregate) TotalBalance() Money {
	var total int64
	for _, b := range a.Channels {
		total += b.Amount.Cents
	}
	total += a.Cash.Amount.Cents
	for _, d := range a.Debts {
		if !d.Paid {
			total -= d.Amount.Cents
		}
	}
	for _, i := range a.Incomes {
		total += i.Amount.Cents
	}
	return Money{Cents: total}
}

// OutstandingDebt sums the unpaid debts only.
func (a Aggregate) OutstandingDebt() Money {
	var total int64
	for _, d := range a.Debts {
		if !d.Paid {
			total += d.Amount.Cents
		}
	}
	return Money{Cents: total}
}
