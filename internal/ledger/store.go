// Package ledger implements the float ledger: four independently-mutated
// value streams (channel balances, cash at hand, debts, incomes) and the
// derived total balance, plus the one cross-stream rule that settling a
// debt appends an income.
package ledger

import (
	"context"
	"time"

	"floatdesk/internal/core"
)

// Store is the storage collaborator consumed by the ledger engine: a keyed
// document store offering insert, filtered list, conditional update, and a
// group-by-month sum, one logical collection per stream. SettleDebt is the
// single operation that must be transactional: the debt flip and the income
// append are observed together or not at all.
type Store interface {
	ListChannelBalances(ctx context.Context) ([]core.ChannelBalance, error)
	// GetChannelBalance returns core.ErrNotFound for unknown channels.
	GetChannelBalance(ctx context.Context, channel string) (core.ChannelBalance, error)
	UpsertChannelBalance(ctx context.Context, balance core.ChannelBalance) error

	GetCashAtHand(ctx context.Context) (core.CashAtHand, error)
	SetCashAtHand(ctx context.Context, cash core.CashAtHand) error

	InsertDebt(ctx context.Context, debt core.Debt) (core.Debt, error)
	ListDebts(ctx context.Context) ([]core.Debt, error)
	// SettleDebt atomically marks the debt paid and appends the settlement
	// income built by core.SettlementIncome. It returns core.ErrNotFound for
	// an unknown id and core.ErrDebtAlreadyPaid when the debt was settled
	// before; concurrent settles of the same debt serialize so that exactly
	// one income is ever credited.
	SettleDebt(ctx context.Context, id int64, now time.Time) (core.Debt, core.Income, error)

	InsertIncome(ctx context.Context, income core.Income) (core.Income, error)
	ListIncomes(ctx context.Context) ([]core.Income, error)

	InsertCommission(ctx context.Context, commission core.Commission) error
	// ListCommissions filters by YYYY-MM month when month is non-empty.
	ListCommissions(ctx context.Context, month string) ([]core.Commission, error)
	SumCommissionsByMonth(ctx context.Context) ([]core.MonthlySum, error)
}
