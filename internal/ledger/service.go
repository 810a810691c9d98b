package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"floatdesk/internal/amqp"
	"floatdesk/internal/core"
)

// EventPublisher emits ledger events after successful mutations. A nil
// publisher disables eventing entirely.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event amqp.LedgerEvent) error
}

// Service is the ledger engine. It holds no request or session state: the
// caller's identity is checked at the HTTP boundary and never reaches here.
type Service struct {
	store  Store
	events EventPublisher
	now    func() time.Time
}

func NewService(store Store, events EventPublisher) *Service {
	return &Service{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// Aggregate reads the current value of every stream. Missing collections
// come back empty, not as errors; the total is derived by the caller from
// the snapshot via core.Aggregate.TotalBalance.
func (s *Service) Aggregate(ctx context.Context) (core.Aggregate, error) {
	channels, err := s.store.ListChannelBalances(ctx)
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("list channel balances: %w", err)
	}

	cash, err := s.store.GetCashAtHand(ctx)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return core.Aggregate{}, fmt.Errorf("get cash at hand: %w", err)
	}

	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("list debts: %w", err)
	}

	incomes, err := s.store.ListIncomes(ctx)
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("list incomes: %w", err)
	}

	return core.Aggregate{
		Channels: channels,
		Cash:     cash,
		Debts:    debts,
		Incomes:  incomes,
	}, nil
}

// SetChannelBalance upserts the named channel's balance. The trend is the
// signed percentage change against the previously stored amount; a channel
// with no history, or whose previous amount was zero, gets a zero trend.
func (s *Service) SetChannelBalance(ctx context.Context, channel string, amount core.Money) (core.ChannelBalance, error) {
	balance := core.ChannelBalance{
		Channel:     channel,
		Amount:      amount,
		LastUpdated: s.now(),
	}
	if err := balance.Validate(); err != nil {
		return core.ChannelBalance{}, err
	}

	prev, err := s.store.GetChannelBalance(ctx, channel)
	switch {
	case err == nil:
		if prev.Amount.Cents > 0 {
			balance.Trend = float64(amount.Cents-prev.Amount.Cents) / float64(prev.Amount.Cents) * 100
		}
	case errors.Is(err, core.ErrNotFound):
		// first write for this channel
	default:
		return core.ChannelBalance{}, fmt.Errorf("get previous balance: %w", err)
	}

	if err := s.store.UpsertChannelBalance(ctx, balance); err != nil {
		return core.ChannelBalance{}, fmt.Errorf("upsert channel balance: %w", err)
	}

	s.publish(ctx, amqp.LedgerEvent{
		Type:        amqp.EventBalanceUpdated,
		Ref:         channel,
		Description: "channel balance updated",
		AmountCents: amount.Cents,
		OccurredAt:  balance.LastUpdated,
	})
	return balance, nil
}

// RecordDebt creates a new unpaid debt. It touches no other stream until
// settlement.
func (s *Service) RecordDebt(ctx context.Context, debtor string, amount core.Money) (core.Debt, error) {
	debt := core.Debt{
		Debtor:       debtor,
		Amount:       amount,
		DateIncurred: s.now(),
	}
	if err := debt.Validate(); err != nil {
		return core.Debt{}, err
	}

	created, err := s.store.InsertDebt(ctx, debt)
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	return created, nil
}

// SettleDebt marks the debt paid and appends the matching income as one
// atomic unit. Settling an unknown debt is core.ErrNotFound; settling an
// already-paid debt is core.ErrDebtAlreadyPaid, never a double credit.
func (s *Service) SettleDebt(ctx context.Context, id int64) (core.Debt, core.Income, error) {
	debt, income, err := s.store.SettleDebt(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrDebtAlreadyPaid) {
			return core.Debt{}, core.Income{}, err
		}
		return core.Debt{}, core.Income{}, fmt.Errorf("settle debt %d: %w", id, err)
	}

	s.publish(ctx, amqp.LedgerEvent{
		Type:        amqp.EventDebtSettled,
		Ref:         strconv.FormatInt(debt.ID, 10),
		Description: income.Description,
		AmountCents: income.Amount.Cents,
		OccurredAt:  income.Date,
	})
	return debt, income, nil
}

// RecordIncome appends an ad-hoc income record.
func (s *Service) RecordIncome(ctx context.Context, description string, amount core.Money) (core.Income, error) {
	income := core.Income{
		Description: description,
		Amount:      amount,
		Date:        s.now(),
	}
	if err := income.Validate(); err != nil {
		return core.Income{}, err
	}

	created, err := s.store.InsertIncome(ctx, income)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}

	s.publish(ctx, amqp.LedgerEvent{
		Type:        amqp.EventIncomeRecorded,
		Ref:         strconv.FormatInt(created.ID, 10),
		Description: created.Description,
		AmountCents: created.Amount.Cents,
		OccurredAt:  created.Date,
	})
	return created, nil
}

// SetCashAtHand stores the scalar cash amount. Any sign is accepted; a
// negative value records a float shortfall.
func (s *Service) SetCashAtHand(ctx context.Context, amount core.Money) error {
	cash := core.CashAtHand{Amount: amount, UpdatedAt: s.now()}
	if err := s.store.SetCashAtHand(ctx, cash); err != nil {
		return fmt.Errorf("set cash at hand: %w", err)
	}
	return nil
}

// RecordCommission appends a monthly commission entry. Commissions never
// feed the total balance; they exist for reporting only.
func (s *Service) RecordCommission(ctx context.Context, service string, amount core.Money, month string) (core.Commission, error) {
	commission := core.Commission{
		ID:        uuid.NewString(),
		Service:   service,
		Amount:    amount,
		Month:     month,
		CreatedAt: s.now(),
	}
	if err := commission.Validate(); err != nil {
		return core.Commission{}, err
	}

	if err := s.store.InsertCommission(ctx, commission); err != nil {
		return core.Commission{}, fmt.Errorf("insert commission: %w", err)
	}

	s.publish(ctx, amqp.LedgerEvent{
		Type:        amqp.EventCommissionRecorded,
		Ref:         commission.ID,
		Description: commission.Service,
		AmountCents: commission.Amount.Cents,
		Month:       commission.Month,
		OccurredAt:  commission.CreatedAt,
	})
	return commission, nil
}

// ListCommissions returns commissions, newest first, optionally filtered by
// YYYY-MM month.
func (s *Service) ListCommissions(ctx context.Context, month string) ([]core.Commission, error) {
	if month != "" {
		if err := core.ValidateMonth(month); err != nil {
			return nil, err
		}
	}
	commissions, err := s.store.ListCommissions(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	return commissions, nil
}

// Stats is the read-only dashboard summary.
type Stats struct {
	TotalBalance       core.Money        `json:"totalBalance"`
	ChannelCount       int               `json:"channelCount"`
	OutstandingDebt    core.Money        `json:"outstandingDebt"`
	UnpaidDebtCount    int               `json:"unpaidDebtCount"`
	DebtCount          int               `json:"debtCount"`
	IncomeTotal        core.Money        `json:"incomeTotal"`
	CommissionTotal    core.Money        `json:"commissionTotal"`
	MonthlyCommissions []core.MonthlySum `json:"monthlyCommissions"`
}

// DashboardStats derives counts and sums from the streams. Pure read.
func (s *Service) DashboardStats(ctx context.Context) (Stats, error) {
	agg, err := s.Aggregate(ctx)
	if err != nil {
		return Stats{}, err
	}

	monthly, err := s.store.SumCommissionsByMonth(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("sum commissions by month: %w", err)
	}

	stats := Stats{
		TotalBalance:       agg.TotalBalance(),
		ChannelCount:       len(agg.Channels),
		OutstandingDebt:    agg.OutstandingDebt(),
		DebtCount:          len(agg.Debts),
		MonthlyCommissions: monthly,
	}
	for _, d := range agg.Debts {
		if !d.Paid {
			stats.UnpaidDebtCount++
		}
	}
	var incomeCents, commissionCents int64
	for _, i := range agg.Incomes {
		incomeCents += i.Amount.Cents
	}
	for _, m := range monthly {
		commissionCents += m.Total.Cents
	}
	stats.IncomeTotal = core.Money{Cents: incomeCents}
	stats.CommissionTotal = core.Money{Cents: commissionCents}
	return stats, nil
}

// publish emits a ledger event without failing the request: the mutation is
// already durable, so a publish failure only costs the spreadsheet mirror a
// row and is logged for the periodic reconciliation to pick up.
func (s *Service) publish(ctx context.Context, event amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"ref", event.Ref,
			"error", err)
	}
}
