// Package memory provides a mutex-serialized in-memory ledger store. It
// backs the memory data backend and the engine's tests; the transactional
// contract of SettleDebt holds trivially under the single lock.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"floatdesk/internal/core"
)

type Store struct {
	mu           sync.Mutex
	balances     map[string]core.ChannelBalance
	cash         core.CashAtHand
	debts        []core.Debt
	incomes      []core.Income
	commissions  []core.Commission
	nextDebtID   int64
	nextIncomeID int64
}

func NewStore() *Store {
	return &Store{
		balances:     make(map[string]core.ChannelBalance),
		nextDebtID:   1,
		nextIncomeID: 1,
	}
}

func (s *Store) ListChannelBalances(ctx context.Context) ([]core.ChannelBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.ChannelBalance, 0, len(s.balances))
	for _, b := range s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

func (s *Store) GetChannelBalance(ctx context.Context, channel string) (core.ChannelBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[channel]
	if !ok {
		return core.ChannelBalance{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) UpsertChannelBalance(ctx context.Context, balance core.ChannelBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[balance.Channel] = balance
	return nil
}

func (s *Store) GetCashAtHand(ctx context.Context) (core.CashAtHand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cash, nil
}

func (s *Store) SetCashAtHand(ctx context.Context, cash core.CashAtHand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cash = cash
	return nil
}

func (s *Store) InsertDebt(ctx context.Context, debt core.Debt) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	debt.ID = s.nextDebtID
	s.nextDebtID++
	s.debts = append(s.debts, debt)
	return debt, nil
}

func (s *Store) ListDebts(ctx context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Debt, len(s.debts))
	copy(out, s.debts)
	return out, nil
}

func (s *Store) SettleDebt(ctx context.Context, id int64, now time.Time) (core.Debt, core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, d := range s.debts {
		if d.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Debt{}, core.Income{}, core.ErrNotFound
	}
	if s.debts[idx].Paid {
		return core.Debt{}, core.Income{}, core.ErrDebtAlreadyPaid
	}

	s.debts[idx].Paid = true
	income := core.SettlementIncome(s.debts[idx], now)
	income.ID = s.nextIncomeID
	s.nextIncomeID++
	s.incomes = append(s.incomes, income)

	return s.debts[idx], income, nil
}

func (s *Store) InsertIncome(ctx context.Context, income core.Income) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	income.ID = s.nextIncomeID
	s.nextIncomeID++
	s.incomes = append(s.incomes, income)
	return income, nil
}

func (s *Store) ListIncomes(ctx context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Income, len(s.incomes))
	copy(out, s.incomes)
	return out, nil
}

func (s *Store) InsertCommission(ctx context.Context, commission core.Commission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commissions = append(s.commissions, commission)
	return nil
}

func (s *Store) ListCommissions(ctx context.Context, month string) ([]core.Commission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Commission
	for _, c := range s.commissions {
		if month == "" || c.Month == month {
			out = append(out, c)
		}
	}
	// newest first, matching the sqlite repository's ordering
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SumCommissionsByMonth(ctx context.Context) ([]core.MonthlySum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]int64)
	for _, c := range s.commissions {
		sums[c.Month] += c.Amount.Cents
	}
	out := make([]core.MonthlySum, 0, len(sums))
	for month, cents := range sums {
		out = append(out, core.MonthlySum{Month: month, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
