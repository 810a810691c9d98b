package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"floatdesk/internal/core"
	"floatdesk/internal/storage/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, nil)
	return svc, store
}

func TestSetChannelBalanceTrend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 10000})
	if err != nil {
		t.Fatalf("first SetChannelBalance failed: %v", err)
	}
	if first.Trend != 0 {
		t.Errorf("expected zero trend for first write, got %v", first.Trend)
	}

	second, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 15000})
	if err != nil {
		t.Fatalf("second SetChannelBalance failed: %v", err)
	}
	if second.Trend != 50 {
		t.Errorf("expected trend 50, got %v", second.Trend)
	}

	third, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 7500})
	if err != nil {
		t.Fatalf("third SetChannelBalance failed: %v", err)
	}
	if third.Trend != -50 {
		t.Errorf("expected trend -50, got %v", third.Trend)
	}
}

func TestSetChannelBalanceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		channel string
		amount  core.Money
		wantErr error
	}{
		{"empty channel", "", core.Money{Cents: 100}, core.ErrEmptyChannel},
		{"negative amount", "M-Pesa", core.Money{Cents: -100}, core.ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetChannelBalance(ctx, tt.channel, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// a zero balance is a valid state for an emptied channel
	if _, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 0}); err != nil {
		t.Errorf("expected zero balance to be accepted, got %v", err)
	}
}

func TestSetChannelBalanceUpdatesLastUpdated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	first, err := svc.SetChannelBalance(ctx, "Airtel", core.Money{Cents: 5000})
	if err != nil {
		t.Fatalf("SetChannelBalance failed: %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	second, err := svc.SetChannelBalance(ctx, "Airtel", core.Money{Cents: 6000})
	if err != nil {
		t.Fatalf("SetChannelBalance failed: %v", err)
	}

	if !second.LastUpdated.After(first.LastUpdated) {
		t.Errorf("expected LastUpdated to advance, got %v then %v", first.LastUpdated, second.LastUpdated)
	}
}

func TestRecordDebtValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RecordDebt(ctx, "", core.Money{Cents: 1000}); !errors.Is(err, core.ErrEmptyDebtor) {
		t.Errorf("expected ErrEmptyDebtor, got %v", err)
	}
	if _, err := svc.RecordDebt(ctx, "John", core.Money{Cents: 0}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSettleDebt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.RecordDebt(ctx, "John Doe", core.Money{Cents: 25000})
	if err != nil {
		t.Fatalf("RecordDebt failed: %v", err)
	}

	debt, income, err := svc.SettleDebt(ctx, created.ID)
	if err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}
	if !debt.Paid {
		t.Error("expected debt to be marked paid")
	}
	if income.Description != "Debt repayment from John Doe" {
		t.Errorf("unexpected income description: %q", income.Description)
	}
	if income.Amount.Cents != 25000 {
		t.Errorf("expected income of 25000 cents, got %d", income.Amount.Cents)
	}

	// second settle must not credit a second income
	if _, _, err := svc.SettleDebt(ctx, created.ID); !errors.Is(err, core.ErrDebtAlreadyPaid) {
		t.Fatalf("expected ErrDebtAlreadyPaid, got %v", err)
	}

	incomes, err := svc.store.ListIncomes(ctx)
	if err != nil {
		t.Fatalf("ListIncomes failed: %v", err)
	}
	if len(incomes) != 1 {
		t.Errorf("expected exactly one income after double settle, got %d", len(incomes))
	}
}

func TestSettleDebtNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, _, err := svc.SettleDebt(context.Background(), 42); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettleDebtRestoresTotalBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 100000}); err != nil {
		t.Fatalf("SetChannelBalance failed: %v", err)
	}

	agg, err := svc.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	before := agg.TotalBalance()

	debt, err := svc.RecordDebt(ctx, "Jane", core.Money{Cents: 13500})
	if err != nil {
		t.Fatalf("RecordDebt failed: %v", err)
	}

	agg, err = svc.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := agg.TotalBalance(); got.Cents != before.Cents-13500 {
		t.Errorf("expected total to drop by 13500, got %d", got.Cents)
	}

	if _, _, err := svc.SettleDebt(ctx, debt.ID); err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}

	agg, err = svc.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got := agg.TotalBalance(); got.Cents != before.Cents {
		t.Errorf("expected total restored to %d after settle, got %d", before.Cents, got.Cents)
	}
}

func TestSetCashAtHandAllowsNegative(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetCashAtHand(ctx, core.Money{Cents: -5000}); err != nil {
		t.Fatalf("SetCashAtHand failed: %v", err)
	}

	agg, err := svc.Aggregate(ctx)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if agg.Cash.Amount.Cents != -5000 {
		t.Errorf("expected cash -5000, got %d", agg.Cash.Amount.Cents)
	}
}

func TestRecordCommission(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.RecordCommission(ctx, "M-Pesa", core.Money{Cents: 4200}, "2025-06")
	if err != nil {
		t.Fatalf("RecordCommission failed: %v", err)
	}
	if c.ID == "" {
		t.Error("expected a generated commission id")
	}

	if _, err := svc.RecordCommission(ctx, "Airtel", core.Money{Cents: 100}, "2025-13"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := svc.RecordCommission(ctx, "", core.Money{Cents: 100}, "2025-06"); !errors.Is(err, core.ErrEmptyService) {
		t.Errorf("expected ErrEmptyService, got %v", err)
	}
}

func TestListCommissionsByMonth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, c := range []struct {
		service string
		cents   int64
		month   string
	}{
		{"M-Pesa", 1000, "2025-05"},
		{"M-Pesa", 2000, "2025-06"},
		{"Airtel", 3000, "2025-06"},
	} {
		if _, err := svc.RecordCommission(ctx, c.service, core.Money{Cents: c.cents}, c.month); err != nil {
			t.Fatalf("RecordCommission failed: %v", err)
		}
	}

	june, err := svc.ListCommissions(ctx, "2025-06")
	if err != nil {
		t.Fatalf("ListCommissions failed: %v", err)
	}
	if len(june) != 2 {
		t.Errorf("expected 2 commissions for 2025-06, got %d", len(june))
	}

	all, err := svc.ListCommissions(ctx, "")
	if err != nil {
		t.Fatalf("ListCommissions failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 commissions, got %d", len(all))
	}

	if _, err := svc.ListCommissions(ctx, "June 2025"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestDashboardStats(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SetChannelBalance(ctx, "M-Pesa", core.Money{Cents: 50000}); err != nil {
		t.Fatalf("SetChannelBalance failed: %v", err)
	}
	if _, err := svc.SetChannelBalance(ctx, "Airtel", core.Money{Cents: 30000}); err != nil {
		t.Fatalf("SetChannelBalance failed: %v", err)
	}
	if err := svc.SetCashAtHand(ctx, core.Money{Cents: 20000}); err != nil {
		t.Fatalf("SetCashAtHand failed: %v", err)
	}
	debt, err := svc.RecordDebt(ctx, "John", core.Money{Cents: 10000})
	if err != nil {
		t.Fatalf("RecordDebt failed: %v", err)
	}
	if _, err := svc.RecordDebt(ctx, "Jane", core.Money{Cents: 5000}); err != nil {
		t.Fatalf("RecordDebt failed: %v", err)
	}
	if _, _, err := svc.SettleDebt(ctx, debt.ID); err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}
	if _, err := svc.RecordCommission(ctx, "M-Pesa", core.Money{Cents: 1500}, "2025-06"); err != nil {
		t.Fatalf("RecordCommission failed: %v", err)
	}
	if _, err := svc.RecordCommission(ctx, "Airtel", core.Money{Cents: 500}, "2025-07"); err != nil {
		t.Fatalf("RecordCommission failed: %v", err)
	}

	stats, err := svc.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats failed: %v", err)
	}

	// 50000 + 30000 + 20000 - 5000 unpaid + 10000 settlement income
	if stats.TotalBalance.Cents != 105000 {
		t.Errorf("expected total 105000, got %d", stats.TotalBalance.Cents)
	}
	if stats.ChannelCount != 2 {
		t.Errorf("expected 2 channels, got %d", stats.ChannelCount)
	}
	if stats.OutstandingDebt.Cents != 5000 {
		t.Errorf("expected outstanding debt 5000, got %d", stats.OutstandingDebt.Cents)
	}
	if stats.UnpaidDebtCount != 1 || stats.DebtCount != 2 {
		t.Errorf("expected 1 unpaid of 2 debts, got %d of %d", stats.UnpaidDebtCount, stats.DebtCount)
	}
	if stats.CommissionTotal.Cents != 2000 {
		t.Errorf("expected commission total 2000, got %d", stats.CommissionTotal.Cents)
	}
	if len(stats.MonthlyCommissions) != 2 {
		t.Errorf("expected 2 monthly sums, got %d", len(stats.MonthlyCommissions))
	}
}
