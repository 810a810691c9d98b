package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"floatdesk/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEnsureAdminUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.EnsureAdminUser(ctx, "admin", "secret"); err != nil {
		t.Fatalf("EnsureAdminUser failed: %v", err)
	}

	user, err := repo.Lookup(ctx, "admin")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if user.Role != core.RoleAdmin {
		t.Errorf("expected role %q, got %q", core.RoleAdmin, user.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	// a second call with a different password must not rewrite the account
	if err := repo.EnsureAdminUser(ctx, "admin", "other"); err != nil {
		t.Fatalf("second EnsureAdminUser failed: %v", err)
	}
	again, err := repo.Lookup(ctx, "admin")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if again.PasswordHash != user.PasswordHash {
		t.Error("expected existing password hash to be preserved")
	}

	if _, err := repo.Lookup(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChannelBalanceRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	balance := core.ChannelBalance{
		Channel:     "M-Pesa",
		Amount:      core.Money{Cents: 123456},
		Trend:       12.5,
		LastUpdated: now,
	}
	if err := repo.UpsertChannelBalance(ctx, balance); err != nil {
		t.Fatalf("UpsertChannelBalance failed: %v", err)
	}

	got, err := repo.GetChannelBalance(ctx, "M-Pesa")
	if err != nil {
		t.Fatalf("GetChannelBalance failed: %v", err)
	}
	if got.Amount.Cents != 123456 || got.Trend != 12.5 {
		t.Errorf("unexpected balance: %+v", got)
	}
	if !got.LastUpdated.Equal(now) {
		t.Errorf("expected LastUpdated %v, got %v", now, got.LastUpdated)
	}

	// upsert over the same channel replaces, never duplicates
	balance.Amount.Cents = 200000
	if err := repo.UpsertChannelBalance(ctx, balance); err != nil {
		t.Fatalf("second UpsertChannelBalance failed: %v", err)
	}
	list, err := repo.ListChannelBalances(ctx)
	if err != nil {
		t.Fatalf("ListChannelBalances failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 balance, got %d", len(list))
	}
	if list[0].Amount.Cents != 200000 {
		t.Errorf("expected updated amount, got %d", list[0].Amount.Cents)
	}

	if _, err := repo.GetChannelBalance(ctx, "Airtel"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCashAtHandSingleton(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// migration seeds the zero row
	cash, err := repo.GetCashAtHand(ctx)
	if err != nil {
		t.Fatalf("GetCashAtHand failed: %v", err)
	}
	if cash.Amount.Cents != 0 {
		t.Errorf("expected zero initial cash, got %d", cash.Amount.Cents)
	}

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	if err := repo.SetCashAtHand(ctx, core.CashAtHand{Amount: core.Money{Cents: -7500}, UpdatedAt: now}); err != nil {
		t.Fatalf("SetCashAtHand failed: %v", err)
	}

	cash, err = repo.GetCashAtHand(ctx)
	if err != nil {
		t.Fatalf("GetCashAtHand failed: %v", err)
	}
	if cash.Amount.Cents != -7500 {
		t.Errorf("expected -7500, got %d", cash.Amount.Cents)
	}
	if !cash.UpdatedAt.Equal(now) {
		t.Errorf("expected UpdatedAt %v, got %v", now, cash.UpdatedAt)
	}
}

func TestSettleDebtTransactional(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.InsertDebt(ctx, core.Debt{
		Debtor:       "John Doe",
		Amount:       core.Money{Cents: 25000},
		DateIncurred: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("InsertDebt failed: %v", err)
	}

	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	debt, income, err := repo.SettleDebt(ctx, created.ID, now)
	if err != nil {
		t.Fatalf("SettleDebt failed: %v", err)
	}
	if !debt.Paid {
		t.Error("expected debt marked paid")
	}
	if income.Description != "Debt repayment from John Doe" {
		t.Errorf("unexpected income description: %q", income.Description)
	}
	if income.Amount.Cents != 25000 {
		t.Errorf("expected income of 25000, got %d", income.Amount.Cents)
	}
	if income.ID == 0 {
		t.Error("expected a persisted income id")
	}

	if _, _, err := repo.SettleDebt(ctx, created.ID, now); !errors.Is(err, core.ErrDebtAlreadyPaid) {
		t.Fatalf("expected ErrDebtAlreadyPaid, got %v", err)
	}
	if _, _, err := repo.SettleDebt(ctx, 9999, now); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	incomes, err := repo.ListIncomes(ctx)
	if err != nil {
		t.Fatalf("ListIncomes failed: %v", err)
	}
	if len(incomes) != 1 {
		t.Errorf("expected exactly one income, got %d", len(incomes))
	}
}

func TestCommissionsMonthFilterAndSums(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []core.Commission{
		{ID: "a", Service: "M-Pesa", Amount: core.Money{Cents: 1000}, Month: "2025-05"},
		{ID: "b", Service: "Airtel", Amount: core.Money{Cents: 2500}, Month: "2025-06"},
		{ID: "c", Service: "M-Pesa", Amount: core.Money{Cents: 500}, Month: "2025-06"},
	} {
		c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := repo.InsertCommission(ctx, c); err != nil {
			t.Fatalf("InsertCommission failed: %v", err)
		}
	}

	june, err := repo.ListCommissions(ctx, "2025-06")
	if err != nil {
		t.Fatalf("ListCommissions failed: %v", err)
	}
	if len(june) != 2 {
		t.Fatalf("expected 2 commissions for 2025-06, got %d", len(june))
	}
	if june[0].ID != "c" {
		t.Errorf("expected newest commission first, got %q", june[0].ID)
	}

	sums, err := repo.SumCommissionsByMonth(ctx)
	if err != nil {
		t.Fatalf("SumCommissionsByMonth failed: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 monthly sums, got %d", len(sums))
	}
	if sums[0].Month != "2025-05" || sums[0].Total.Cents != 1000 {
		t.Errorf("unexpected first sum: %+v", sums[0])
	}
	if sums[1].Month != "2025-06" || sums[1].Total.Cents != 3000 {
		t.Errorf("unexpected second sum: %+v", sums[1])
	}
}
