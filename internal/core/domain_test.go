package core

import (
	"errors"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestChannelBalanceValidate(t *testing.T) {
	good := ChannelBalance{Channel: "MTN", Amount: Money{Cents: 0}}
	if err := good.Validate(); err != nil {
		t.Fatalf("zero balance should be allowed, got %v", err)
	}

	cases := []struct {
		b    ChannelBalance
		want error
	}{
		{ChannelBalance{Channel: "", Amount: Money{Cents: 100}}, ErrEmptyChannel},
		{ChannelBalance{Channel: "   ", Amount: Money{Cents: 100}}, ErrEmptyChannel},
		{ChannelBalance{Channel: "MTN", Amount: Money{Cents: -1}}, ErrNegativeAmount},
	}
	for i, tc := range cases {
		if err := tc.b.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: want %v, got %v", i, tc.want, err)
		}
	}
}

func TestDebtValidate(t *testing.T) {
	good := Debt{Debtor: "Asha", Amount: Money{Cents: 1000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		d    Debt
		want error
	}{
		{Debt{Debtor: "", Amount: Money{Cents: 1000}}, ErrEmptyDebtor},
		{Debt{Debtor: "Asha", Amount: Money{Cents: 0}}, ErrInvalidAmount},
		{Debt{Debtor: "Asha", Amount: Money{Cents: -100}}, ErrInvalidAmount},
	}
	for i, tc := range cases {
		if err := tc.d.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: want %v, got %v", i, tc.want, err)
		}
	}
}

func TestIncomeValidate(t *testing.T) {
	if err := (Income{Description: "float top-up", Amount: Money{Cents: 500}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Income{Description: "", Amount: Money{Cents: 500}}).Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription")
	}
	if err := (Income{Description: "x", Amount: Money{Cents: 0}}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount")
	}
}

func TestValidateMonth(t *testing.T) {
	cases := []struct {
		month string
		ok    bool
	}{
		{"2025-01", true},
		{"2025-12", true},
		{"2025-00", false},
		{"2025-13", false},
		{"2025-1", false},
		{"202501", false},
		{"abcd-ef", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidateMonth(tc.month)
		if tc.ok && err != nil {
			t.Fatalf("%q: expected ok, got %v", tc.month, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.month)
		}
	}
}

func TestCommissionValidate(t *testing.T) {
	good := Commission{Service: "airtime", Amount: Money{Cents: 250}, Month: "2025-08"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Commission{
		{Service: "", Amount: Money{Cents: 250}, Month: "2025-08"},
		{Service: "airtime", Amount: Money{Cents: 0}, Month: "2025-08"},
		{Service: "airtime", Amount: Money{Cents: 250}, Month: "2025-13"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrEmptyDebtor) {
		t.Fatalf("ErrEmptyDebtor should be a validation error")
	}
	if IsValidation(ErrNotFound) || IsValidation(ErrDebtAlreadyPaid) || IsValidation(ErrUnauthorized) {
		t.Fatalf("lookup/conflict/auth errors must not be validation errors")
	}
}

func TestSettlementIncome(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	d := Debt{ID: 7, Debtor: "Asha", Amount: Money{Cents: 3000}}
	inc := SettlementIncome(d, now)
	if inc.Description != "Debt repayment from Asha" {
		t.Fatalf("unexpected description %q", inc.Description)
	}
	if inc.Amount.Cents != 3000 {
		t.Fatalf("settlement amount must equal debt amount, got %d", inc.Amount.Cents)
	}
	if !inc.Date.Equal(now) {
		t.Fatalf("unexpected date %v", inc.Date)
	}
}
