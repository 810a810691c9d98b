package core

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// RoleAdmin is the single role tag carried by issued credentials.
	RoleAdmin = "admin"
)

type (
	// ChannelBalance is the float held on one named mobile-money channel.
	// Trend is the signed percentage change against the previous amount.
	ChannelBalance struct {
		Channel     string    `json:"channel"`
		Amount      Money     `json:"amount"`
		Trend       float64   `json:"trend"`
		LastUpdated time.Time `json:"lastUpdated"`
	}

	// CashAtHand is the single scalar amount held outside any channel.
	// A negative amount is allowed and reflects a float shortfall.
	CashAtHand struct {
		Amount    Money     `json:"amount"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Debt is money owed to the float. Once paid it no longer counts as a
	// liability and is immutable; there is no unpay operation.
	Debt struct {
		ID           int64     `json:"id"`
		Debtor       string    `json:"debtor"`
		Amount       Money     `json:"amount"`
		DateIncurred time.Time `json:"dateIncurred"`
		Paid         bool      `json:"paid"`
	}

	// Income is an append-only earnings record.
	Income struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
	}

	// Commission is a monthly per-service commission entry. It is a
	// reporting-only record and never feeds the total balance.
	Commission struct {
		ID        string    `json:"id"`
		Service   string    `json:"service"`
		Amount    Money     `json:"amount"`
		Month     string    `json:"month"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// MonthlySum is one bucket of the commissions group-by-month sum.
	MonthlySum struct {
		Month string `json:"month"`
		Total Money  `json:"total"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrEmptyChannel       = errors.New("empty channel name")
	ErrEmptyDebtor        = errors.New("empty debtor name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyService       = errors.New("empty service name")
	ErrInvalidMonth       = errors.New("invalid month, expected YYYY-MM")
	ErrNotFound           = errors.New("not found")
	ErrDebtAlreadyPaid    = errors.New("debt already paid")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// IsValidation reports whether err belongs to the input-validation family,
// as opposed to lookup, conflict, or auth failures.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAmount, ErrNegativeAmount, ErrEmptyChannel, ErrEmptyDebtor,
		ErrEmptyDescription, ErrEmptyService, ErrInvalidMonth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidateMonth checks the YYYY-MM commission month key.
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return ErrInvalidMonth
	}
	m, err := strconv.Atoi(month[5:])
	if err != nil || m < 1 || m > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (b ChannelBalance) Validate() error {
	if strings.TrimSpace(b.Channel) == "" {
		return ErrEmptyChannel
	}
	if b.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Debtor) == "" {
		return ErrEmptyDebtor
	}
	return d.Amount.Validate()
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	return i.Amount.Validate()
}

func (c Commission) Validate() error {
	if strings.TrimSpace(c.Service) == "" {
		return ErrEmptyService
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	return ValidateMonth(c.Month)
}

// SettlementIncome builds the income record that settling a debt appends.
// This is the one cross-stream rule in the system, so it has one definition.
func SettlementIncome(d Debt, now time.Time) Income {
	return Income{
		Description: "Debt repayment from " + d.Debtor,
		Amount:      d.Amount,
		Date:        now,
	}
}
