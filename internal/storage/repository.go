// Package storage is the sqlite persistence layer. Timestamps are stored
// as unix seconds so comparisons and ordering never depend on driver
// string formatting.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"floatdesk/internal/auth"
	"floatdesk/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Lookup implements auth.UserStore.
func (r *SQLiteRepository) Lookup(ctx context.Context, username string) (auth.User, error) {
	var (
		id   int64
		user auth.User
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role FROM users WHERE username = ?`,
		username,
	).Scan(&id, &user.Username, &user.PasswordHash, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, core.ErrNotFound
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("lookup user: %w", err)
	}
	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}

// EnsureAdminUser creates the admin account on first start. An existing
// account is left untouched so a changed env password never silently
// rewrites credentials.
func (r *SQLiteRepository) EnsureAdminUser(ctx context.Context, username, password string) error {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, string(hash), core.RoleAdmin,
	); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	slog.InfoContext(ctx, "Seeded admin user", "username", username)
	return nil
}

func (r *SQLiteRepository) ListChannelBalances(ctx context.Context) ([]core.ChannelBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT channel, amount_cents, trend, last_updated FROM channel_balances ORDER BY channel`)
	if err != nil {
		return nil, fmt.Errorf("list channel balances: %w", err)
	}
	defer rows.Close()

	var out []core.ChannelBalance
	for rows.Next() {
		var (
			b       core.ChannelBalance
			updated int64
		)
		if err := rows.Scan(&b.Channel, &b.Amount.Cents, &b.Trend, &updated); err != nil {
			return nil, fmt.Errorf("scan channel balance: %w", err)
		}
		b.LastUpdated = time.Unix(updated, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetChannelBalance(ctx context.Context, channel string) (core.ChannelBalance, error) {
	var (
		b       core.ChannelBalance
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT channel, amount_cents, trend, last_updated FROM channel_balances WHERE channel = ?`,
		channel,
	).Scan(&b.Channel, &b.Amount.Cents, &b.Trend, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ChannelBalance{}, core.ErrNotFound
	}
	if err != nil {
		return core.ChannelBalance{}, fmt.Errorf("get channel balance: %w", err)
	}
	b.LastUpdated = time.Unix(updated, 0).UTC()
	return b, nil
}

func (r *SQLiteRepository) UpsertChannelBalance(ctx context.Context, balance core.ChannelBalance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO channel_balances (channel, amount_cents, trend, last_updated)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(channel) DO UPDATE SET
		   amount_cents = excluded.amount_cents,
		   trend = excluded.trend,
		   last_updated = excluded.last_updated`,
		balance.Channel, balance.Amount.Cents, balance.Trend, balance.LastUpdated.Unix())
	if err != nil {
		return fmt.Errorf("upsert channel balance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCashAtHand(ctx context.Context) (core.CashAtHand, error) {
	var (
		cash    core.CashAtHand
		updated int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT amount_cents, updated_at FROM cash_at_hand WHERE id = 1`,
	).Scan(&cash.Amount.Cents, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CashAtHand{}, core.ErrNotFound
	}
	if err != nil {
		return core.CashAtHand{}, fmt.Errorf("get cash at hand: %w", err)
	}
	cash.UpdatedAt = time.Unix(updated, 0).UTC()
	return cash, nil
}

func (r *SQLiteRepository) SetCashAtHand(ctx context.Context, cash core.CashAtHand) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cash_at_hand SET amount_cents = ?, updated_at = ? WHERE id = 1`,
		cash.Amount.Cents, cash.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("set cash at hand: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) InsertDebt(ctx context.Context, debt core.Debt) (core.Debt, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO debts (debtor, amount_cents, date_incurred, paid) VALUES (?, ?, ?, 0)`,
		debt.Debtor, debt.Amount.Cents, debt.DateIncurred.Unix())
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Debt{}, fmt.Errorf("debt insert id: %w", err)
	}
	debt.ID = id
	debt.Paid = false
	return debt, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, debtor, amount_cents, date_incurred, paid FROM debts ORDER BY date_incurred DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		var (
			d        core.Debt
			incurred int64
			paid     int64
		)
		if err := rows.Scan(&d.ID, &d.Debtor, &d.Amount.Cents, &incurred, &paid); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		d.DateIncurred = time.Unix(incurred, 0).UTC()
		d.Paid = paid != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

// SettleDebt flips the debt and appends the settlement income in a single
// transaction. The conditional UPDATE is what serializes concurrent
// settles: whichever transaction commits first wins the row, the loser
// sees zero rows affected and reports core.ErrDebtAlreadyPaid.
func (r *SQLiteRepository) SettleDebt(ctx context.Context, id int64, now time.Time) (core.Debt, core.Income, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("begin settle tx: %w", err)
	}
	defer tx.Rollback()

	var (
		debt     core.Debt
		incurred int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, debtor, amount_cents, date_incurred FROM debts WHERE id = ?`, id,
	).Scan(&debt.ID, &debt.Debtor, &debt.Amount.Cents, &incurred)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("load debt: %w", err)
	}
	debt.DateIncurred = time.Unix(incurred, 0).UTC()

	res, err := tx.ExecContext(ctx,
		`UPDATE debts SET paid = 1 WHERE id = ? AND paid = 0`, id)
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("mark debt paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("settle rows affected: %w", err)
	}
	if affected == 0 {
		return core.Debt{}, core.Income{}, core.ErrDebtAlreadyPaid
	}
	debt.Paid = true

	income := core.SettlementIncome(debt, now)
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO incomes (description, amount_cents, date) VALUES (?, ?, ?)`,
		income.Description, income.Amount.Cents, income.Date.Unix())
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("insert settlement income: %w", err)
	}
	incomeID, err := ins.LastInsertId()
	if err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("settlement income id: %w", err)
	}
	income.ID = incomeID

	if err := tx.Commit(); err != nil {
		return core.Debt{}, core.Income{}, fmt.Errorf("commit settle tx: %w", err)
	}
	return debt, income, nil
}

func (r *SQLiteRepository) InsertIncome(ctx context.Context, income core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (description, amount_cents, date) VALUES (?, ?, ?)`,
		income.Description, income.Amount.Cents, income.Date.Unix())
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income insert id: %w", err)
	}
	income.ID = id
	return income, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, date FROM incomes ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			i    core.Income
			date int64
		)
		if err := rows.Scan(&i.ID, &i.Description, &i.Amount.Cents, &date); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		i.Date = time.Unix(date, 0).UTC()
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertCommission(ctx context.Context, commission core.Commission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commissions (id, service, amount_cents, month, created_at) VALUES (?, ?, ?, ?, ?)`,
		commission.ID, commission.Service, commission.Amount.Cents, commission.Month, commission.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCommissions(ctx context.Context, month string) ([]core.Commission, error) {
	query := `SELECT id, service, amount_cents, month, created_at FROM commissions`
	args := []any{}
	if month != "" {
		query += ` WHERE month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()

	var out []core.Commission
	for rows.Next() {
		var (
			c       core.Commission
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Service, &c.Amount.Cents, &c.Month, &created); err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		c.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SumCommissionsByMonth(ctx context.Context) ([]core.MonthlySum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, SUM(amount_cents) FROM commissions GROUP BY month ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("sum commissions by month: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlySum
	for rows.Next() {
		var s core.MonthlySum
		if err := rows.Scan(&s.Month, &s.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan monthly sum: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
