// Package store is the durable ledger: accounts, categories, transactions,
// installment schedules, investment positions, and the salary singleton,
// backed by SQLite.
//
// Every mutation that touches both a transaction row and an account balance
// runs inside a single SQL transaction, so there is no observable state
// where a ledger entry exists without its balance effect or vice versa.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL,
	balance_cents INTEGER NOT NULL DEFAULT 0,
	color         TEXT NOT NULL DEFAULT '#3B82F6',
	created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS categories (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '#6B7280',
	icon       TEXT NOT NULL DEFAULT '💰',
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	UNIQUE (name, type)
);

CREATE TABLE IF NOT EXISTS transactions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id   INTEGER NOT NULL REFERENCES accounts(id),
	category_id  INTEGER REFERENCES categories(id),
	type         TEXT NOT NULL,
	amount_cents INTEGER NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	date         TEXT NOT NULL,
	created_at   TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);

CREATE TABLE IF NOT EXISTS installment_purchases (
	id                 TEXT PRIMARY KEY,
	description        TEXT NOT NULL,
	total_cents        INTEGER NOT NULL,
	installments_count INTEGER NOT NULL,
	installment_cents  INTEGER NOT NULL,
	start_date         TEXT NOT NULL,
	account_id         INTEGER NOT NULL REFERENCES accounts(id),
	category_id        INTEGER REFERENCES categories(id),
	status             TEXT NOT NULL DEFAULT 'active',
	created_at         TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS installment_payments (
	id             TEXT PRIMARY KEY,
	purchase_id    TEXT NOT NULL REFERENCES installment_purchases(id) ON DELETE CASCADE,
	number         INTEGER NOT NULL,
	amount_cents   INTEGER NOT NULL,
	due_date       TEXT NOT NULL,
	paid_date      TEXT,
	transaction_id INTEGER REFERENCES transactions(id) ON DELETE SET NULL,
	UNIQUE (purchase_id, number)
);

CREATE TABLE IF NOT EXISTS positions (
	id                  TEXT PRIMARY KEY,
	ticker              TEXT NOT NULL,
	name                TEXT NOT NULL,
	type                TEXT NOT NULL,
	quantity            TEXT NOT NULL,
	average_price       TEXT NOT NULL,
	total_invested      TEXT NOT NULL,
	current_price       TEXT,
	current_value       TEXT,
	profit_loss         TEXT,
	profit_loss_percent TEXT,
	notes               TEXT NOT NULL DEFAULT '',
	created_at          TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at          TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS salary_config (
	id              INTEGER PRIMARY KEY CHECK (id = 1),
	amount_cents    INTEGER NOT NULL,
	account_id      INTEGER NOT NULL REFERENCES accounts(id),
	category_id     INTEGER REFERENCES categories(id),
	last_paid_month TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// seedCategories is the closed reference list written on first run.
var seedCategories = []struct {
	name, flowType, color, icon string
}{
	{"Salário", "income", "#10B981", "💼"},
	{"Freelance", "income", "#10B981", "💻"},
	{"Investimentos", "income", "#10B981", "📈"},
	{"Presentes", "income", "#10B981", "🎁"},
	{"Outros", "income", "#10B981", "💰"},
	{"Alimentação", "expense", "#EF4444", "🍔"},
	{"Transporte", "expense", "#EF4444", "🚗"},
	{"Moradia", "expense", "#EF4444", "🏠"},
	{"Saúde", "expense", "#EF4444", "🏥"},
	{"Educação", "expense", "#EF4444", "📚"},
	{"Lazer", "expense", "#EF4444", "🎮"},
	{"Vestuário", "expense", "#EF4444", "👕"},
	{"Contas", "expense", "#EF4444", "💳"},
	{"Outros", "expense", "#EF4444", "💸"},
}

// Store provides persistent ledger state.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, ensures the schema,
// and seeds the default categories on first run.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The core has a single logical writer; one connection serializes the
	// installment-payment vs transaction-delete race on the same account.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seed(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, c := range seedCategories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO categories (name, type, color, icon) VALUES (?, ?, ?, ?)`,
			c.name, c.flowType, c.color, c.icon,
		); err != nil {
			return fmt.Errorf("seeding category %s: %w", c.name, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error. This is the single commit boundary required of every
// ledger mutation paired with a balance change.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// toCents converts a 2dp decimal amount to integer cents.
// Returns false when the amount carries sub-cent precision.
func toCents(d decimal.Decimal) (int64, bool) {
	scaled := d.Mul(hundred)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, false
	}
	return scaled.IntPart(), true
}

// fromCents converts integer cents back to a decimal amount.
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

const timestampLayout = "2006-01-02 15:04:05"

// parseTimestamp reads a datetime('now') TEXT column.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// nullDecimal reads an optional TEXT decimal column.
func nullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("parsing stored decimal %q: %w", ns.String, err)
	}
	return &d, nil
}

// decimalString writes an optional decimal as a nullable TEXT value.
func decimalString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
