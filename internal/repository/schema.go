package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Decimal columns are TEXT on sqlite so amounts keep their exact digits.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS credits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		credit_name TEXT NOT NULL,
		principal_amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		base_rate_indicator TEXT NOT NULL,
		base_rate_value TEXT NOT NULL,
		credit_spread TEXT NOT NULL,
		payment_frequency TEXT NOT NULL,
		payment_type TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payment_schedules (
		id TEXT PRIMARY KEY,
		credit_id INTEGER NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
		period_number INTEGER NOT NULL,
		period_start_date TIMESTAMP NOT NULL,
		period_end_date TIMESTAMP NOT NULL,
		payment_date TIMESTAMP NOT NULL,
		outstanding_balance TEXT NOT NULL,
		interest_amount TEXT NOT NULL,
		principal_amount TEXT NOT NULL,
		total_payment TEXT NOT NULL,
		period_days INTEGER NOT NULL,
		interest_rate TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_schedules_credit ON payment_schedules (credit_id, period_number)`,
	`CREATE TABLE IF NOT EXISTS scenarios (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		scenario_type TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rate_forecasts (
		scenario_id INTEGER NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		forecast_date TIMESTAMP NOT NULL,
		rate_value TEXT NOT NULL,
		indicator TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS rate_history (
		indicator TEXT NOT NULL,
		effective_date TIMESTAMP NOT NULL,
		rate TEXT NOT NULL,
		PRIMARY KEY (indicator, effective_date)
	)`,
	`CREATE TABLE IF NOT EXISTS hedging_instruments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		instrument_type TEXT NOT NULL,
		parameters TEXT NOT NULL
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS credits (
		id BIGSERIAL PRIMARY KEY,
		credit_name VARCHAR(255) NOT NULL,
		principal_amount NUMERIC(20,2) NOT NULL,
		currency VARCHAR(3) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		base_rate_indicator VARCHAR(16) NOT NULL,
		base_rate_value NUMERIC(9,4) NOT NULL,
		credit_spread NUMERIC(9,4) NOT NULL,
		payment_frequency VARCHAR(16) NOT NULL,
		payment_type VARCHAR(16) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (end_date > start_date),
		CHECK (principal_amount > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS payment_schedules (
		id UUID PRIMARY KEY,
		credit_id BIGINT NOT NULL REFERENCES credits(id) ON DELETE CASCADE,
		period_number INTEGER NOT NULL,
		period_start_date DATE NOT NULL,
		period_end_date DATE NOT NULL,
		payment_date DATE NOT NULL,
		outstanding_balance NUMERIC(20,2) NOT NULL,
		interest_amount NUMERIC(20,2) NOT NULL,
		principal_amount NUMERIC(20,2) NOT NULL,
		total_payment NUMERIC(20,2) NOT NULL,
		period_days INTEGER NOT NULL,
		interest_rate NUMERIC(9,4) NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payment_schedules_credit ON payment_schedules (credit_id, period_number)`,
	`CREATE TABLE IF NOT EXISTS scenarios (
		id BIGSERIAL PRIMARY KEY,
		owner_id BIGINT NOT NULL DEFAULT 0,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		scenario_type VARCHAR(16) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rate_forecasts (
		scenario_id BIGINT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		forecast_date DATE NOT NULL,
		rate_value NUMERIC(9,4) NOT NULL,
		indicator VARCHAR(16) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS rate_history (
		indicator VARCHAR(16) NOT NULL,
		effective_date DATE NOT NULL,
		rate NUMERIC(9,4) NOT NULL,
		PRIMARY KEY (indicator, effective_date)
	)`,
	`CREATE TABLE IF NOT EXISTS hedging_instruments (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		instrument_type VARCHAR(16) NOT NULL,
		parameters JSONB NOT NULL
	)`,
}

// Migrate creates the tables for the connected driver if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch driver := db.DriverName(); {
	case strings.HasPrefix(driver, "sqlite"):
		stmts = sqliteSchema
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			return fmt.Errorf("enable foreign keys: %w", err)
		}
	case driver == "postgres":
		stmts = postgresSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
