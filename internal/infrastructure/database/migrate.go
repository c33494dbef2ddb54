package database

import (
	"context"
	"fmt"
	"log"
)

// Schema for all collections used by the referral ledger and the
// code-issuance domains. Monetary values are whole KRW in BIGINT;
// the CHECK constraints keep every counter non-negative so the
// ledger invariant cannot go silently negative under concurrent
// increments.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS referral_accounts (
		user_id                      TEXT PRIMARY KEY,
		code                         TEXT NOT NULL UNIQUE,
		login_type                   TEXT,
		owner_name                   TEXT NOT NULL,
		owner_email                  TEXT,
		total_reward                 BIGINT NOT NULL DEFAULT 0 CHECK (total_reward >= 0),
		usage_count                  INT NOT NULL DEFAULT 0 CHECK (usage_count >= 0),
		pending_withdrawal_amount    BIGINT NOT NULL DEFAULT 0 CHECK (pending_withdrawal_amount >= 0),
		withdrawn_amount             BIGINT NOT NULL DEFAULT 0 CHECK (withdrawn_amount >= 0),
		created_at                   TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_rewarded_at             TIMESTAMPTZ,
		last_withdrawal_request_at   TIMESTAMPTZ,
		last_withdrawal_processed_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS referral_usages (
		order_id         TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		login_type       TEXT,
		referrer_user_id TEXT NOT NULL,
		referral_code    TEXT NOT NULL,
		plan             TEXT NOT NULL,
		amount           BIGINT NOT NULL CHECK (amount > 0),
		reward_amount    BIGINT NOT NULL CHECK (reward_amount >= 0),
		discount_rate    NUMERIC(4,2) NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	// One redemption per purchaser, lifetime. Closes the window where
	// two orders by the same buyer race past the credit-time check.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_referral_usages_user ON referral_usages (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_referral_usages_referrer ON referral_usages (referrer_user_id)`,

	`CREATE TABLE IF NOT EXISTS referral_withdrawals (
		id             UUID PRIMARY KEY,
		user_id        TEXT NOT NULL,
		referral_code  TEXT,
		owner_name     TEXT,
		owner_email    TEXT,
		amount         BIGINT NOT NULL CHECK (amount > 0),
		account_number TEXT NOT NULL,
		account_holder TEXT NOT NULL,
		status         TEXT NOT NULL DEFAULT 'pending',
		notes          TEXT,
		processed_by   TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		processed_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_referral_withdrawals_user ON referral_withdrawals (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_referral_withdrawals_status ON referral_withdrawals (status)`,

	`CREATE TABLE IF NOT EXISTS licenses (
		code        TEXT PRIMARY KEY,
		order_id    TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		login_type  TEXT,
		plan        TEXT NOT NULL,
		amount      BIGINT,
		status      TEXT NOT NULL DEFAULT 'active',
		payment_key TEXT,
		buyer_name  TEXT,
		buyer_email TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at  TIMESTAMPTZ NOT NULL,
		UNIQUE (order_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS trials (
		code          TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL UNIQUE,
		login_type    TEXT,
		nickname      TEXT,
		email         TEXT,
		profile_image TEXT,
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at    TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS discount_codes (
		user_id          TEXT PRIMARY KEY,
		code             TEXT NOT NULL,
		login_type       TEXT,
		nickname         TEXT,
		discount_amount  BIGINT NOT NULL,
		original_price   BIGINT NOT NULL,
		discounted_price BIGINT NOT NULL,
		is_used          BOOLEAN NOT NULL DEFAULT false,
		status           TEXT NOT NULL DEFAULT 'active',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at       TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate chạy toàn bộ schema migrations (idempotent)
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	log.Println("[DATABASE] Running schema migrations...")

	for i, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Printf("[DATABASE] Migrations complete (%d statements)", len(migrations))
	return nil
}
