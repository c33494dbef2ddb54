package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/referral/model"
	"github.com/dlwnstjrzz/autobomber-website/pkg/database"
)

// PostgresRepository triển khai ReferralRepository với PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) ReferralRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `
	user_id, code, COALESCE(login_type, ''), owner_name, COALESCE(owner_email, ''),
	total_reward, usage_count, pending_withdrawal_amount, withdrawn_amount,
	created_at, last_rewarded_at, last_withdrawal_request_at, last_withdrawal_processed_at
`

func scanAccount(row pgx.Row) (*model.ReferralAccount, error) {
	var a model.ReferralAccount
	err := row.Scan(
		&a.UserID,
		&a.Code,
		&a.LoginType,
		&a.OwnerName,
		&a.OwnerEmail,
		&a.TotalReward,
		&a.UsageCount,
		&a.PendingWithdrawalAmount,
		&a.WithdrawnAmount,
		&a.CreatedAt,
		&a.LastRewardedAt,
		&a.LastWithdrawalRequestAt,
		&a.LastWithdrawalProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// -------------------------------------------------------------------
// ACCOUNTS
// -------------------------------------------------------------------

func (r *PostgresRepository) GetAccountByUserID(ctx context.Context, userID string) (*model.ReferralAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM referral_accounts WHERE user_id = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoAccount
		}
		return nil, fmt.Errorf("get referral account by user: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetAccountByCode(ctx context.Context, code string) (*model.ReferralAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM referral_accounts WHERE code = $1`

	account, err := scanAccount(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReferralNotFound
		}
		return nil, fmt.Errorf("get referral account by code: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referral_accounts WHERE code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check referral code exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreateAccount(ctx context.Context, account *model.ReferralAccount) error {
	query := `
		INSERT INTO referral_accounts (
			user_id, code, login_type, owner_name, owner_email,
			total_reward, usage_count, pending_withdrawal_amount, withdrawn_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, 0, 0, 0, 0, $6)
	`

	_, err := r.db.Exec(ctx, query,
		account.UserID,
		account.Code,
		account.LoginType,
		account.OwnerName,
		account.OwnerEmail,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create referral account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRewardedAccounts(ctx context.Context) ([]*model.ReferralAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM referral_accounts
		WHERE total_reward > 0 OR pending_withdrawal_amount > 0
		ORDER BY total_reward DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rewarded accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*model.ReferralAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rewarded account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// -------------------------------------------------------------------
// ATOMIC LEDGER MUTATIONS
// -------------------------------------------------------------------

// AddReward increments total_reward and usage_count in one statement.
func (r *PostgresRepository) AddReward(ctx context.Context, userID string, amount int64) error {
	query := `
		UPDATE referral_accounts
		SET total_reward = total_reward + $2,
		    usage_count = usage_count + 1,
		    last_rewarded_at = now()
		WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, amount)
	if err != nil {
		return fmt.Errorf("add reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNoAccount
	}
	return nil
}

// ReservePending atomically moves amount into the pending bucket,
// guarded by the available balance. Returns false when the balance is
// insufficient at execution time — the guard in the WHERE clause is
// what makes concurrent over-reservation impossible.
func (r *PostgresRepository) ReservePending(ctx context.Context, userID string, amount int64) (bool, error) {
	query := `
		UPDATE referral_accounts
		SET pending_withdrawal_amount = pending_withdrawal_amount + $2,
		    last_withdrawal_request_at = now()
		WHERE user_id = $1
		  AND total_reward - pending_withdrawal_amount - withdrawn_amount >= $2
	`

	tag, err := r.db.Exec(ctx, query, userID, amount)
	if err != nil {
		return false, fmt.Errorf("reserve pending withdrawal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReleasePending undoes a reservation (compensation when the request
// row could not be written). Floored at zero.
func (r *PostgresRepository) ReleasePending(ctx context.Context, userID string, amount int64) error {
	query := `
		UPDATE referral_accounts
		SET pending_withdrawal_amount = GREATEST(pending_withdrawal_amount - $2, 0)
		WHERE user_id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("release pending withdrawal: %w", err)
	}
	return nil
}

// -------------------------------------------------------------------
// USAGES
// -------------------------------------------------------------------

// CreateUsageIfAbsent inserts the usage record keyed on order_id.
// ON CONFLICT DO NOTHING makes duplicate payment callbacks a no-op;
// the return value reports whether this call actually inserted. A
// violation of the per-user unique index (a second order by the same
// purchaser racing past the eligibility check) is likewise reported as
// not-inserted rather than an error.
func (r *PostgresRepository) CreateUsageIfAbsent(ctx context.Context, usage *model.ReferralUsage) (bool, error) {
	query := `
		INSERT INTO referral_usages (
			order_id, user_id, login_type, referrer_user_id, referral_code,
			plan, amount, reward_amount, discount_rate, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query,
		usage.OrderID,
		usage.UserID,
		usage.LoginType,
		usage.ReferrerUserID,
		usage.ReferralCode,
		usage.Plan,
		usage.Amount,
		usage.RewardAmount,
		usage.DiscountRate,
		usage.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return false, nil
		}
		return false, fmt.Errorf("create referral usage: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) HasUsageByUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referral_usages WHERE user_id = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check referral usage by user: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListUsagesByReferrer(ctx context.Context, referrerUserID string, limit int) ([]*model.ReferralUsage, error) {
	query := `
		SELECT order_id, user_id, COALESCE(login_type, ''), referrer_user_id, referral_code,
		       plan, amount, reward_amount, discount_rate, created_at
		FROM referral_usages
		WHERE referrer_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, referrerUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list usages by referrer: %w", err)
	}
	defer rows.Close()

	var usages []*model.ReferralUsage
	for rows.Next() {
		var u model.ReferralUsage
		err := rows.Scan(
			&u.OrderID,
			&u.UserID,
			&u.LoginType,
			&u.ReferrerUserID,
			&u.ReferralCode,
			&u.Plan,
			&u.Amount,
			&u.RewardAmount,
			&u.DiscountRate,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan referral usage: %w", err)
		}
		usages = append(usages, &u)
	}
	return usages, rows.Err()
}

// -------------------------------------------------------------------
// WITHDRAWALS
// -------------------------------------------------------------------

const withdrawalColumns = `
	id, user_id, COALESCE(referral_code, ''), COALESCE(owner_name, ''), COALESCE(owner_email, ''),
	amount, account_number, account_holder, status, COALESCE(notes, ''), COALESCE(processed_by, ''),
	created_at, updated_at, processed_at
`

func scanWithdrawal(row pgx.Row) (*model.WithdrawalRequest, error) {
	var w model.WithdrawalRequest
	err := row.Scan(
		&w.ID,
		&w.UserID,
		&w.ReferralCode,
		&w.OwnerName,
		&w.OwnerEmail,
		&w.Amount,
		&w.AccountNumber,
		&w.AccountHolder,
		&w.Status,
		&w.Notes,
		&w.ProcessedBy,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepository) CreateWithdrawal(ctx context.Context, request *model.WithdrawalRequest) error {
	query := `
		INSERT INTO referral_withdrawals (
			id, user_id, referral_code, owner_name, owner_email,
			amount, account_number, account_holder, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`

	_, err := r.db.Exec(ctx, query,
		request.ID,
		request.UserID,
		request.ReferralCode,
		request.OwnerName,
		request.OwnerEmail,
		request.Amount,
		request.AccountNumber,
		request.AccountHolder,
		request.Status,
		request.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create withdrawal request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetWithdrawalByID(ctx context.Context, id uuid.UUID) (*model.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM referral_withdrawals WHERE id = $1`

	withdrawal, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("get withdrawal by id: %w", err)
	}
	return withdrawal, nil
}

func (r *PostgresRepository) ListWithdrawalsByUser(ctx context.Context, userID string, limit int) ([]*model.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM referral_withdrawals
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals by user: %w", err)
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

func (r *PostgresRepository) ListAllWithdrawals(ctx context.Context) ([]*model.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM referral_withdrawals ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all withdrawals: %w", err)
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

func collectWithdrawals(rows pgx.Rows) ([]*model.WithdrawalRequest, error) {
	var withdrawals []*model.WithdrawalRequest
	for rows.Next() {
		withdrawal, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, withdrawal)
	}
	return withdrawals, rows.Err()
}

// SettleWithdrawal transitions a pending request to its terminal
// status and settles the account counters in one transaction. The
// status = 'pending' guard makes the transition terminal: when two
// admins race, exactly one update lands and the loser gets false.
//
// On a completed decision the reserved amount lands in
// withdrawn_amount; a rejection only releases the reservation back to
// the available pool.
func (r *PostgresRepository) SettleWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus, processedBy, notes string) (bool, error) {
	markQuery := `
		UPDATE referral_withdrawals
		SET status = $2,
		    processed_by = $3,
		    notes = NULLIF($4, ''),
		    processed_at = now(),
		    updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING user_id, amount
	`

	settleQuery := `
		UPDATE referral_accounts
		SET pending_withdrawal_amount = GREATEST(pending_withdrawal_amount - $2, 0),
		    withdrawn_amount = withdrawn_amount + CASE WHEN $3 THEN $2 ELSE 0 END,
		    last_withdrawal_processed_at = now()
		WHERE user_id = $1
	`

	settled := false
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var userID string
		var amount int64
		err := tx.QueryRow(ctx, markQuery, id, status, processedBy, notes).Scan(&userID, &amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("mark withdrawal processed: %w", err)
		}

		completed := status == model.WithdrawalCompleted
		tag, err := tx.Exec(ctx, settleQuery, userID, amount, completed)
		if err != nil {
			return fmt.Errorf("settle withdrawal amounts: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrNoAccount
		}

		settled = true
		return nil
	})
	return settled, err
}
