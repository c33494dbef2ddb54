package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/discount/model"
)

type DiscountRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.DiscountCode, error)
	// Upsert replaces the user's coupon row. The caller decides
	// whether the existing one is still worth keeping.
	Upsert(ctx context.Context, code *model.DiscountCode) error
	// MarkUsed burns the coupon once a payment that redeemed it is
	// confirmed. Returns false when no matching unused coupon exists.
	MarkUsed(ctx context.Context, userID, code string) (bool, error)
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) DiscountRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*model.DiscountCode, error) {
	query := `
		SELECT user_id, code, COALESCE(login_type, ''), COALESCE(nickname, ''),
			discount_amount, original_price, discounted_price, is_used,
			status, created_at, expires_at
		FROM discount_codes
		WHERE user_id = $1`

	var d model.DiscountCode
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&d.UserID, &d.Code, &d.LoginType, &d.Nickname,
		&d.DiscountAmount, &d.OriginalPrice, &d.DiscountedPrice, &d.IsUsed,
		&d.Status, &d.CreatedAt, &d.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	return &d, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, code *model.DiscountCode) error {
	query := `
		INSERT INTO discount_codes (user_id, code, login_type, nickname,
			discount_amount, original_price, discounted_price, is_used,
			status, created_at, expires_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			code = EXCLUDED.code,
			nickname = EXCLUDED.nickname,
			discount_amount = EXCLUDED.discount_amount,
			original_price = EXCLUDED.original_price,
			discounted_price = EXCLUDED.discounted_price,
			is_used = EXCLUDED.is_used,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`

	_, err := r.db.Exec(ctx, query,
		code.UserID, code.Code, code.LoginType, code.Nickname,
		code.DiscountAmount, code.OriginalPrice, code.DiscountedPrice, code.IsUsed,
		code.Status, code.CreatedAt, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert discount code: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, userID, code string) (bool, error) {
	query := `
		UPDATE discount_codes
		SET is_used = true
		WHERE user_id = $1 AND code = $2 AND is_used = false`

	tag, err := r.db.Exec(ctx, query, userID, code)
	if err != nil {
		return false, fmt.Errorf("failed to mark discount code used: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
