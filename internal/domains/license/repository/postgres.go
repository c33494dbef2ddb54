package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/license/model"
)

// LicenseRepository - Interface cho license data access
type LicenseRepository interface {
	GetByOrderAndUser(ctx context.Context, orderID, userID string) (*model.License, error)
	GetByCode(ctx context.Context, code string) (*model.License, error)
	ListByUser(ctx context.Context, userID string) ([]*model.License, error)
	Create(ctx context.Context, license *model.License) error
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) LicenseRepository {
	return &PostgresRepository{db: db}
}

const licenseColumns = `code, order_id, user_id, COALESCE(login_type, ''), plan,
	COALESCE(amount, 0), status, COALESCE(payment_key, ''),
	COALESCE(buyer_name, ''), COALESCE(buyer_email, ''), created_at, expires_at`

func scanLicense(row pgx.Row) (*model.License, error) {
	var l model.License
	err := row.Scan(&l.Code, &l.OrderID, &l.UserID, &l.LoginType, &l.Plan,
		&l.Amount, &l.Status, &l.PaymentKey, &l.BuyerName, &l.BuyerEmail,
		&l.CreatedAt, &l.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PostgresRepository) GetByOrderAndUser(ctx context.Context, orderID, userID string) (*model.License, error) {
	query := fmt.Sprintf(`SELECT %s FROM licenses WHERE order_id = $1 AND user_id = $2`, licenseColumns)

	license, err := scanLicense(r.db.QueryRow(ctx, query, orderID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return license, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*model.License, error) {
	query := fmt.Sprintf(`SELECT %s FROM licenses WHERE code = $1`, licenseColumns)

	license, err := scanLicense(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return license, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*model.License, error) {
	query := fmt.Sprintf(`SELECT %s FROM licenses WHERE user_id = $1 ORDER BY created_at DESC`, licenseColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}
	defer rows.Close()

	var licenses []*model.License
	for rows.Next() {
		license, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, license)
	}
	return licenses, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, license *model.License) error {
	query := `
		INSERT INTO licenses (code, order_id, user_id, login_type, plan, amount,
			status, payment_key, buyer_name, buyer_email, created_at, expires_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''),
			NULLIF($9, ''), NULLIF($10, ''), $11, $12)`

	_, err := r.db.Exec(ctx, query,
		license.Code, license.OrderID, license.UserID, license.LoginType,
		license.Plan, license.Amount, license.Status, license.PaymentKey,
		license.BuyerName, license.BuyerEmail, license.CreatedAt, license.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create license: %w", err)
	}
	return nil
}
