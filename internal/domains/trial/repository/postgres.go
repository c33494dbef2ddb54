package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dlwnstjrzz/autobomber-website/internal/domains/trial/model"
)

type TrialRepository interface {
	GetByUserID(ctx context.Context, userID string) (*model.Trial, error)
	GetByCode(ctx context.Context, code string) (*model.Trial, error)
	// CreateIfAbsent inserts the trial unless the user already has one.
	// Returns false when an existing row blocked the insert.
	CreateIfAbsent(ctx context.Context, trial *model.Trial) (bool, error)
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) TrialRepository {
	return &PostgresRepository{db: db}
}

const trialColumns = `code, user_id, COALESCE(login_type, ''), COALESCE(nickname, ''),
	COALESCE(email, ''), COALESCE(profile_image, ''), status, created_at, expires_at`

func scanTrial(row pgx.Row) (*model.Trial, error) {
	var t model.Trial
	err := row.Scan(&t.Code, &t.UserID, &t.LoginType, &t.Nickname,
		&t.Email, &t.ProfileImage, &t.Status, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*model.Trial, error) {
	query := fmt.Sprintf(`SELECT %s FROM trials WHERE user_id = $1`, trialColumns)

	trial, err := scanTrial(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTrialNotFound
		}
		return nil, fmt.Errorf("failed to get trial: %w", err)
	}
	return trial, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*model.Trial, error) {
	query := fmt.Sprintf(`SELECT %s FROM trials WHERE code = $1`, trialColumns)

	trial, err := scanTrial(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTrialNotFound
		}
		return nil, fmt.Errorf("failed to get trial: %w", err)
	}
	return trial, nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, trial *model.Trial) (bool, error) {
	query := `
		INSERT INTO trials (code, user_id, login_type, nickname, email,
			profile_image, status, created_at, expires_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		trial.Code, trial.UserID, trial.LoginType, trial.Nickname, trial.Email,
		trial.ProfileImage, trial.Status, trial.CreatedAt, trial.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to create trial: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
