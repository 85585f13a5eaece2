package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

type SecretRepository interface {
	Get(ctx context.Context, gymID int64) (*domain.GymSecret, error)
	// GetOrCreate inserts candidateSecret for the gym if no row exists yet
	// and returns whichever row won. Concurrent callers converge on one row.
	GetOrCreate(ctx context.Context, gymID int64, candidateSecret string) (*domain.GymSecret, error)
	// Rotate replaces the secret wholesale and re-enables QR check-in.
	// Previously issued payloads are invalid the instant this returns.
	Rotate(ctx context.Context, gymID int64, newSecret string) (*domain.GymSecret, error)
	SetEnabled(ctx context.Context, gymID int64, enabled bool) (*domain.GymSecret, error)
}

type secretRepository struct {
	pool *pgxpool.Pool
}

func NewSecretRepository(pool *pgxpool.Pool) SecretRepository {
	return &secretRepository{pool: pool}
}

const secretCols = `gym_id, secret, is_enabled, last_rotated_at, created_at, updated_at`

func scanSecret(row pgx.Row) (*domain.GymSecret, error) {
	var s domain.GymSecret
	err := row.Scan(&s.GymID, &s.Secret, &s.IsEnabled, &s.LastRotatedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *secretRepository) Get(ctx context.Context, gymID int64) (*domain.GymSecret, error) {
	const q = `SELECT ` + secretCols + ` FROM gym_qr_secrets WHERE gym_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSecret(r.pool.QueryRow(ctx, q, gymID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *secretRepository) GetOrCreate(ctx context.Context, gymID int64, candidateSecret string) (*domain.GymSecret, error) {
	const insert = `INSERT INTO gym_qr_secrets (gym_id, secret, is_enabled)
		VALUES ($1, $2, true)
		ON CONFLICT (gym_id) DO NOTHING`
	const q = `SELECT ` + secretCols + ` FROM gym_qr_secrets WHERE gym_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.pool.Exec(ctx, insert, gymID, candidateSecret); err != nil {
		return nil, err
	}
	return scanSecret(r.pool.QueryRow(ctx, q, gymID))
}

func (r *secretRepository) Rotate(ctx context.Context, gymID int64, newSecret string) (*domain.GymSecret, error) {
	const q = `UPDATE gym_qr_secrets
		SET secret=$2, is_enabled=true, last_rotated_at=now(), updated_at=now()
		WHERE gym_id=$1
		RETURNING ` + secretCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSecret(r.pool.QueryRow(ctx, q, gymID, newSecret))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *secretRepository) SetEnabled(ctx context.Context, gymID int64, enabled bool) (*domain.GymSecret, error) {
	const q = `UPDATE gym_qr_secrets
		SET is_enabled=$2, updated_at=now()
		WHERE gym_id=$1
		RETURNING ` + secretCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSecret(r.pool.QueryRow(ctx, q, gymID, enabled))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}
