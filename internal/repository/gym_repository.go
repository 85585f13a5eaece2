package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

type GymRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Gym, error)
}

type gymRepository struct {
	pool *pgxpool.Pool
}

func NewGymRepository(pool *pgxpool.Pool) GymRepository {
	return &gymRepository{pool: pool}
}

func (r *gymRepository) GetByID(ctx context.Context, id int64) (*domain.Gym, error) {
	const q = `SELECT id, name, utc_offset_minutes FROM gyms WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var g domain.Gym
	err := r.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name, &g.UTCOffsetMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
