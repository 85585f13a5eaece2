package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

// SessionRepository is the sole writer of attendance_sessions rows.
// The "at most one open session per (gym, member)" invariant is enforced
// by the storage layer, not here:
//
//	create unique index attendance_sessions_one_open
//	    on attendance_sessions (gym_id, member_id) where state = 'open';
//
// Two concurrent Opens can both observe no open session; the index makes
// exactly one insert win and the loser surfaces domain.ErrDuplicateOpenSession.
type SessionRepository interface {
	FindOpen(ctx context.Context, gymID, memberID int64) (*domain.AttendanceSession, error)
	Open(ctx context.Context, gymID, memberID int64, checkInAt time.Time, origin domain.OriginSource) (*domain.AttendanceSession, error)
	Close(ctx context.Context, sessionID int64, checkOutAt time.Time, reason domain.CloseReason) (*domain.AttendanceSession, error)
	ListBetween(ctx context.Context, gymID int64, from, to time.Time) ([]domain.AttendanceSession, error)
	LatestClosedBetween(ctx context.Context, gymID, memberID int64, from, to time.Time) (*domain.AttendanceSession, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

const sessionCols = `id, gym_id, member_id, check_in_at, check_out_at,
state, close_reason, origin_source, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.AttendanceSession, error) {
	var s domain.AttendanceSession
	err := row.Scan(
		&s.ID, &s.GymID, &s.MemberID, &s.CheckInAt, &s.CheckOutAt,
		&s.State, &s.CloseReason, &s.OriginSource, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) FindOpen(ctx context.Context, gymID, memberID int64) (*domain.AttendanceSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM attendance_sessions
		WHERE gym_id=$1 AND member_id=$2 AND state='open'
		ORDER BY check_in_at DESC LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSession(r.pool.QueryRow(ctx, q, gymID, memberID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepository) Open(ctx context.Context, gymID, memberID int64, checkInAt time.Time, origin domain.OriginSource) (*domain.AttendanceSession, error) {
	const q = `INSERT INTO attendance_sessions (gym_id, member_id, check_in_at, state, origin_source)
		VALUES ($1, $2, $3, 'open', $4)
		RETURNING ` + sessionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSession(r.pool.QueryRow(ctx, q, gymID, memberID, checkInAt, origin))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateOpenSession
		}
		return nil, err
	}
	return s, nil
}

// Close sets the checkout fields only while the session is still open.
// Re-closing an already-closed session is a no-op that returns the stored
// row, so checkout times never change once written.
func (r *sessionRepository) Close(ctx context.Context, sessionID int64, checkOutAt time.Time, reason domain.CloseReason) (*domain.AttendanceSession, error) {
	const q = `UPDATE attendance_sessions
		SET check_out_at=$2, close_reason=$3, state='closed', updated_at=now()
		WHERE id=$1 AND state='open'
		RETURNING ` + sessionCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSession(r.pool.QueryRow(ctx, q, sessionID, checkOutAt, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.getByID(ctx, sessionID)
	}
	return s, err
}

func (r *sessionRepository) getByID(ctx context.Context, sessionID int64) (*domain.AttendanceSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM attendance_sessions WHERE id=$1`

	s, err := scanSession(r.pool.QueryRow(ctx, q, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *sessionRepository) ListBetween(ctx context.Context, gymID int64, from, to time.Time) ([]domain.AttendanceSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM attendance_sessions
		WHERE gym_id=$1 AND check_in_at >= $2 AND check_in_at < $3
		ORDER BY check_in_at DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, gymID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.AttendanceSession
	for rows.Next() {
		var s domain.AttendanceSession
		if err := rows.Scan(
			&s.ID, &s.GymID, &s.MemberID, &s.CheckInAt, &s.CheckOutAt,
			&s.State, &s.CloseReason, &s.OriginSource, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) LatestClosedBetween(ctx context.Context, gymID, memberID int64, from, to time.Time) (*domain.AttendanceSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM attendance_sessions
		WHERE gym_id=$1 AND member_id=$2 AND state='closed'
		AND check_in_at >= $3 AND check_in_at < $4
		ORDER BY check_in_at DESC LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanSession(r.pool.QueryRow(ctx, q, gymID, memberID, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}
