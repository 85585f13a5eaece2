package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

// MemberRepository reads the member and membership directories owned by
// the members module. This service never writes those tables.
type MemberRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Member, error)
	// FindByIdentity resolves a caller identity to their member record,
	// regardless of gym. Used by checkout and status, which carry no gym.
	FindByIdentity(ctx context.Context, externalID string) (*domain.Member, error)
	// FindByIdentityAtGym resolves a caller identity scoped to one gym.
	// Used by the scan path so another gym's members come back empty.
	FindByIdentityAtGym(ctx context.Context, externalID string, gymID int64) (*domain.Member, error)
	// FindActiveMembership returns the membership whose date range contains
	// asOf, with its plan's QR entitlement joined in, or nil.
	FindActiveMembership(ctx context.Context, memberID int64, asOf time.Time) (*domain.Membership, error)
}

type memberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberCols = `id, gym_id, external_id, name, status`

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.GymID, &m.ExternalID, &m.Name, &m.Status)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) FindByID(ctx context.Context, id int64) (*domain.Member, error) {
	const q = `SELECT ` + memberCols + ` FROM members WHERE id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m, err := scanMember(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *memberRepository) FindByIdentity(ctx context.Context, externalID string) (*domain.Member, error) {
	const q = `SELECT ` + memberCols + ` FROM members WHERE external_id=$1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m, err := scanMember(r.pool.QueryRow(ctx, q, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *memberRepository) FindByIdentityAtGym(ctx context.Context, externalID string, gymID int64) (*domain.Member, error) {
	const q = `SELECT ` + memberCols + ` FROM members WHERE external_id=$1 AND gym_id=$2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m, err := scanMember(r.pool.QueryRow(ctx, q, externalID, gymID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *memberRepository) FindActiveMembership(ctx context.Context, memberID int64, asOf time.Time) (*domain.Membership, error) {
	const q = `SELECT m.id, m.member_id, m.starts_on, m.ends_on, p.id, p.qr_attendance_enabled
		FROM memberships m
		JOIN plans p ON p.id = m.plan_id
		WHERE m.member_id=$1 AND m.status='active'
		AND m.starts_on <= $2::date AND m.ends_on >= $2::date
		ORDER BY m.ends_on DESC LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var ms domain.Membership
	err := r.pool.QueryRow(ctx, q, memberID, asOf).Scan(
		&ms.ID, &ms.MemberID, &ms.StartsOn, &ms.EndsOn,
		&ms.Plan.ID, &ms.Plan.QRAttendanceEnabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ms, nil
}
