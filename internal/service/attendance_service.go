package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gymsaathiide/gymaccess/internal/domain"
	"github.com/gymsaathiide/gymaccess/internal/repository"
	"github.com/gymsaathiide/gymaccess/pkg/config"
	"github.com/gymsaathiide/gymaccess/pkg/events"
	"github.com/gymsaathiide/gymaccess/pkg/logger"
)

// AttendanceService is the state machine between scan/checkout events and
// the session ledger. Per (gym, member) pair the derived states are: no
// open session, an open session younger than the max duration, and an open
// session older than it, which is auto-closed before any decision is made.
type AttendanceService interface {
	HandleScan(ctx context.Context, identity, rawPayload string) (*domain.AttendanceSession, error)
	HandleCheckout(ctx context.Context, identity string) (*domain.AttendanceSession, error)
	TodayStatus(ctx context.Context, identity string) (*domain.TodayStatus, error)
	ListTodaySessions(ctx context.Context, gymID int64) ([]domain.AttendanceSession, error)
}

type attendanceService struct {
	sessions    repository.SessionRepository
	members     repository.MemberRepository
	gyms        repository.GymRepository
	secrets     repository.SecretRepository
	eligibility EligibilityChecker
	bus         events.Publisher
	cfg         *config.Config
	now         func() time.Time
}

func NewAttendanceService(
	sessions repository.SessionRepository,
	members repository.MemberRepository,
	gyms repository.GymRepository,
	secrets repository.SecretRepository,
	eligibility EligibilityChecker,
	bus events.Publisher,
	cfg *config.Config,
) AttendanceService {
	return &attendanceService{
		sessions:    sessions,
		members:     members,
		gyms:        gyms,
		secrets:     secrets,
		eligibility: eligibility,
		bus:         bus,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *attendanceService) HandleScan(ctx context.Context, identity, rawPayload string) (*domain.AttendanceSession, error) {
	payload, err := domain.ParseQRPayload(rawPayload)
	if err != nil {
		return nil, err
	}

	secret, err := s.secrets.Get(ctx, payload.GymID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gym secret: %w", err)
	}
	if secret == nil {
		return nil, domain.ErrQRNotConfigured
	}

	// A rotated-away secret and a forged one look identical to the caller.
	if !secretsEqual(secret.Secret, payload.Secret) {
		return nil, domain.ErrInvalidQR
	}
	if !secret.IsEnabled {
		return nil, domain.ErrQRDisabled
	}

	member, err := s.members.FindByIdentityAtGym(ctx, identity, payload.GymID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrNotAMemberHere
	}

	now := s.now()
	result, err := s.eligibility.Check(ctx, member.ID, payload.GymID, now)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	open, err := s.resolveStale(ctx, payload.GymID, member.ID, now)
	if err != nil {
		return nil, err
	}
	if open != nil {
		// A second scan is not a checkout; leaving is a distinct action.
		return nil, domain.ErrAlreadyInGym
	}

	session, err := s.sessions.Open(ctx, payload.GymID, member.ID, now, domain.OriginQRScan)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOpenSession) {
			// Lost the race to a concurrent scan. The racing writer already
			// produced the state this caller wanted, so report it as such.
			return nil, domain.ErrAlreadyInGym
		}
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	logger.InfoContext(ctx, "Member checked in",
		"gym_id", session.GymID, "member_id", session.MemberID, "session_id", session.ID)

	event := events.CheckedInEvent{
		SessionID: session.ID,
		GymID:     session.GymID,
		MemberID:  session.MemberID,
		CheckInAt: session.CheckInAt,
		Origin:    string(session.OriginSource),
	}
	if err := s.bus.Publish(ctx, events.MemberCheckedIn, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish checked-in event", "error", err, "session_id", session.ID)
	}

	return session, nil
}

func (s *attendanceService) HandleCheckout(ctx context.Context, identity string) (*domain.AttendanceSession, error) {
	member, err := s.members.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrMemberNotFound
	}

	now := s.now()
	open, err := s.resolveStale(ctx, member.GymID, member.ID, now)
	if err != nil {
		return nil, err
	}
	if open == nil {
		// "Never checked in" and "just auto-closed" read the same here.
		return nil, domain.ErrNotInGym
	}

	session, err := s.sessions.Close(ctx, open.ID, now, domain.CloseManual)
	if err != nil {
		return nil, fmt.Errorf("failed to close session: %w", err)
	}

	logger.InfoContext(ctx, "Member checked out",
		"gym_id", session.GymID, "member_id", session.MemberID, "session_id", session.ID)

	s.publishCheckedOut(ctx, events.MemberCheckedOut, session)

	return session, nil
}

func (s *attendanceService) TodayStatus(ctx context.Context, identity string) (*domain.TodayStatus, error) {
	member, err := s.members.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	if member == nil {
		return nil, domain.ErrMemberNotFound
	}

	now := s.now()
	open, err := s.resolveStale(ctx, member.GymID, member.ID, now)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return &domain.TodayStatus{Status: domain.StatusInGym, Session: open}, nil
	}

	from, to, err := s.gymDayBounds(ctx, member.GymID, now)
	if err != nil {
		return nil, err
	}
	closed, err := s.sessions.LatestClosedBetween(ctx, member.GymID, member.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's sessions: %w", err)
	}
	if closed == nil {
		return &domain.TodayStatus{Status: domain.StatusNotCheckedIn}, nil
	}
	return &domain.TodayStatus{Status: domain.StatusCheckedOut, Session: closed}, nil
}

func (s *attendanceService) ListTodaySessions(ctx context.Context, gymID int64) ([]domain.AttendanceSession, error) {
	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up gym: %w", err)
	}
	if gym == nil {
		return nil, domain.ErrGymNotFound
	}

	from, to := dayBounds(s.now(), gym.Location())
	sessions, err := s.sessions.ListBetween(ctx, gymID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// resolveStale loads the pair's open session and lazily reconciles it: an
// open session older than the max duration is closed with reason auto and
// a checkout backdated to check-in plus the max duration, so recorded
// visit lengths stay bounded. There is no sweeper; abandoned sessions
// decay the next time anyone asks about the pair.
func (s *attendanceService) resolveStale(ctx context.Context, gymID, memberID int64, now time.Time) (*domain.AttendanceSession, error) {
	open, err := s.sessions.FindOpen(ctx, gymID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}
	if open == nil {
		return nil, nil
	}
	if !open.IsStaleAt(now, s.cfg.Attendance.SessionMaxDuration) {
		return open, nil
	}

	checkOutAt := open.CheckInAt.Add(s.cfg.Attendance.SessionMaxDuration)
	closed, err := s.sessions.Close(ctx, open.ID, checkOutAt, domain.CloseAuto)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-close stale session: %w", err)
	}

	logger.InfoContext(ctx, "Auto-closed stale session",
		"gym_id", gymID, "member_id", memberID, "session_id", open.ID,
		"check_in_at", open.CheckInAt)

	s.publishCheckedOut(ctx, events.SessionAutoClosed, closed)

	return nil, nil
}

func (s *attendanceService) publishCheckedOut(ctx context.Context, subject string, session *domain.AttendanceSession) {
	if session == nil || session.CheckOutAt == nil || session.CloseReason == nil {
		return
	}
	event := events.CheckedOutEvent{
		SessionID:  session.ID,
		GymID:      session.GymID,
		MemberID:   session.MemberID,
		CheckInAt:  session.CheckInAt,
		CheckOutAt: *session.CheckOutAt,
		Reason:     string(*session.CloseReason),
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish checkout event", "error", err, "session_id", session.ID)
	}
}

// gymDayBounds computes the gym-local civil day containing now. Gyms that
// cannot be resolved fall back to the configured default offset.
func (s *attendanceService) gymDayBounds(ctx context.Context, gymID int64, now time.Time) (time.Time, time.Time, error) {
	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to look up gym: %w", err)
	}

	loc := time.FixedZone("gym-local", s.cfg.Attendance.DefaultUTCOffsetMinutes*60)
	if gym != nil {
		loc = gym.Location()
	}
	from, to := dayBounds(now, loc)
	return from, to, nil
}

func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour)
}
