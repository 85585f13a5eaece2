package service

import (
	"context"
	"sync"
	"time"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

// ---------- Mocks ----------

// mockSessionRepo enforces the same uniqueness contract as the partial
// unique index: a second open insert for a pair fails with
// domain.ErrDuplicateOpenSession.
type mockSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*domain.AttendanceSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		nextID:   1,
		sessions: make(map[int64]*domain.AttendanceSession),
	}
}

func (m *mockSessionRepo) FindOpen(_ context.Context, gymID, memberID int64) (*domain.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findOpenLocked(gymID, memberID), nil
}

func (m *mockSessionRepo) findOpenLocked(gymID, memberID int64) *domain.AttendanceSession {
	var newest *domain.AttendanceSession
	for _, s := range m.sessions {
		if s.GymID == gymID && s.MemberID == memberID && s.State == domain.SessionOpen {
			if newest == nil || s.CheckInAt.After(newest.CheckInAt) {
				newest = s
			}
		}
	}
	if newest == nil {
		return nil
	}
	copied := *newest
	return &copied
}

func (m *mockSessionRepo) Open(_ context.Context, gymID, memberID int64, checkInAt time.Time, origin domain.OriginSource) (*domain.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findOpenLocked(gymID, memberID) != nil {
		return nil, domain.ErrDuplicateOpenSession
	}

	id := m.nextID
	m.nextID++
	s := &domain.AttendanceSession{
		ID:           id,
		GymID:        gymID,
		MemberID:     memberID,
		CheckInAt:    checkInAt,
		State:        domain.SessionOpen,
		OriginSource: origin,
		CreatedAt:    checkInAt,
		UpdatedAt:    checkInAt,
	}
	m.sessions[id] = s
	copied := *s
	return &copied, nil
}

func (m *mockSessionRepo) Close(_ context.Context, sessionID int64, checkOutAt time.Time, reason domain.CloseReason) (*domain.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if s.State == domain.SessionOpen {
		s.State = domain.SessionClosed
		s.CheckOutAt = &checkOutAt
		s.CloseReason = &reason
		s.UpdatedAt = checkOutAt
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessionRepo) ListBetween(_ context.Context, gymID int64, from, to time.Time) ([]domain.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.AttendanceSession
	for _, s := range m.sessions {
		if s.GymID == gymID && !s.CheckInAt.Before(from) && s.CheckInAt.Before(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) LatestClosedBetween(_ context.Context, gymID, memberID int64, from, to time.Time) (*domain.AttendanceSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newest *domain.AttendanceSession
	for _, s := range m.sessions {
		if s.GymID != gymID || s.MemberID != memberID || s.State != domain.SessionClosed {
			continue
		}
		if s.CheckInAt.Before(from) || !s.CheckInAt.Before(to) {
			continue
		}
		if newest == nil || s.CheckInAt.After(newest.CheckInAt) {
			newest = s
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (m *mockSessionRepo) openCount(gymID, memberID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, s := range m.sessions {
		if s.GymID == gymID && s.MemberID == memberID && s.State == domain.SessionOpen {
			count++
		}
	}
	return count
}

func (m *mockSessionRepo) get(id int64) *domain.AttendanceSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied
	}
	return nil
}

type mockMemberRepo struct {
	members     []*domain.Member
	memberships map[int64][]*domain.Membership
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{memberships: make(map[int64][]*domain.Membership)}
}

func (m *mockMemberRepo) FindByID(_ context.Context, id int64) (*domain.Member, error) {
	for _, mb := range m.members {
		if mb.ID == id {
			return mb, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) FindByIdentity(_ context.Context, externalID string) (*domain.Member, error) {
	for _, mb := range m.members {
		if mb.ExternalID == externalID {
			return mb, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) FindByIdentityAtGym(_ context.Context, externalID string, gymID int64) (*domain.Member, error) {
	for _, mb := range m.members {
		if mb.ExternalID == externalID && mb.GymID == gymID {
			return mb, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) FindActiveMembership(_ context.Context, memberID int64, asOf time.Time) (*domain.Membership, error) {
	for _, ms := range m.memberships[memberID] {
		if !asOf.Before(ms.StartsOn) && !asOf.After(ms.EndsOn) {
			return ms, nil
		}
	}
	return nil, nil
}

type mockSecretRepo struct {
	mu      sync.Mutex
	secrets map[int64]*domain.GymSecret
}

func newMockSecretRepo() *mockSecretRepo {
	return &mockSecretRepo{secrets: make(map[int64]*domain.GymSecret)}
}

func (m *mockSecretRepo) Get(_ context.Context, gymID int64) (*domain.GymSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.secrets[gymID]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (m *mockSecretRepo) GetOrCreate(_ context.Context, gymID int64, candidateSecret string) (*domain.GymSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.secrets[gymID]; ok {
		copied := *s
		return &copied, nil
	}
	now := time.Now()
	s := &domain.GymSecret{
		GymID:     gymID,
		Secret:    candidateSecret,
		IsEnabled: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.secrets[gymID] = s
	copied := *s
	return &copied, nil
}

func (m *mockSecretRepo) Rotate(_ context.Context, gymID int64, newSecret string) (*domain.GymSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[gymID]
	if !ok {
		return nil, nil
	}
	now := time.Now()
	s.Secret = newSecret
	s.IsEnabled = true
	s.LastRotatedAt = &now
	s.UpdatedAt = now
	copied := *s
	return &copied, nil
}

func (m *mockSecretRepo) SetEnabled(_ context.Context, gymID int64, enabled bool) (*domain.GymSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[gymID]
	if !ok {
		return nil, nil
	}
	s.IsEnabled = enabled
	s.UpdatedAt = time.Now()
	copied := *s
	return &copied, nil
}

type mockGymRepo struct {
	gyms map[int64]*domain.Gym
}

func newMockGymRepo() *mockGymRepo {
	return &mockGymRepo{gyms: make(map[int64]*domain.Gym)}
}

func (m *mockGymRepo) GetByID(_ context.Context, id int64) (*domain.Gym, error) {
	if g, ok := m.gyms[id]; ok {
		return g, nil
	}
	return nil, nil
}

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published(subject string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subjects {
		if s == subject {
			return true
		}
	}
	return false
}
