package domain

import "time"

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// Member is the directory view this service needs: who they are, which
// gym they belong to, and whether the account is active. The full member
// profile lives with the members module.
type Member struct {
	ID         int64        `json:"id"`
	GymID      int64        `json:"gym_id"`
	ExternalID string       `json:"external_id"`
	Name       string       `json:"name"`
	Status     MemberStatus `json:"status"`
}

// Membership is an active plan subscription; only the fields the
// eligibility check reads are surfaced.
type Membership struct {
	ID       int64     `json:"id"`
	MemberID int64     `json:"member_id"`
	StartsOn time.Time `json:"starts_on"`
	EndsOn   time.Time `json:"ends_on"`
	Plan     Plan      `json:"plan"`
}

type Plan struct {
	ID                  int64 `json:"id"`
	QRAttendanceEnabled bool  `json:"qr_attendance_enabled"`
}

// Gym carries the per-gym civil day offset used for "today" boundaries.
type Gym struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	UTCOffsetMinutes int    `json:"utc_offset_minutes"`
}

// Location returns the gym's fixed-offset timezone.
func (g *Gym) Location() *time.Location {
	return time.FixedZone("gym-local", g.UTCOffsetMinutes*60)
}
