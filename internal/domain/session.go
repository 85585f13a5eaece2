package domain

import "time"

type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

type CloseReason string

const (
	CloseManual CloseReason = "manual"
	CloseAuto   CloseReason = "auto"
)

type OriginSource string

const (
	OriginQRScan OriginSource = "qr_scan"
	OriginManual OriginSource = "manual"
)

// AttendanceSession is one physical gym visit, open while the member is
// believed to be inside. Rows are the permanent attendance audit log and
// are never deleted.
type AttendanceSession struct {
	ID           int64        `json:"id"`
	GymID        int64        `json:"gym_id"`
	MemberID     int64        `json:"member_id"`
	CheckInAt    time.Time    `json:"check_in_at"`
	CheckOutAt   *time.Time   `json:"check_out_at,omitempty"`
	State        SessionState `json:"state"`
	CloseReason  *CloseReason `json:"close_reason,omitempty"`
	OriginSource OriginSource `json:"origin_source"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsStaleAt reports whether an open session has outlived maxDuration and
// must be auto-closed before any decision is made against it.
func (s *AttendanceSession) IsStaleAt(now time.Time, maxDuration time.Duration) bool {
	return s.State == SessionOpen && now.Sub(s.CheckInAt) > maxDuration
}
