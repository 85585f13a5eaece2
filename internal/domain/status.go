package domain

type AttendanceStatus string

const (
	StatusInGym        AttendanceStatus = "in_gym"
	StatusCheckedOut   AttendanceStatus = "checked_out"
	StatusNotCheckedIn AttendanceStatus = "not_checked_in"
)

// TodayStatus is the member-facing answer to "am I checked in right now",
// evaluated over the gym's local civil day.
type TodayStatus struct {
	Status  AttendanceStatus   `json:"status"`
	Session *AttendanceSession `json:"session,omitempty"`
}
