package domain

import "errors"

// Error is a business outcome with a stable machine code and a short
// human message. Handlers map codes to HTTP statuses; clients switch on
// the code, people read the message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

var (
	// ErrInvalidQR covers malformed payloads and secret mismatches alike;
	// the caller must not be able to tell which part failed.
	ErrInvalidQR = &Error{Code: "INVALID_QR", Message: "Invalid QR code."}

	ErrQRNotConfigured = &Error{Code: "QR_NOT_CONFIGURED", Message: "QR check-in is not set up for this gym."}
	ErrQRDisabled      = &Error{Code: "QR_DISABLED", Message: "QR check-in is currently disabled for this gym."}
	ErrNotAMemberHere  = &Error{Code: "NOT_A_MEMBER_HERE", Message: "You are not a member of this gym."}

	ErrMemberNotFound     = &Error{Code: "MEMBER_NOT_FOUND", Message: "Member not found."}
	ErrWrongGym           = &Error{Code: "WRONG_GYM", Message: "This QR code belongs to a different gym."}
	ErrMemberInactive     = &Error{Code: "MEMBER_INACTIVE", Message: "Your membership account is inactive."}
	ErrNoActiveMembership = &Error{Code: "NO_ACTIVE_MEMBERSHIP", Message: "You have no active membership."}
	ErrPlanDisallowsQR    = &Error{Code: "PLAN_DISALLOWS_QR", Message: "Your plan does not include QR check-in."}

	ErrAlreadyInGym = &Error{Code: "ALREADY_IN_GYM", Message: "You are already checked in. Use the Check Out button to leave."}
	ErrNotInGym     = &Error{Code: "NOT_IN_GYM", Message: "You are not currently checked in."}

	ErrGymNotFound = &Error{Code: "GYM_NOT_FOUND", Message: "Gym not found."}
)

// ErrDuplicateOpenSession is the ledger's report that a concurrent insert
// already opened a session for the same (gym, member) pair. The controller
// reinterprets it as ErrAlreadyInGym; it never reaches a caller directly.
var ErrDuplicateOpenSession = errors.New("duplicate open session")
