package domain

type EligibilityReason string

const (
	ReasonMemberNotFound     EligibilityReason = "MEMBER_NOT_FOUND"
	ReasonWrongGym           EligibilityReason = "WRONG_GYM"
	ReasonMemberInactive     EligibilityReason = "MEMBER_INACTIVE"
	ReasonNoActiveMembership EligibilityReason = "NO_ACTIVE_MEMBERSHIP"
	ReasonPlanDisallowsQR    EligibilityReason = "PLAN_DISALLOWS_QR"
)

// EligibilityResult answers "may this member use QR self-check-in at this
// gym right now". Recomputed on every scan, never cached.
type EligibilityResult struct {
	Eligible bool              `json:"eligible"`
	Reason   EligibilityReason `json:"reason,omitempty"`
}

// Err maps a non-eligible result to its typed error, or nil when eligible.
func (r EligibilityResult) Err() error {
	if r.Eligible {
		return nil
	}
	switch r.Reason {
	case ReasonMemberNotFound:
		return ErrMemberNotFound
	case ReasonWrongGym:
		return ErrWrongGym
	case ReasonMemberInactive:
		return ErrMemberInactive
	case ReasonNoActiveMembership:
		return ErrNoActiveMembership
	case ReasonPlanDisallowsQR:
		return ErrPlanDisallowsQR
	default:
		return ErrMemberNotFound
	}
}
