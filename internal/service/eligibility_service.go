package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gymsaathiide/gymaccess/internal/domain"
	"github.com/gymsaathiide/gymaccess/internal/repository"
)

// EligibilityChecker gates QR self-check-in. It is stateless and has no
// side effects; every scan re-runs the full check.
type EligibilityChecker interface {
	Check(ctx context.Context, memberID, gymID int64, asOf time.Time) (domain.EligibilityResult, error)
}

type eligibilityChecker struct {
	members repository.MemberRepository
}

func NewEligibilityChecker(members repository.MemberRepository) EligibilityChecker {
	return &eligibilityChecker{members: members}
}

func (c *eligibilityChecker) Check(ctx context.Context, memberID, gymID int64, asOf time.Time) (domain.EligibilityResult, error) {
	member, err := c.members.FindByID(ctx, memberID)
	if err != nil {
		return domain.EligibilityResult{}, fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return domain.EligibilityResult{Reason: domain.ReasonMemberNotFound}, nil
	}
	if member.GymID != gymID {
		return domain.EligibilityResult{Reason: domain.ReasonWrongGym}, nil
	}
	if member.Status != domain.MemberActive {
		return domain.EligibilityResult{Reason: domain.ReasonMemberInactive}, nil
	}

	membership, err := c.members.FindActiveMembership(ctx, memberID, asOf)
	if err != nil {
		return domain.EligibilityResult{}, fmt.Errorf("failed to look up membership: %w", err)
	}
	if membership == nil {
		return domain.EligibilityResult{Reason: domain.ReasonNoActiveMembership}, nil
	}
	if !membership.Plan.QRAttendanceEnabled {
		return domain.EligibilityResult{Reason: domain.ReasonPlanDisallowsQR}, nil
	}

	return domain.EligibilityResult{Eligible: true}, nil
}
