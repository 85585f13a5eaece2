package service

import (
	"context"
	"testing"
	"time"

	"github.com/gymsaathiide/gymaccess/internal/domain"
)

func TestEligibilityCheck(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	newRepo := func() *mockMemberRepo {
		repo := newMockMemberRepo()
		repo.members = append(repo.members, &domain.Member{
			ID:         10,
			GymID:      1,
			ExternalID: "mem-7f3a",
			Status:     domain.MemberActive,
		})
		repo.memberships[10] = []*domain.Membership{{
			ID:       100,
			MemberID: 10,
			StartsOn: now.AddDate(0, -1, 0),
			EndsOn:   now.AddDate(0, 1, 0),
			Plan:     domain.Plan{ID: 5, QRAttendanceEnabled: true},
		}}
		return repo
	}

	tests := []struct {
		name     string
		mutate   func(*mockMemberRepo)
		memberID int64
		gymID    int64
		want     domain.EligibilityReason
		eligible bool
	}{
		{
			name:     "eligible",
			mutate:   func(*mockMemberRepo) {},
			memberID: 10, gymID: 1,
			eligible: true,
		},
		{
			name:     "member not found",
			mutate:   func(*mockMemberRepo) {},
			memberID: 99, gymID: 1,
			want: domain.ReasonMemberNotFound,
		},
		{
			name:     "wrong gym",
			mutate:   func(*mockMemberRepo) {},
			memberID: 10, gymID: 2,
			want: domain.ReasonWrongGym,
		},
		{
			name: "inactive member",
			mutate: func(repo *mockMemberRepo) {
				repo.members[0].Status = domain.MemberInactive
			},
			memberID: 10, gymID: 1,
			want: domain.ReasonMemberInactive,
		},
		{
			name: "expired membership",
			mutate: func(repo *mockMemberRepo) {
				repo.memberships[10][0].EndsOn = now.AddDate(0, 0, -1)
			},
			memberID: 10, gymID: 1,
			want: domain.ReasonNoActiveMembership,
		},
		{
			name: "membership not started",
			mutate: func(repo *mockMemberRepo) {
				repo.memberships[10][0].StartsOn = now.AddDate(0, 0, 1)
			},
			memberID: 10, gymID: 1,
			want: domain.ReasonNoActiveMembership,
		},
		{
			name: "plan disallows QR",
			mutate: func(repo *mockMemberRepo) {
				repo.memberships[10][0].Plan.QRAttendanceEnabled = false
			},
			memberID: 10, gymID: 1,
			want: domain.ReasonPlanDisallowsQR,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newRepo()
			tt.mutate(repo)

			checker := NewEligibilityChecker(repo)
			result, err := checker.Check(context.Background(), tt.memberID, tt.gymID, now)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if result.Eligible != tt.eligible {
				t.Fatalf("eligible = %v, want %v", result.Eligible, tt.eligible)
			}
			if !tt.eligible && result.Reason != tt.want {
				t.Fatalf("reason = %s, want %s", result.Reason, tt.want)
			}
		})
	}
}

func TestEligibilityResultErr(t *testing.T) {
	if err := (domain.EligibilityResult{Eligible: true}).Err(); err != nil {
		t.Fatalf("eligible result must map to nil error, got %v", err)
	}
	err := (domain.EligibilityResult{Reason: domain.ReasonPlanDisallowsQR}).Err()
	if err != domain.ErrPlanDisallowsQR {
		t.Fatalf("expected ErrPlanDisallowsQR, got %v", err)
	}
}
