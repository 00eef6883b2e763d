package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
	"github.com/pkordes/vacation-catalog/backend/internal/repo"
)

// FollowerService toggles a user's membership in a vacation's follower set.
// Re-following and unfollowing a non-followed vacation are reported as
// domain.ErrAlreadyMember and domain.ErrNotMember rather than silently ignored.
type FollowerService struct {
	vacations repo.VacationRepo
	followers repo.FollowerRepo
}

// NewFollowerService constructs a FollowerService backed by the provided repos.
func NewFollowerService(vacations repo.VacationRepo, followers repo.FollowerRepo) *FollowerService {
	return &FollowerService{vacations: vacations, followers: followers}
}

// Follow adds userID to the vacation's followers.
func (s *FollowerService) Follow(ctx context.Context, vacationID uuid.UUID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("service.FollowerService.Follow: %w", &domain.ValidationError{
			Fields: []domain.FieldError{{Field: "user.id", Message: "User id is required"}},
		})
	}

	v, err := s.vacations.GetByID(ctx, vacationID)
	if err != nil {
		return fmt.Errorf("service.FollowerService.Follow: %w", err)
	}
	if v.HasFollower(userID) {
		return fmt.Errorf("service.FollowerService.Follow: %w", domain.ErrAlreadyMember)
	}

	changed, err := s.followers.AddFollower(ctx, vacationID, userID)
	if err != nil {
		return fmt.Errorf("service.FollowerService.Follow: %w", err)
	}
	if !changed {
		// Lost a race between the read and the conditional write.
		return fmt.Errorf("service.FollowerService.Follow: %w", s.reclassify(ctx, vacationID, domain.ErrAlreadyMember))
	}
	return nil
}

// Unfollow removes userID from the vacation's followers.
func (s *FollowerService) Unfollow(ctx context.Context, vacationID uuid.UUID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("service.FollowerService.Unfollow: %w", &domain.ValidationError{
			Fields: []domain.FieldError{{Field: "user.id", Message: "User id is required"}},
		})
	}

	v, err := s.vacations.GetByID(ctx, vacationID)
	if err != nil {
		return fmt.Errorf("service.FollowerService.Unfollow: %w", err)
	}
	if !v.HasFollower(userID) {
		return fmt.Errorf("service.FollowerService.Unfollow: %w", domain.ErrNotMember)
	}

	changed, err := s.followers.RemoveFollower(ctx, vacationID, userID)
	if err != nil {
		return fmt.Errorf("service.FollowerService.Unfollow: %w", err)
	}
	if !changed {
		return fmt.Errorf("service.FollowerService.Unfollow: %w", s.reclassify(ctx, vacationID, domain.ErrNotMember))
	}
	return nil
}

// reclassify explains a conditional write that matched no row: either the
// vacation was deleted concurrently, or membership changed under us.
func (s *FollowerService) reclassify(ctx context.Context, vacationID uuid.UUID, membershipErr error) error {
	if _, err := s.vacations.GetByID(ctx, vacationID); err != nil {
		return err
	}
	return membershipErr
}
