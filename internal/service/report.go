package service

import (
	"context"
	"fmt"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
	"github.com/pkordes/vacation-catalog/backend/internal/repo"
)

// ReportService derives the admin follower report from the vacation collection.
type ReportService struct {
	vacations repo.VacationRepo
}

// NewReportService constructs a ReportService backed by the provided VacationRepo.
func NewReportService(vacations repo.VacationRepo) *ReportService {
	return &ReportService{vacations: vacations}
}

// Followers returns one row per vacation, in the repo's list order.
func (s *ReportService) Followers(ctx context.Context) ([]domain.ReportRow, error) {
	vacations, err := s.vacations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReportService.Followers: %w", err)
	}

	rows := make([]domain.ReportRow, 0, len(vacations))
	for _, v := range vacations {
		followers := v.Followers
		if followers == nil {
			followers = []string{}
		}
		rows = append(rows, domain.ReportRow{
			Destination:   v.Destination,
			Followers:     followers,
			FollowerCount: len(followers),
			StartDate:     v.StartDate,
			EndDate:       v.EndDate,
		})
	}
	return rows, nil
}
