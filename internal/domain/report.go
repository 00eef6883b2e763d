package domain

import "time"

// ReportRow is the read-only summary of one vacation used by the admin
// followers chart and its CSV export.
type ReportRow struct {
	Destination   string    `json:"destination"`
	Followers     []string  `json:"followers"`
	FollowerCount int       `json:"followerCount"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
}
