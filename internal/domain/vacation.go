// Package domain contains the core data types for the vacation catalog.
// It has no dependencies on other internal packages and is imported by
// every layer (repo, service, handler).
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Vacation is one bookable trip listing.
// Followers is a set: the repo never stores the same user id twice.
type Vacation struct {
	ID          uuid.UUID `json:"_id"`
	Code        string    `json:"vacationCode"`
	Destination string    `json:"destination"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Followers   []string  `json:"followers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasFollower reports whether userID is in the follower set.
func (v Vacation) HasFollower(userID string) bool {
	return slices.Contains(v.Followers, userID)
}

// ImageUpload is an image part received with a create or update request.
// Data holds the full file contents; Size is the size the client declared.
type ImageUpload struct {
	Filename  string
	MediaType string
	Size      int64
	Data      []byte
}

// VacationInput is the raw, unvalidated admin payload. Dates and price
// arrive as strings from multipart forms and are coerced by the validator.
type VacationInput struct {
	Code        string
	Destination string
	Description string
	StartDate   string
	EndDate     string
	Price       string
	Image       *ImageUpload
}

// NormalizedVacation is a VacationInput after coercion and validation,
// ready to be persisted. Image is nil on update when the existing image is kept.
type NormalizedVacation struct {
	Code        string
	Destination string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Price       float64
	Image       *ImageUpload
}

// ToVacation builds the record to persist, pointing at the given image handle.
func (n NormalizedVacation) ToVacation(image string) Vacation {
	return Vacation{
		Code:        n.Code,
		Destination: n.Destination,
		Description: n.Description,
		StartDate:   n.StartDate,
		EndDate:     n.EndDate,
		Price:       n.Price,
		Image:       image,
		Followers:   []string{},
	}
}
