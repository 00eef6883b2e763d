package service

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/vacation-catalog/backend/internal/asset"
	"github.com/pkordes/vacation-catalog/backend/internal/domain"
)

// Clock supplies the current time. Validation compares start dates against it,
// so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// dateLayouts are tried in order when parsing start and end dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// Field names as they appear on the wire and in FieldError.Field.
const (
	fieldCode        = "vacationCode"
	fieldDestination = "destination"
	fieldDescription = "description"
	fieldStartDate   = "startDate"
	fieldEndDate     = "endDate"
	fieldPrice       = "price"
	fieldImage       = "image"
)

var fieldOrder = []string{
	fieldCode, fieldDestination, fieldDescription, fieldStartDate, fieldEndDate, fieldPrice, fieldImage,
}

// textFields carries the rules that are pure struct-tag checks.
type textFields struct {
	Code        string  `json:"vacationCode" validate:"required,max=50"`
	Destination string  `json:"destination" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"gte=0,lte=10000"`
}

// tagMessages maps "field.tag" to the message reported to the client.
var tagMessages = map[string]string{
	fieldCode + ".required":        "Vacation code is required",
	fieldCode + ".max":             "Vacation code must be less than 50 characters",
	fieldDestination + ".required": "Vacation destination is required",
	fieldDestination + ".max":      "Destination must be less than 100 characters",
	fieldDescription + ".max":      "Description must be less than 500 characters",
	fieldPrice + ".gte":            "Price must be at least 0",
	fieldPrice + ".lte":            "Price must be less than or equal to 10,000",
}

// Validator turns raw admin payloads into NormalizedVacations.
// It is safe for concurrent use and has no side effects.
type Validator struct {
	v     *validator.Validate
	clock Clock
}

// NewValidator returns a Validator that compares dates against clock.
func NewValidator(clock Clock) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Validator{v: v, clock: clock}
}

// Validate checks every rule independently and reports all violations at once
// as a *domain.ValidationError.
//
// existingImage is the current image handle on update and "" on create. When
// it is set the upload is optional and a nil Image in the result means "keep it".
func (val *Validator) Validate(in domain.VacationInput, existingImage string) (domain.NormalizedVacation, error) {
	now := val.clock.Now()
	violations := map[string]string{}
	add := func(field, msg string) {
		if _, seen := violations[field]; !seen {
			violations[field] = msg
		}
	}

	out := domain.NormalizedVacation{
		Code:        strings.TrimSpace(in.Code),
		Destination: strings.TrimSpace(in.Destination),
		Description: strings.TrimSpace(in.Description),
	}

	price, priceErr := parsePrice(in.Price)
	if priceErr != "" {
		add(fieldPrice, priceErr)
	}
	out.Price = price

	err := val.v.Struct(textFields{
		Code:        out.Code,
		Destination: out.Destination,
		Description: out.Description,
		Price:       price,
	})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			msg, ok := tagMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = "Invalid value"
			}
			add(fe.Field(), msg)
		}
	}

	start, startOK := parseDate(in.StartDate)
	switch {
	case strings.TrimSpace(in.StartDate) == "":
		add(fieldStartDate, "Start date is required")
	case !startOK:
		add(fieldStartDate, "Start date is not a valid date")
	case !start.After(now):
		add(fieldStartDate, "Start date must be later than the current date")
	}

	end, endOK := parseDate(in.EndDate)
	switch {
	case strings.TrimSpace(in.EndDate) == "":
		add(fieldEndDate, "End date is required")
	case !endOK:
		add(fieldEndDate, "End date is not a valid date")
	case startOK && !end.After(start):
		add(fieldEndDate, "End date must be later than start date")
	}
	out.StartDate, out.EndDate = start, end

	switch img := in.Image; {
	case img == nil && existingImage == "":
		add(fieldImage, "Image is required")
	case img == nil:
		// keep the existing image
	case img.Size > asset.MaxImageBytes || len(img.Data) > asset.MaxImageBytes:
		add(fieldImage, "File size must be less than 5MB")
	case !asset.Accepted(img.MediaType):
		add(fieldImage, "Only JPEG, webp or PNG files are allowed")
	default:
		out.Image = img
	}

	if len(violations) == 0 {
		return out, nil
	}

	verr := &domain.ValidationError{}
	for _, f := range fieldOrder {
		if msg, ok := violations[f]; ok {
			verr.Fields = append(verr.Fields, domain.FieldError{Field: f, Message: msg})
		}
	}
	return domain.NormalizedVacation{}, verr
}

// parseDate accepts full timestamps and plain dates; results are in UTC.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// parsePrice coerces form input to a number. It returns a message when the
// value is missing or not a finite number.
func parsePrice(s string) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "Price is required"
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, "Price must be a number"
	}
	return p, ""
}
