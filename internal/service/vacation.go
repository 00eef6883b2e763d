// Package service contains the business logic for the vacation catalog.
// Services validate inputs, enforce business rules, and orchestrate repo and
// asset store calls. No SQL lives here; services depend on repo interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pkordes/vacation-catalog/backend/internal/asset"
	"github.com/pkordes/vacation-catalog/backend/internal/domain"
	"github.com/pkordes/vacation-catalog/backend/internal/repo"
)

// VacationService manages the lifecycle of vacation records and their images.
// Image and row are kept consistent: a row never points at an image that was
// not stored, and an image is deleted only once no committed row references it.
type VacationService struct {
	repo      repo.VacationRepo
	assets    asset.Store
	validator *Validator
	log       *slog.Logger
	tracer    trace.Tracer
}

// NewVacationService constructs a VacationService.
func NewVacationService(r repo.VacationRepo, assets asset.Store, v *Validator, log *slog.Logger) *VacationService {
	return &VacationService{
		repo:      r,
		assets:    assets,
		validator: v,
		log:       log,
		tracer:    otel.Tracer("vacation-catalog/service"),
	}
}

// List returns every vacation. Always returns a non-nil slice.
func (s *VacationService) List(ctx context.Context) ([]domain.Vacation, error) {
	vacations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.VacationService.List: %w", err)
	}
	if vacations == nil {
		return []domain.Vacation{}, nil
	}
	return vacations, nil
}

// GetByID returns domain.ErrNotFound if the vacation does not exist.
func (s *VacationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vacation, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.GetByID: %w", err)
	}
	return v, nil
}

// Create validates the payload, stores the image, then writes the row.
// If the row write fails the stored image is deleted again.
func (s *VacationService) Create(ctx context.Context, in domain.VacationInput) (created domain.Vacation, err error) {
	ctx, span := s.tracer.Start(ctx, "vacation.create")
	defer func() { endSpan(span, err) }()

	normalized, err := s.validator.Validate(in, "")
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Create: %w", err)
	}
	span.SetAttributes(attribute.String("vacation.destination", normalized.Destination))

	// Checked before uploading so a duplicate never costs an image write.
	// The repo checks again and the unique index has the final word.
	dup, err := s.repo.FindDuplicate(ctx, normalized.Destination, normalized.StartDate, normalized.EndDate, nil)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Create: %w", err)
	}
	if dup != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Create: %w", domain.ErrConflict)
	}

	sg := newSaga("vacation.create", s.log)

	var handle string
	err = sg.step(ctx, "asset.store", func(ctx context.Context) error {
		h, err := s.assets.Store(ctx, normalized.Image.Data, normalized.Image.MediaType)
		if err != nil {
			return err
		}
		handle = h
		span.AddEvent("asset.stored", trace.WithAttributes(attribute.String("asset.handle", h)))
		sg.compensate("asset.delete", func(ctx context.Context) error {
			return s.assets.Delete(ctx, h)
		})
		return nil
	})
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Create: %w", err)
	}

	err = sg.step(ctx, "record.create", func(ctx context.Context) error {
		created, err = s.repo.Create(ctx, normalized.ToVacation(handle))
		return err
	})
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Create: %w", err)
	}

	sg.commit(ctx)
	span.SetAttributes(attribute.String("vacation.id", created.ID.String()))
	return created, nil
}

// Update validates the payload against the current record and writes it.
// A new image is stored before the row write and the replaced image is
// deleted only after the write is confirmed. Without a new image the stored
// image is left untouched.
func (s *VacationService) Update(ctx context.Context, id uuid.UUID, in domain.VacationInput) (updated domain.Vacation, err error) {
	ctx, span := s.tracer.Start(ctx, "vacation.update",
		trace.WithAttributes(attribute.String("vacation.id", id.String())))
	defer func() { endSpan(span, err) }()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", err)
	}

	normalized, err := s.validator.Validate(in, existing.Image)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", err)
	}

	dup, err := s.repo.FindDuplicate(ctx, normalized.Destination, normalized.StartDate, normalized.EndDate, &id)
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", err)
	}
	if dup != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", domain.ErrConflict)
	}

	sg := newSaga("vacation.update", s.log)

	// Empty handle tells the repo to keep whatever image the row holds.
	var newHandle string
	if normalized.Image != nil {
		err = sg.step(ctx, "asset.store", func(ctx context.Context) error {
			h, err := s.assets.Store(ctx, normalized.Image.Data, normalized.Image.MediaType)
			if err != nil {
				return err
			}
			newHandle = h
			span.AddEvent("asset.stored", trace.WithAttributes(attribute.String("asset.handle", h)))
			sg.compensate("asset.delete", func(ctx context.Context) error {
				return s.assets.Delete(ctx, h)
			})
			return nil
		})
		if err != nil {
			return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", err)
		}
	}

	record := normalized.ToVacation(newHandle)
	record.ID = id

	var replaced string
	err = sg.step(ctx, "record.update", func(ctx context.Context) error {
		updated, replaced, err = s.repo.Update(ctx, record)
		return err
	})
	if err != nil {
		return domain.Vacation{}, fmt.Errorf("service.VacationService.Update: %w", err)
	}

	if newHandle != "" && replaced != "" && replaced != newHandle {
		sg.afterCommit("asset.delete_replaced", func(ctx context.Context) error {
			if err := s.assets.Delete(ctx, replaced); err != nil {
				return fmt.Errorf("vacation %s image %s: %w", id, replaced, err)
			}
			return nil
		})
	}
	sg.commit(ctx)
	return updated, nil
}

// Delete removes the record, then deletes its image best-effort. An image
// that cannot be deleted is logged at WARN and does not fail the call.
func (s *VacationService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "vacation.delete",
		trace.WithAttributes(attribute.String("vacation.id", id.String())))
	defer func() { endSpan(span, err) }()

	sg := newSaga("vacation.delete", s.log)

	var removed domain.Vacation
	err = sg.step(ctx, "record.delete", func(ctx context.Context) error {
		removed, err = s.repo.Delete(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("service.VacationService.Delete: %w", err)
	}

	if removed.Image != "" {
		sg.afterCommit("asset.delete", func(ctx context.Context) error {
			if err := s.assets.Delete(ctx, removed.Image); err != nil {
				return fmt.Errorf("vacation %s image %s: %w", id, removed.Image, err)
			}
			return nil
		})
	}
	sg.commit(ctx)
	return nil
}

// endSpan records err on span (if any) and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
