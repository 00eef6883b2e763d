package service

import (
	"context"
	"fmt"
	"log/slog"
)

// saga runs the steps of one record/asset lifecycle change.
// Each successful step may register a compensation; if a later step fails the
// compensations run in reverse order. Cleanups registered with afterCommit run
// only once every step has succeeded and their failures are logged, never returned.
type saga struct {
	name          string
	log           *slog.Logger
	compensations []namedAction
	cleanups      []namedAction
}

type namedAction struct {
	name string
	fn   func(context.Context) error
}

func newSaga(name string, log *slog.Logger) *saga {
	return &saga{name: name, log: log}
}

// step runs fn. On failure it rolls back previously registered compensations
// and returns the error prefixed with the step name.
func (s *saga) step(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		s.rollback(ctx, name)
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// compensate registers an undo action for a step that has already succeeded.
func (s *saga) compensate(name string, fn func(context.Context) error) {
	s.compensations = append(s.compensations, namedAction{name: name, fn: fn})
}

// afterCommit registers a best-effort action to run by commit.
func (s *saga) afterCommit(name string, fn func(context.Context) error) {
	s.cleanups = append(s.cleanups, namedAction{name: name, fn: fn})
}

// commit runs the after-commit cleanups. They are detached from ctx so an
// abandoned request still cleans up.
func (s *saga) commit(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, c := range s.cleanups {
		if err := c.fn(ctx); err != nil {
			s.log.WarnContext(ctx, "cleanup failed", "saga", s.name, "action", c.name, "error", err)
		}
	}
}

func (s *saga) rollback(ctx context.Context, failedStep string) {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.compensations) - 1; i >= 0; i-- {
		c := s.compensations[i]
		if err := c.fn(ctx); err != nil {
			s.log.ErrorContext(ctx, "compensation failed",
				"saga", s.name, "failed_step", failedStep, "action", c.name, "error", err)
		}
	}
	s.compensations = nil
}
