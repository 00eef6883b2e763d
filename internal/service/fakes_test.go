package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vacation-catalog/backend/internal/asset"
	"github.com/pkordes/vacation-catalog/backend/internal/domain"
	"github.com/pkordes/vacation-catalog/backend/internal/repo"
	"github.com/pkordes/vacation-catalog/backend/internal/service"
)

// now is the fixed "current time" every test validates against.
var now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() service.Clock {
	return service.ClockFunc(func() time.Time { return now })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a JSON logger writing into buf so tests can inspect levels.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// ---- mockVacationRepo ------------------------------------------------------

// mockVacationRepo is a hand-written test double for repo.VacationRepo.
// Each method is a function field; set only the ones your test needs.
type mockVacationRepo struct {
	list          func(ctx context.Context) ([]domain.Vacation, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Vacation, error)
	findDuplicate func(ctx context.Context, destination string, start, end time.Time, excludeID *uuid.UUID) (*domain.Vacation, error)
	create        func(ctx context.Context, v domain.Vacation) (domain.Vacation, error)
	update        func(ctx context.Context, v domain.Vacation) (domain.Vacation, string, error)
	delete        func(ctx context.Context, id uuid.UUID) (domain.Vacation, error)
}

func (m *mockVacationRepo) List(ctx context.Context) ([]domain.Vacation, error) {
	return m.list(ctx)
}
func (m *mockVacationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vacation, error) {
	return m.getByID(ctx, id)
}
func (m *mockVacationRepo) FindDuplicate(ctx context.Context, destination string, start, end time.Time, excludeID *uuid.UUID) (*domain.Vacation, error) {
	if m.findDuplicate == nil {
		return nil, nil
	}
	return m.findDuplicate(ctx, destination, start, end, excludeID)
}
func (m *mockVacationRepo) Create(ctx context.Context, v domain.Vacation) (domain.Vacation, error) {
	return m.create(ctx, v)
}
func (m *mockVacationRepo) Update(ctx context.Context, v domain.Vacation) (domain.Vacation, string, error) {
	return m.update(ctx, v)
}
func (m *mockVacationRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Vacation, error) {
	return m.delete(ctx, id)
}

// compile-time check: mockVacationRepo must satisfy repo.VacationRepo.
var _ repo.VacationRepo = (*mockVacationRepo)(nil)

// ---- memRepo ---------------------------------------------------------------

// memRepo is an in-memory VacationRepo and FollowerRepo with the same
// observable semantics as the Postgres implementation, including the
// conditional follower writes. Safe for concurrent use.
type memRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]domain.Vacation
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID]domain.Vacation{}}
}

var (
	_ repo.VacationRepo = (*memRepo)(nil)
	_ repo.FollowerRepo = (*memRepo)(nil)
)

func (r *memRepo) List(_ context.Context) ([]domain.Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Vacation{}
	for _, v := range r.rows {
		out = append(out, clone(v))
	}
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return domain.Vacation{}, domain.ErrNotFound
	}
	return clone(v), nil
}

func (r *memRepo) FindDuplicate(_ context.Context, destination string, start, end time.Time, excludeID *uuid.UUID) (*domain.Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findDuplicateLocked(destination, start, end, excludeID), nil
}

func (r *memRepo) findDuplicateLocked(destination string, start, end time.Time, excludeID *uuid.UUID) *domain.Vacation {
	for id, v := range r.rows {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if v.Destination == destination && v.StartDate.Equal(start) && v.EndDate.Equal(end) {
			c := clone(v)
			return &c
		}
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, v domain.Vacation) (domain.Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findDuplicateLocked(v.Destination, v.StartDate, v.EndDate, nil) != nil {
		return domain.Vacation{}, domain.ErrConflict
	}
	v.ID = uuid.New()
	v.Followers = []string{}
	v.CreatedAt, v.UpdatedAt = now, now
	r.rows[v.ID] = v
	return clone(v), nil
}

func (r *memRepo) Update(_ context.Context, v domain.Vacation) (domain.Vacation, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.rows[v.ID]
	if !ok {
		return domain.Vacation{}, "", domain.ErrNotFound
	}
	if r.findDuplicateLocked(v.Destination, v.StartDate, v.EndDate, &v.ID) != nil {
		return domain.Vacation{}, "", domain.ErrConflict
	}
	if v.Image == "" {
		v.Image = prev.Image
	}
	v.Followers = prev.Followers
	v.CreatedAt = prev.CreatedAt
	v.UpdatedAt = now
	r.rows[v.ID] = v
	return clone(v), prev.Image, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (domain.Vacation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok {
		return domain.Vacation{}, domain.ErrNotFound
	}
	delete(r.rows, id)
	return clone(v), nil
}

func (r *memRepo) AddFollower(_ context.Context, id uuid.UUID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || slices.Contains(v.Followers, userID) {
		return false, nil
	}
	v.Followers = append(slices.Clone(v.Followers), userID)
	r.rows[id] = v
	return true, nil
}

func (r *memRepo) RemoveFollower(_ context.Context, id uuid.UUID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rows[id]
	if !ok || !slices.Contains(v.Followers, userID) {
		return false, nil
	}
	v.Followers = slices.DeleteFunc(slices.Clone(v.Followers), func(u string) bool { return u == userID })
	r.rows[id] = v
	return true, nil
}

func clone(v domain.Vacation) domain.Vacation {
	v.Followers = slices.Clone(v.Followers)
	if v.Followers == nil {
		v.Followers = []string{}
	}
	return v
}

// ---- fakeAssets ------------------------------------------------------------

// fakeAssets is an in-memory asset.Store that records every call in order.
// storeErr and deleteErr force failures.
type fakeAssets struct {
	mu        sync.Mutex
	files     map[string][]byte
	calls     []string
	seq       int
	storeErr  error
	deleteErr error
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{files: map[string][]byte{}}
}

var _ asset.Store = (*fakeAssets)(nil)

func (f *fakeAssets) Store(_ context.Context, data []byte, mediaType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		f.calls = append(f.calls, "store:error")
		return "", f.storeErr
	}
	f.seq++
	handle := fmt.Sprintf("img-%d", f.seq)
	f.files[handle] = data
	f.calls = append(f.calls, "store:"+handle)
	return handle, nil
}

func (f *fakeAssets) Delete(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+handle)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.files, handle)
	return nil
}

func (f *fakeAssets) has(handle string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[handle]
	return ok
}

func (f *fakeAssets) callsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

// ---- fixtures --------------------------------------------------------------

func jpeg() *domain.ImageUpload {
	data := []byte("\xff\xd8\xff\xe0 fake jpeg")
	return &domain.ImageUpload{Filename: "paris.jpg", MediaType: "image/jpeg", Size: int64(len(data)), Data: data}
}

// validInput is the Paris example: starts 10 days from now, ends 20 days from now.
func validInput() domain.VacationInput {
	return domain.VacationInput{
		Code:        "V001",
		Destination: "Paris",
		Description: "Spring in Paris",
		StartDate:   now.AddDate(0, 0, 10).Format(time.RFC3339),
		EndDate:     now.AddDate(0, 0, 20).Format(time.RFC3339),
		Price:       "1000",
		Image:       jpeg(),
	}
}

func newVacationService(r repo.VacationRepo, a asset.Store) *service.VacationService {
	return service.NewVacationService(r, a, service.NewValidator(fixedClock()), discardLogger())
}
