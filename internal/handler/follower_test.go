package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/vacation-catalog/backend/internal/domain"
	"github.com/pkordes/vacation-catalog/backend/internal/handler"
)

// mockFollowerServicer is a test double for handler.FollowerServicer.
type mockFollowerServicer struct {
	follow   func(ctx context.Context, vacationID uuid.UUID, userID string) error
	unfollow func(ctx context.Context, vacationID uuid.UUID, userID string) error
}

func (m *mockFollowerServicer) Follow(ctx context.Context, vacationID uuid.UUID, userID string) error {
	return m.follow(ctx, vacationID, userID)
}
func (m *mockFollowerServicer) Unfollow(ctx context.Context, vacationID uuid.UUID, userID string) error {
	return m.unfollow(ctx, vacationID, userID)
}

var _ handler.FollowerServicer = (*mockFollowerServicer)(nil)

func followReq(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestFollowVacation_201(t *testing.T) {
	id := uuid.New()
	svc := &mockFollowerServicer{
		follow: func(_ context.Context, vacationID uuid.UUID, userID string) error {
			assert.Equal(t, id, vacationID)
			assert.Equal(t, "u1", userID)
			return nil
		},
	}

	rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/follow-vacation/"+id.String(), `{"user":{"id":"u1"}}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Successfully followed the vacation.", decodeEnvelope(t, rec).Message)
}

func TestFollowVacation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"already following", domain.ErrAlreadyMember, http.StatusBadRequest, "You are already following this vacation."},
		{"vacation missing", domain.ErrNotFound, http.StatusNotFound, "Vacation not found."},
		{"missing user id", &domain.ValidationError{Fields: []domain.FieldError{{Field: "user.id", Message: "User id is required"}}},
			http.StatusBadRequest, "Validation failed."},
		{"database down", domain.ErrUnavailable, http.StatusInternalServerError, "Something went wrong!"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockFollowerServicer{
				follow: func(_ context.Context, _ uuid.UUID, _ string) error {
					return fmt.Errorf("service.FollowerService.Follow: %w", tc.err)
				},
			}

			rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/follow-vacation/"+uuid.NewString(), `{"user":{"id":"u1"}}`))

			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantMsg, decodeEnvelope(t, rec).Message)
		})
	}
}

func TestFollowVacation_400_BadBody(t *testing.T) {
	svc := &mockFollowerServicer{}

	rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/follow-vacation/"+uuid.NewString(), `{"user":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", decodeEnvelope(t, rec).Message)
}

func TestFollowVacation_400_InvalidID(t *testing.T) {
	svc := &mockFollowerServicer{}

	rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/follow-vacation/123", `{"user":{"id":"u1"}}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid id.", decodeEnvelope(t, rec).Message)
}

func TestUnfollowVacation_200(t *testing.T) {
	svc := &mockFollowerServicer{
		unfollow: func(_ context.Context, _ uuid.UUID, userID string) error {
			assert.Equal(t, "u1", userID)
			return nil
		},
	}

	rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/unfollow-vacation/"+uuid.NewString(), `{"user":{"id":"u1"}}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully unfollowed the vacation.", decodeEnvelope(t, rec).Message)
}

func TestUnfollowVacation_400_NotFollowing(t *testing.T) {
	svc := &mockFollowerServicer{
		unfollow: func(_ context.Context, _ uuid.UUID, _ string) error { return domain.ErrNotMember },
	}

	rec := serve(newHTTPHandler(nil, svc, nil), followReq("/users/unfollow-vacation/"+uuid.NewString(), `{"user":{"id":"u1"}}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You are not following this vacation.", decodeEnvelope(t, rec).Message)
}
