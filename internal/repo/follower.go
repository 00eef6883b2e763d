package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FollowerRepo defines targeted writes against a vacation's follower set.
// Each write touches only the followers column of one row and is conditional
// on the current membership, so concurrent calls never overwrite each other.
type FollowerRepo interface {
	// AddFollower appends userID unless it is already present.
	// Returns false when no row changed (vacation missing or user already following).
	AddFollower(ctx context.Context, vacationID uuid.UUID, userID string) (bool, error)

	// RemoveFollower removes userID if it is present.
	// Returns false when no row changed (vacation missing or user not following).
	RemoveFollower(ctx context.Context, vacationID uuid.UUID, userID string) (bool, error)
}

// pgFollowerRepo is the Postgres implementation of FollowerRepo.
type pgFollowerRepo struct {
	db db
}

// NewFollowerRepo constructs a FollowerRepo backed by the provided db connection.
func NewFollowerRepo(db db) FollowerRepo {
	return &pgFollowerRepo{db: db}
}

func (r *pgFollowerRepo) AddFollower(ctx context.Context, vacationID uuid.UUID, userID string) (bool, error) {
	const q = `
		UPDATE vacations
		SET followers = array_append(followers, @user_id::text)
		WHERE id = @id
		  AND NOT (@user_id::text = ANY(followers))`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": vacationID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("repo.FollowerRepo.AddFollower: %w", classify(err))
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgFollowerRepo) RemoveFollower(ctx context.Context, vacationID uuid.UUID, userID string) (bool, error) {
	const q = `
		UPDATE vacations
		SET followers = array_remove(followers, @user_id::text)
		WHERE id = @id
		  AND @user_id::text = ANY(followers)`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": vacationID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("repo.FollowerRepo.RemoveFollower: %w", classify(err))
	}
	return tag.RowsAffected() == 1, nil
}
