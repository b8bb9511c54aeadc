package user

import (
	"context"

	domain "user-service/internal/domain/user"
)

// Service defines the user business operations exposed to transports.
type Service interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}

// Repository is the persistence gateway for users. Implementations must reject duplicate
// emails instead of overwriting, and FindPage and Count must apply identical filter semantics.
type Repository interface {
	// Insert stores u and returns the stored copy with ID and timestamps assigned.
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)
	// FindPage returns users matching filter, ordered by sort, after skipping skip records, capped at limit.
	FindPage(ctx context.Context, filter domain.Filter, sort domain.Sort, skip, limit int64) ([]domain.User, error)
	// Count returns the number of users matching filter.
	Count(ctx context.Context, filter domain.Filter) (int64, error)
}
