package user

import "time"

// CreateUserRequest represents the raw input for creating a new user.
// Rules are enforced by Validate; tags use the JSON field names clients send.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   *int   `json:"age" validate:"omitempty,min=0,max=120"`
}

// ListUsersRequest represents the request payload for listing users.
// Zero values select the documented defaults.
type ListUsersRequest struct {
	Query     string
	IsActive  *bool
	Page      int64
	Limit     int64
	SortField string
	SortOrder string
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID        string
	Name      string
	Email     string
	Age       *int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
