package user

import "time"

// User represents a user entity in the system.
type User struct {
	ID        string    // ID is assigned by the store on creation and never changes
	Name      string    // Name is the full name of the user
	Email     string    // Email is unique, stored trimmed and lowercased
	Age       *int      // Age is optional; nil means not provided
	IsActive  bool      // IsActive defaults to true at creation
	CreatedAt time.Time // CreatedAt is set by the store on insert
	UpdatedAt time.Time // UpdatedAt is set by the store on insert and update
}

// Filter narrows the set of users returned by list and count operations.
// The zero value matches every user.
type Filter struct {
	Query    string // Query is a case-insensitive substring matched against name and email
	IsActive *bool  // IsActive restricts results to active or inactive users when set
}

// IsEmpty reports whether the filter matches every user.
func (f Filter) IsEmpty() bool {
	return f.Query == "" && f.IsActive == nil
}
