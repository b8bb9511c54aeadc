package user

import (
	"math"
	"strings"
)

const (
	DefaultPage      int64 = 1
	DefaultLimit     int64 = 10
	MaxLimit         int64 = 100
	DefaultSortField       = "createdAt"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// sortableFields lists the fields a client may sort on.
var sortableFields = map[string]struct{}{
	"createdAt": {},
	"updatedAt": {},
	"name":      {},
	"email":     {},
	"age":       {},
	"isActive":  {},
}

// IsSortable reports whether field can be used as a sort key.
func IsSortable(field string) bool {
	_, ok := sortableFields[field]
	return ok
}

// Sort describes a single-field ordering.
type Sort struct {
	Field      string
	Descending bool
}

// PageRequest describes a windowed view over a list of users.
type PageRequest struct {
	Page      int64
	Limit     int64
	SortField string
	SortOrder SortOrder
}

// NewPageRequest builds a PageRequest, substituting defaults for missing or invalid values.
// Limits above MaxLimit are clamped. An empty order means descending; "desc" in any case means
// descending and anything else ascending. Unknown sort fields fall back to DefaultSortField.
// Pages are capped so that Skip never overflows.
func NewPageRequest(page, limit int64, sortField, order string) PageRequest {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if maxPage := math.MaxInt64 / limit; page > maxPage {
		page = maxPage
	}
	if !IsSortable(sortField) {
		sortField = DefaultSortField
	}

	so := SortAsc
	if order == "" || strings.EqualFold(order, string(SortDesc)) {
		so = SortDesc
	}

	return PageRequest{
		Page:      page,
		Limit:     limit,
		SortField: sortField,
		SortOrder: so,
	}
}

// Skip returns the number of records preceding the requested page.
func (p PageRequest) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Sort returns the ordering requested by the page.
func (p PageRequest) Sort() Sort {
	return Sort{Field: p.SortField, Descending: p.SortOrder == SortDesc}
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64 // Total number of records
	Page       int64 // Current page number (1-based)
	Limit      int64 // Number of records per page
	TotalPages int64 // Total number of pages
}

// NewPagination creates a new Pagination instance with calculated total pages.
func NewPagination(total, page, limit int64) *Pagination {
	var totalPages int64
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
