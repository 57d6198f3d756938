package pagination

import "errors"

// Listing defaults and limits.
const (
	DefaultPage     = 1
	MinPage         = 1
	DefaultPageSize = 25
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Common validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page_size must be >= 1")
)

// Params is a page-based listing request.
type Params struct {
	// Page is the 1-based page number.
	Page int

	// PageSize is the number of items per page.
	PageSize int
}

// Normalize fills zero fields with defaults and caps PageSize at maxSize.
// Negative values are rejected rather than guessed at.
func (p Params) Normalize(defaultSize, maxSize int) (Params, error) {
	if p.Page < 0 {
		return p, ErrInvalidPage
	}
	if p.PageSize < 0 {
		return p, ErrInvalidPageSize
	}

	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p, nil
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Clamp pins page into [1, totalPages]. With no pages, page 1 is returned.
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < MinPage {
		page = MinPage
	}
	return page
}

// Offset returns the number of rows to skip for page.
func Offset(page, pageSize int) int {
	if page <= MinPage || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}
