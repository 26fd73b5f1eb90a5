package shared

// DefaultPageSize is used when a listing omits page_size
const DefaultPageSize = 20

// MaxPageSize caps any listing page
const MaxPageSize = 100

// Filter carries paging, ordering and free-text search for list queries.
// OrderBy is untrusted input; repositories whitelist it before use.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Limit returns the page size bounded to [1,MaxPageSize]
func (f Filter) Limit() int {
	switch {
	case f.PageSize <= 0:
		return DefaultPageSize
	case f.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return f.PageSize
	}
}
