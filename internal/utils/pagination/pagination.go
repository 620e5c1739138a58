// Package pagination holds the page/page_size query contract shared by
// every listing endpoint (crews, templates, challenges, retrospects,
// notifications).
package pagination

// Bounds for list queries. Listings over large crews still return at
// most MaxPageSize rows per request.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is bound from query parameters by the handlers.
type Pagination struct {
	Page     int `form:"page" binding:"min=1"`
	PageSize int `form:"page_size" binding:"min=1,max=100"`
}

// New returns the defaults used when a request omits the parameters.
func New() *Pagination {
	return &Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// Offset converts the page number into a row offset for SQL queries.
func (p *Pagination) Offset() int {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	return (p.Page - 1) * p.Limit()
}

// Limit clamps the requested page size into [1, MaxPageSize].
func (p *Pagination) Limit() int {
	if p.PageSize < 1 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}
