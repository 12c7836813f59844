package pagination

const (
	// DefaultPerPage is used when a request names no page size.
	DefaultPerPage = 100
	MaxPerPage     = 100
)

// Params selects one page of a list. Zero values mean the first page of
// DefaultPerPage rows.
type Params struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

func (p Params) normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage < 1:
		p.PerPage = DefaultPerPage
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	return p
}

// Meta describes the page that was returned.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// Result is one page of items.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// Paginate copies one page out of items. A page past the end yields no items.
func Paginate[T any](items []T, params Params) Result[T] {
	p := params.normalize()

	start := min((p.Page-1)*p.PerPage, len(items))
	end := min(start+p.PerPage, len(items))
	page := make([]T, end-start)
	copy(page, items[start:end])

	totalPages := (len(items) + p.PerPage - 1) / p.PerPage
	return Result[T]{
		Items: page,
		Pagination: Meta{
			CurrentPage: p.Page,
			PerPage:     p.PerPage,
			Total:       int64(len(items)),
			TotalPages:  totalPages,
			HasNext:     p.Page < totalPages,
			HasPrev:     p.Page > 1,
		},
	}
}
