package model

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

type Pagination struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize fills in defaults for missing or non-positive values.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type PageResult[T any] struct {
	Rows       []T   `json:"rows"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
}

func NewPageResult[T any](rows []T, p Pagination, total int64) *PageResult[T] {
	n := p.Normalize()
	if rows == nil {
		rows = []T{}
	}
	return &PageResult[T]{Rows: rows, Page: n.Page, Limit: n.Limit, TotalCount: total}
}
