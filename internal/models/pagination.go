package models

const DefaultPage = 1

// Pagination is disabled when PerPage is zero: every row is returned.
type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) Enabled() bool { return p.PerPage > 0 }

func (p Pagination) Offset() int {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * p.PerPage
}

type PageMeta struct {
	Page       int   `json:"current_page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPageMeta(p Pagination, total int64) PageMeta {
	page := p.Page
	if page < 1 {
		page = DefaultPage
	}
	meta := PageMeta{Page: page, PerPage: p.PerPage, Total: total, TotalPages: 1}
	if p.PerPage > 0 {
		meta.TotalPages = (total + int64(p.PerPage) - 1) / int64(p.PerPage)
	}
	return meta
}

// Paged is a list response with optional pagination metadata.
type Paged[T any] struct {
	Data       []T       `json:"data"`
	Pagination *PageMeta `json:"pagination,omitempty"`
}

func NewPaged[T any](items []T, p Pagination, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	out := Paged[T]{Data: items}
	if p.Enabled() {
		meta := NewPageMeta(p, total)
		out.Pagination = &meta
	}
	return out
}
