// Package pagination parses page/pageSize query parameters and shapes paged results.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Params struct {
	Page     int
	PageSize int
}

// FromQuery reads page and pageSize, clamping them to [1, MaxPageSize].
// Unparseable values fall back to the defaults.
func FromQuery(q url.Values) Params {
	p := Params{Page: 1, PageSize: DefaultPageSize}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = n
	}
	size := q.Get("pageSize")
	if size == "" {
		size = q.Get("limit")
	}
	if n, err := strconv.Atoi(size); err == nil {
		p.PageSize = n
	}
	return p.Normalize()
}

func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

func (p Params) Limit() int {
	return p.Normalize().PageSize
}

// Page describes where a result slice sits in the full listing.
type Page struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPage(p Params, total int64) Page {
	p = p.Normalize()
	return Page{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, p.PageSize),
	}
}

func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
