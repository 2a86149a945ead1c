package service

import "github.com/phrazzld/walletstats/internal/domain"

// Page size bounds for listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination selects one page of a listing. Page counts from 1.
type Pagination struct {
	Page     int
	PageSize int
}

// DefaultPagination returns the first page at DefaultPageSize.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: DefaultPageSize}
}

// Validate checks the page bounds.
func (p Pagination) Validate() error {
	if p.Page < 1 {
		return domain.NewValidationError("page", "must be at least 1", domain.ErrValidation)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return domain.NewValidationError("page_size", "must be between 1 and 100", domain.ErrValidation)
	}
	return nil
}

func (p Pagination) offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo describes the page a listing returned.
type PageInfo struct {
	Page       int
	PageSize   int
	Count      int
	TotalCount int
	TotalPages int
}

func newPageInfo(p Pagination, count, total int) PageInfo {
	return PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Count:      count,
		TotalCount: total,
		TotalPages: (total + p.PageSize - 1) / p.PageSize,
	}
}
