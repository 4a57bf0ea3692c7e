package service

import "github.com/partsdesk/storefront/internal/core/domain"

// Paginate returns the 1-based page of items. page is clamped to
// [1, TotalPages]; an empty list is one empty page.
func Paginate[T any](items []T, page, perPage int) domain.Page[T] {
	if perPage <= 0 {
		perPage = len(items)
		if perPage == 0 {
			perPage = 1
		}
	}
	totalPages := (len(items) + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return domain.Page[T]{
		Items:      out,
		Page:       page,
		PerPage:    perPage,
		Total:      len(items),
		TotalPages: totalPages,
	}
}
