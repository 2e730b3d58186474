package service

import "github.com/brokerdesk/backoffice-api/internal/core/ports"

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pageBounds normalises a 1-based page and a limit capped at maxPageLimit.
func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPagination(total int64, page, limit int) ports.Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return ports.Pagination{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
