package activity

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// ParsePositive parses a page or page-size query value. Anything that is not
// an integer >= 1 returns the fallback.
func ParsePositive(raw string, fallback int) int {
	value, ok := parsePositive(raw)
	if !ok {
		return fallback
	}
	return value
}

func parsePositive(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, false
	}
	return value, true
}

// TotalPages returns the number of pages for total rows. An empty result set
// still has one (empty) page.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage returns the page actually served: requests past the last page are
// served the last page, and non positive requests the first.
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		page = DefaultPage
	}
	if last := TotalPages(total, pageSize); page > last {
		return last
	}
	return page
}

func normalizePaging(p types.Paging, maxPageSize int) types.Paging {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if maxPageSize > 0 && p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}
