// Package pagination provides shared utilities for secure pagination and
// sorting in database repositories. Sort columns are validated against a
// whitelist and limit/offset values are clamped to safe bounds.
package pagination

import (
	"strings"
)

// Pagination bounds.
const (
	MaxPageSize   = 100
	MaxOffset     = 100000
	DefaultLimit  = 25
	DefaultOffset = 0
)

// BuildSortColumns defines valid sort columns for build records.
var BuildSortColumns = map[string]bool{
	"id":         true,
	"vm_name":    true,
	"branch":     true,
	"status":     true,
	"created_at": true,
	"updated_at": true,
}

// SanitizeSortOrder validates and sanitizes the sort order to prevent SQL
// injection. columnWhitelist should contain valid column names for the
// specific entity; anything not on it falls back to defaultSort.
func SanitizeSortOrder(sortOrder string, columnWhitelist map[string]bool, defaultSort string) string {
	if sortOrder == "" {
		return defaultSort
	}

	parts := strings.Split(sortOrder, ",")
	var validParts []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		tokens := strings.Fields(part)
		if len(tokens) == 0 {
			continue
		}

		column := strings.ToLower(strings.TrimSpace(tokens[0]))
		direction := "ASC"

		if len(tokens) > 1 {
			dir := strings.ToUpper(strings.TrimSpace(tokens[1]))
			if dir == "DESC" || dir == "ASC" {
				direction = dir
			}
		}

		if columnWhitelist[column] {
			validParts = append(validParts, column+" "+direction)
		}
	}

	if len(validParts) == 0 {
		return defaultSort
	}

	return strings.Join(validParts, ", ")
}

// ClampPaginationParams ensures limit and offset are within safe bounds.
func ClampPaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = DefaultOffset
	} else if offset > MaxOffset {
		offset = MaxOffset
	}

	return limit, offset
}
