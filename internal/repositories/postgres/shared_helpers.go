package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// SharedHelpers holds query-building helpers reused across the
// repositories in this package.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// allowedSortColumns whitelists sort keys per entity so raw request
// input never reaches ORDER BY.
var allowedSortColumns = map[string]bool{
	"title":       true,
	"created_at":  true,
	"due_date":    true,
	"enrolled_at": true,
	"email":       true,
	"full_name":   true,
}

// ApplyPaginationAndSort applies a whitelisted single sort key plus
// limit/offset. Unknown keys fall back to created_at descending.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	if !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	query = query.Limit(limit)

	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
