package persistence

import (
	"strings"

	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ResidentSortFields contains allowed sort fields for residents
var ResidentSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"nik":        true,
	"name":       true,
	"birth_date": true,
	"status":     true,
}

// FamilyCardSortFields contains allowed sort fields for family cards
var FamilyCardSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"number":     true,
}

// UnitSortFields contains allowed sort fields for RW and RT
var UnitSortFields = map[string]bool{
	"created_at": true,
	"number":     true,
}

// page applies whitelisted ordering and limit/offset from filter
func page(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	return query.
		Order(field + " " + ValidateSortOrder(filter.OrderDir)).
		Order("id ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset())
}
