package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SortDirection is tri-state: asc, desc, or unset (empty string).
type SortDirection string

const (
	SortAsc   SortDirection = "asc"
	SortDesc  SortDirection = "desc"
	SortUnset SortDirection = ""
)

// NextSortDirection cycles a toggle on the same column:
// unset -> asc -> desc -> unset.
func NextSortDirection(d SortDirection) SortDirection {
	switch d {
	case SortUnset:
		return SortAsc
	case SortAsc:
		return SortDesc
	default:
		return SortUnset
	}
}

// FilterOperator names a view filter predicate.
type FilterOperator string

const (
	OpEquals             FilterOperator = "equals"
	OpNotEquals          FilterOperator = "not_equals"
	OpContains           FilterOperator = "contains"
	OpNotContains        FilterOperator = "not_contains"
	OpStartsWith         FilterOperator = "starts_with"
	OpEndsWith           FilterOperator = "ends_with"
	OpIsEmpty            FilterOperator = "is_empty"
	OpIsNotEmpty         FilterOperator = "is_not_empty"
	OpGreaterThan        FilterOperator = "greater_than"
	OpLessThan           FilterOperator = "less_than"
	OpGreaterThanOrEqual FilterOperator = "greater_than_or_equal"
	OpLessThanOrEqual    FilterOperator = "less_than_or_equal"
	OpIsOneOf            FilterOperator = "is_one_of"
	OpIsNotOneOf         FilterOperator = "is_not_one_of"
	OpDateIs             FilterOperator = "date_is"
	OpDateBefore         FilterOperator = "date_before"
	OpDateAfter          FilterOperator = "date_after"
	OpDateBetween        FilterOperator = "date_between"
	OpIsChecked          FilterOperator = "is_checked"
	OpIsNotChecked       FilterOperator = "is_not_checked"
)

// BoardFilter is one predicate of a view; filters combine with AND.
type BoardFilter struct {
	ColumnID string         `json:"column_id"`
	Operator FilterOperator `json:"operator"`
	Value    any            `json:"value,omitempty"`
}

// SortConfig is the single sort spec of a view.
type SortConfig struct {
	ColumnID  string        `json:"column_id"`
	Direction SortDirection `json:"direction"`
}

// ColumnOverride is a per-view visibility/width/position override.
type ColumnOverride struct {
	ColumnID  string `json:"column_id"`
	IsVisible bool   `json:"is_visible"`
	Width     *int   `json:"width,omitempty"`
	Position  *int   `json:"position,omitempty"`
}

// BoardView is a per-user saved filter/sort/column configuration for one
// board type.
type BoardView struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_board_views_user_type,priority:1" json:"user_id"`
	BoardType    BoardType      `gorm:"type:varchar(32);not null;index:idx_board_views_user_type,priority:2" json:"board_type"`
	ViewName     string         `gorm:"not null" json:"view_name"`
	ViewNameKa   string         `json:"view_name_ka,omitempty"`
	Filters      datatypes.JSON `gorm:"type:jsonb" json:"filters"`
	SortConfig   datatypes.JSON `gorm:"type:jsonb" json:"sort_config"`
	ColumnConfig datatypes.JSON `gorm:"type:jsonb" json:"column_config"`
	IsDefault    bool           `gorm:"not null;default:false" json:"is_default"`
	IsShared     bool           `gorm:"not null;default:false" json:"is_shared"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
