package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ColumnType tags the shape of the values a column holds. Validation and
// comparison dispatch on this tag, not on the runtime value.
type ColumnType string

const (
	ColumnText           ColumnType = "text"
	ColumnStatus         ColumnType = "status"
	ColumnPerson         ColumnType = "person"
	ColumnDate           ColumnType = "date"
	ColumnDateRange      ColumnType = "date_range"
	ColumnNumber         ColumnType = "number"
	ColumnLocation       ColumnType = "location"
	ColumnRoute          ColumnType = "route"
	ColumnCompany        ColumnType = "company"
	ColumnCompanyAddress ColumnType = "company_address"
	ColumnServiceType    ColumnType = "service_type"
	ColumnCheckbox       ColumnType = "checkbox"
	ColumnPhone          ColumnType = "phone"
	ColumnFiles          ColumnType = "files"
	ColumnUpdates        ColumnType = "updates"
	ColumnActions        ColumnType = "actions"
)

func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnStatus, ColumnPerson, ColumnDate, ColumnDateRange,
		ColumnNumber, ColumnLocation, ColumnRoute, ColumnCompany,
		ColumnCompanyAddress, ColumnServiceType, ColumnCheckbox,
		ColumnPhone, ColumnFiles, ColumnUpdates, ColumnActions:
		return true
	}
	return false
}

// BoardColumn is configuration data shared by every board of one type.
// (board_type, column_id) is the column's identity; renaming ColumnName
// does not change it.
type BoardColumn struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardType    BoardType  `gorm:"type:varchar(32);not null;uniqueIndex:uq_board_columns_type_column,priority:1" json:"board_type"`
	ColumnID     string     `gorm:"not null;uniqueIndex:uq_board_columns_type_column,priority:2" json:"column_id"`
	ColumnName   string     `gorm:"not null" json:"column_name"`
	ColumnNameKa string     `json:"column_name_ka,omitempty"`
	ColumnType   ColumnType `gorm:"type:varchar(32);not null" json:"column_type"`
	IsVisible    bool       `gorm:"not null;default:true" json:"is_visible"`
	IsPinned     bool       `gorm:"not null;default:false" json:"is_pinned"`
	Position     int        `gorm:"not null" json:"position"`
	Width        int        `gorm:"not null;default:150" json:"width"`
	Config       datatypes.JSONMap `gorm:"type:jsonb" json:"config"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
