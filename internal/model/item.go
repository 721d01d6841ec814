package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Item status baseline tags.
const (
	StatusDefault     = "default"
	StatusPending     = "pending"
	StatusWorkingOnIt = "working_on_it"
	StatusStuck       = "stuck"
	StatusDone        = "done"
)

// BoardItem is one record on a board. Data holds the dynamic fields keyed
// by column id; the shape of each value is declared by the referenced
// column's ColumnType. GroupID is a weak reference, not ownership.
type BoardItem struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_board_items_board_group_pos,priority:1" json:"board_id"`
	GroupID    *uuid.UUID        `gorm:"type:uuid;index:idx_board_items_board_group_pos,priority:2" json:"group_id,omitempty"`
	Position   int               `gorm:"not null;index:idx_board_items_board_group_pos,priority:3" json:"position"`
	Name       string            `gorm:"not null" json:"name"`
	Status     string            `gorm:"not null;default:'default'" json:"status"`
	Priority   int               `gorm:"not null;default:0" json:"priority"`
	AssignedTo *uuid.UUID        `gorm:"type:uuid" json:"assigned_to,omitempty"`
	DueDate    *time.Time        `json:"due_date,omitempty"`
	Data       datatypes.JSONMap `gorm:"type:jsonb" json:"data"`
	CreatedBy  *uuid.UUID        `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	// Migration provenance, set once the item has moved between boards.
	OriginalBoardID *uuid.UUID     `gorm:"type:uuid" json:"original_board_id,omitempty"`
	MoveMetadata    datatypes.JSON `gorm:"type:jsonb" json:"move_metadata,omitempty"`

	Board Board `gorm:"foreignKey:BoardID" json:"-"`
}

// MoveMetadata records how an item was carried from one board to another.
// ColumnMappingUsed and UnmappedData are null when source and target
// schemas were identical and no mapping was needed.
type MoveMetadata struct {
	MovedFromBoardID   uuid.UUID         `json:"moved_from_board_id"`
	MovedFromBoardName string            `json:"moved_from_board_name"`
	MovedAt            time.Time         `json:"moved_at"`
	ColumnMappingUsed  map[string]string `json:"column_mapping_used"`
	UnmappedData       map[string]any    `json:"unmapped_data"`
}
