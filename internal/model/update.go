package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UpdateType tags an activity event.
type UpdateType string

const (
	UpdateCreated       UpdateType = "created"
	UpdateUpdated       UpdateType = "updated"
	UpdateDeleted       UpdateType = "deleted"
	UpdateStatusChanged UpdateType = "status_changed"
	UpdateAssigned      UpdateType = "assigned"
	UpdateReassigned    UpdateType = "reassigned"
	UpdateComment       UpdateType = "comment"
	UpdateCompleted     UpdateType = "completed"
	UpdateColumnChanged UpdateType = "column_changed"
	UpdateMovedToBoard  UpdateType = "moved_to_board"
)

func (t UpdateType) Valid() bool {
	switch t {
	case UpdateCreated, UpdateUpdated, UpdateDeleted, UpdateStatusChanged,
		UpdateAssigned, UpdateReassigned, UpdateComment, UpdateCompleted,
		UpdateColumnChanged, UpdateMovedToBoard:
		return true
	}
	return false
}

// ItemUpdate is one immutable entry of the activity ledger. Rows are
// append-only: nothing in the engine mutates or deletes them.
// OldValue/NewValue are pointers so an explicit empty string stays
// distinguishable from an absent value.
type ItemUpdate struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_item_updates_item_created,priority:1" json:"item_id"`
	UserID     *uuid.UUID        `gorm:"type:uuid" json:"user_id,omitempty"`
	UpdateType UpdateType        `gorm:"type:varchar(32);not null" json:"update_type"`
	FieldName  *string           `json:"field_name,omitempty"`
	ColumnID   *string           `json:"column_id,omitempty"`
	OldValue   *string           `json:"old_value,omitempty"`
	NewValue   *string           `json:"new_value,omitempty"`
	Content    *string           `json:"content,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"index:idx_item_updates_item_created,priority:2" json:"created_at"`
}
