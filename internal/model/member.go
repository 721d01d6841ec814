package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardMember links a user to a board with a role.
type BoardMember struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Role    Role      `gorm:"type:varchar(16);not null;check:role IN ('viewer', 'editor')" json:"role"`
	AddedBy *uuid.UUID `gorm:"type:uuid" json:"added_by,omitempty"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	Board Board `gorm:"foreignKey:BoardID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`
}

// Role is the access level a member holds on a board. The board owner
// implicitly has full access.
type Role string

const (
	RoleViewer Role = "viewer" // read-only access
	RoleEditor Role = "editor" // may mutate items, groups and views
)
