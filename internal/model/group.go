package model

import (
	"time"

	"github.com/google/uuid"
)

// BoardGroup is a named, colored bucket of items inside one board. Items
// reference a group by id only; deleting a group must never delete items.
type BoardGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID   uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"not null" json:"color"`
	Position  int       `gorm:"not null" json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Board Board `gorm:"foreignKey:BoardID" json:"-"`
}
