package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an inspector or back-office account. Authentication itself is
// handled upstream; the engine only needs identity and a role tag.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	FullName       string    `gorm:"not null" json:"full_name"`
	Role           string    `gorm:"not null;default:'inspector'" json:"role"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
