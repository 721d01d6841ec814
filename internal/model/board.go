package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BoardType is the closed set of schemas a board can carry. All boards of
// one type share the same column set.
type BoardType string

const (
	BoardTypeRoutes      BoardType = "routes"
	BoardTypeCompanies   BoardType = "companies"
	BoardTypeInspectors  BoardType = "inspectors"
	BoardTypeInspections BoardType = "inspections"
	BoardTypeCustom      BoardType = "custom"
)

func (t BoardType) Valid() bool {
	switch t {
	case BoardTypeRoutes, BoardTypeCompanies, BoardTypeInspectors, BoardTypeInspections, BoardTypeCustom:
		return true
	}
	return false
}

type Board struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid;index" json:"workspace_id,omitempty"`
	BoardType   BoardType  `gorm:"type:varchar(32);not null;index" json:"board_type"`
	Name        string     `gorm:"not null" json:"name"`
	NameKa      string     `json:"name_ka,omitempty"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Color       string     `json:"color,omitempty"`
	IsArchived  bool       `gorm:"not null;default:false" json:"is_archived"`
	Settings    datatypes.JSON `gorm:"type:jsonb" json:"settings"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// BoardSettings is the shape serialized into Board.Settings.
type BoardSettings struct {
	AllowComments     bool             `json:"allowComments"`
	AllowActivityFeed bool             `json:"allowActivityFeed"`
	Permissions       BoardPermissions `json:"permissions"`
	IsFavorite        bool             `json:"is_favorite,omitempty"`
}

type BoardPermissions struct {
	CanEdit []string `json:"canEdit"`
	CanView []string `json:"canView"`
}
