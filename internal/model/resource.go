package model

import (
	"time"

	"github.com/google/uuid"
)

// Resource availability status constants
const (
	ResourceReady            = "READY"
	ResourceOutOfStock       = "OUT_OF_STOCK"
	ResourceUnderMaintenance = "UNDER_MAINTENANCE"
)

// ResourceStock is a physical relief stock held at a center. The matcher only
// reads it; decrementing quantity belongs to distribution creation, which runs
// a locked check inside a transaction.
type ResourceStock struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name"`
	Category     string       `gorm:"type:varchar(100);not null;index" json:"category"`
	Quantity     int          `gorm:"type:int;not null;default:0" json:"quantity"`
	Unit         string       `gorm:"type:varchar(50);not null" json:"unit"`
	MinThreshold int          `gorm:"type:int;not null;default:0" json:"min_threshold"`
	Status       string       `gorm:"type:varchar(30);not null;default:'READY';index" json:"status"`
	CenterID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"center_id"`
	Center       ReliefCenter `gorm:"foreignKey:CenterID" json:"center"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
