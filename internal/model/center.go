package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReliefCenter is a physical distribution point that owns resource stocks.
// Centers are seeded/administered outside this service; the core only reads them.
type ReliefCenter struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Address      string          `gorm:"type:text" json:"address"`
	Latitude     decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"latitude"`
	Longitude    decimal.Decimal `gorm:"type:decimal(10,6);not null" json:"longitude"`
	ContactName  string          `gorm:"type:varchar(255)" json:"contact_name"`
	ContactPhone string          `gorm:"type:varchar(20)" json:"contact_phone"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
