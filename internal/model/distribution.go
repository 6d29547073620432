package model

import (
	"time"

	"github.com/google/uuid"
)

// Distribution status constants. Allowed edges:
// PREPARING -> IN_TRANSIT -> DELIVERING -> COMPLETED,
// CANCELLED reachable from any non-terminal state.
const (
	DistPreparing  = "PREPARING"
	DistInTransit  = "IN_TRANSIT"
	DistDelivering = "DELIVERING"
	DistCompleted  = "COMPLETED"
	DistCancelled  = "CANCELLED"
)

// Ledger action tags
const (
	LedgerActionCreated    = "DISTRIBUTION_CREATED"
	LedgerActionTransition = "STATUS_TRANSITION"
)

// SnapshotVersion is the current ledger snapshot schema version.
const SnapshotVersion = 1

// Distribution is the delivery task created once an approved request has been
// matched and stock committed. Mutated only through documented transitions.
type Distribution struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"request_id"`
	Request     ReliefRequest `gorm:"foreignKey:RequestID" json:"request"`
	ResourceID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"resource_id"`
	Resource    ResourceStock `gorm:"foreignKey:ResourceID" json:"resource"`
	DelivererID uuid.UUID     `gorm:"type:uuid;not null;index" json:"deliverer_id"`
	Deliverer   *User         `gorm:"foreignKey:DelivererID" json:"deliverer,omitempty"`
	Quantity    int           `gorm:"type:int;not null" json:"quantity"`
	Status      string        `gorm:"type:varchar(20);not null;default:'PREPARING';index" json:"status"`

	// Opaque unique code for this delivery task, distinct from the per-entry
	// ledger transaction codes.
	TransactionCode string `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_code"`

	DispatchedAt time.Time  `json:"dispatched_at"`
	DeliveredAt  *time.Time `json:"delivered_at"` // set only on completion
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LedgerSnapshot is the fixed, versioned state snapshot stored on every ledger
// entry. Replaying a distribution's entries in order must reconstruct its
// stored current state.
type LedgerSnapshot struct {
	Version     int       `json:"version"`
	RequestID   uuid.UUID `json:"request_id"`
	ResourceID  uuid.UUID `json:"resource_id"`
	DelivererID uuid.UUID `json:"deliverer_id"`
	Status      string    `json:"status"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// LedgerEntry is one immutable record in the append-only distribution ledger.
// Entries are never updated or deleted and are strictly time-ordered per
// distribution.
type LedgerEntry struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DistributionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"distribution_id"`
	Action          string    `gorm:"type:varchar(50);not null" json:"action"`
	TransactionCode string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_code"`
	Snapshot        string    `gorm:"type:jsonb;not null" json:"snapshot"` // serialized LedgerSnapshot
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}
