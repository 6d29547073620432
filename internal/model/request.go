package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Urgency levels
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Approval status constants
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Matching status constants
const (
	MatchingUnmatched    = "UNMATCHED"
	MatchingMatched      = "MATCHED"
	MatchingNoMatchFound = "NO_MATCH_FOUND"
)

// ReliefRequest is a citizen-submitted aid request. Approval and matching
// status are decided-once: both only ever move away from their initial value,
// never back.
type ReliefRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	PeopleCount int       `gorm:"type:int;not null" json:"people_count"`
	Urgency     string    `gorm:"type:varchar(20);not null" json:"urgency"` // low, medium, high

	// Request location; required before matching can run.
	Latitude  *decimal.Decimal `gorm:"type:decimal(10,6)" json:"latitude"`
	Longitude *decimal.Decimal `gorm:"type:decimal(10,6)" json:"longitude"`

	PriorityScore int `gorm:"type:int;not null;default:0;index" json:"priority_score"`

	ApprovalStatus  string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"approval_status"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver        *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	DecidedAt       *time.Time `json:"decided_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`

	MatchingStatus    string           `gorm:"type:varchar(20);not null;default:'UNMATCHED';index" json:"matching_status"`
	MatchedResourceID *uuid.UUID       `gorm:"type:uuid" json:"matched_resource_id"`
	MatchedResource   *ResourceStock   `gorm:"foreignKey:MatchedResourceID" json:"matched_resource,omitempty"`
	MatchedDistanceKm *decimal.Decimal `gorm:"type:decimal(10,3)" json:"matched_distance_km"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
