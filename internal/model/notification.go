package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification category constants
const (
	NotifNewRequest   = "NEW_REQUEST"
	NotifApproved     = "APPROVED"
	NotifRejected     = "REJECTED"
	NotifDistribution = "DISTRIBUTION"
	NotifEmergency    = "EMERGENCY"
)

// Notification is a single message to a single recipient. Rows are never
// deleted; only the read/delivery flags flip after creation.
type Notification struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender     *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uuid.UUID      `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver   *User          `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	RequestID  *uuid.UUID     `gorm:"type:uuid;index" json:"request_id"`
	Request    *ReliefRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Category   string         `gorm:"type:varchar(30);not null;index" json:"category"`
	Title      string         `gorm:"type:varchar(255);not null" json:"title"`
	Body       string         `gorm:"type:text;not null" json:"body"`
	Read       bool           `gorm:"default:false" json:"read"`
	EmailSent  bool           `gorm:"default:false" json:"email_sent"`
	SmsSent    bool           `gorm:"default:false" json:"sms_sent"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
