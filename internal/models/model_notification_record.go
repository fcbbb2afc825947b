package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationRecord is the append-only audit trail of push delivery
// attempts. Written regardless of partial failure; never read back by the
// core.
type NotificationRecord struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	InvoiceID string `gorm:"column:invoice_id;type:varchar(64);not null" json:"invoice_id"`
	Type      string `gorm:"column:type;type:varchar(64);not null" json:"type"`
	Title     string `gorm:"column:title;type:text" json:"title"`
	Body      string `gorm:"column:body;type:text" json:"body"`
	// Data snapshots the structured payload sent with the push.
	Data         datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	SuccessCount int            `gorm:"column:success_count;not null" json:"success_count"`
	FailureCount int            `gorm:"column:failure_count;not null" json:"failure_count"`
	SentAt       time.Time      `gorm:"column:sent_at;not null" json:"sent_at"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (NotificationRecord) TableName() string { return "notification_record" }
