package models

import "time"

// ReminderLog marks that a push reminder went out for an invoice on a given
// calendar day. The unique (invoice_id, sent_date) key is the sole per-day
// dedup mechanism; rows are never mutated or deleted.
type ReminderLog struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	InvoiceID string `gorm:"column:invoice_id;type:varchar(64);not null;uniqueIndex:unique_invoice_sent_date,priority:1" json:"invoice_id"`
	// SentDate is the calendar day (YYYY-MM-DD) in the configured timezone.
	SentDate  string    `gorm:"column:sent_date;type:varchar(10);not null;uniqueIndex:unique_invoice_sent_date,priority:2" json:"sent_date"`
	SentAt    time.Time `gorm:"column:sent_at;not null" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (ReminderLog) TableName() string { return "reminder_log" }
