package models

import (
	"time"

	"github.com/zenova/wms-billing/pkg/types"
)

// Payment is the authoritative local record of a terminal provider event.
// The primary key is the provider's payment-intent (or order) id, so retried
// webhook deliveries overwrite rather than duplicate. Rows are never deleted.
type Payment struct {
	// IntentID is the provider-side handle (Stripe payment intent id or
	// PayPal order id).
	IntentID string `gorm:"column:intent_id;type:varchar(128);primary_key" json:"intent_id"`
	UserID   string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	// PlanID is set for subscription purchases (card flow); InvoiceID is set
	// for invoice settlements (wallet flow). Either may be empty.
	PlanID        string                `gorm:"column:plan_id;type:varchar(64)" json:"plan_id"`
	InvoiceID     string                `gorm:"column:invoice_id;type:varchar(64);index" json:"invoice_id"`
	Amount        float64               `gorm:"column:amount;not null" json:"amount"`
	Currency      string                `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status        types.PaymentStatus   `gorm:"column:status;type:varchar(32);not null" json:"status"`
	PaymentMethod types.PaymentProvider `gorm:"column:payment_method;type:varchar(32);not null" json:"payment_method"`
	CustomerID    string                `gorm:"column:customer_id;type:varchar(128)" json:"customer_id"`
	FailureReason string                `gorm:"column:failure_reason;type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (Payment) TableName() string { return "payment" }

func (p *Payment) Completed() bool {
	return p != nil && p.Status == types.PaymentStatusCompleted
}
