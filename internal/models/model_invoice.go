package models

import (
	"time"

	"github.com/zenova/wms-billing/pkg/types"
)

// Invoice is a billable document owned by a user. Status moves
// unpaid->overdue->paid (or unpaid->paid directly); canceled is terminal from
// any non-paid state. The overdue sweep owns the unpaid->overdue transition,
// payment completion owns ->paid.
type Invoice struct {
	ID          string              `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	UserID      string              `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	TotalAmount float64             `gorm:"column:total_amount;not null" json:"total_amount"`
	Currency    string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Description string              `gorm:"column:description;type:text" json:"description"`
	Status      types.InvoiceStatus `gorm:"column:status;type:varchar(32);not null;index:idx_invoice_status_due" json:"status"`
	DueAt       time.Time           `gorm:"column:due_at;not null;index:idx_invoice_status_due" json:"due_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoice" }

// OverdueDaysAt returns the whole days the invoice is past due at now,
// truncated toward zero. Zero or negative means not yet a full day overdue.
func (inv *Invoice) OverdueDaysAt(now time.Time) int {
	return int(now.Sub(inv.DueAt).Hours() / 24)
}
