package models

import (
	"time"

	"github.com/zenova/wms-billing/pkg/types"
)

// Subscription tracks a user's plan entitlement. Keyed by (user_id, plan_id)
// with last-writer-wins upserts; reprocessing the same payment event lands on
// the same row.
type Subscription struct {
	ID     string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string                   `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_user_plan,priority:1" json:"user_id"`
	PlanID string                   `gorm:"column:plan_id;type:varchar(64);not null;uniqueIndex:unique_user_plan,priority:2" json:"plan_id"`
	Status types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// PaymentIntentID is the provider intent that most recently activated
	// this subscription.
	PaymentIntentID string    `gorm:"column:payment_intent_id;type:varchar(128);not null" json:"payment_intent_id"`
	StartAt         time.Time `gorm:"column:start_at;not null" json:"start_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

func (s *Subscription) Active() bool {
	return s != nil && s.Status == types.SubscriptionStatusActive
}
