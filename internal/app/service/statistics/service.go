package statistics

import (
	"context"

	"gorm.io/gorm"

	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/pkg/types"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type MethodVolume struct {
	PaymentMethod string  `json:"payment_method"`
	Currency      string  `json:"currency"`
	Count         int64   `json:"count"`
	Volume        float64 `json:"volume"`
}

type DailyVolume struct {
	Date   string  `json:"date"`
	Count  int64   `json:"count"`
	Volume float64 `json:"volume"`
}

type Overview struct {
	Invoices            []StatusCount  `json:"invoices"`
	Payments            []MethodVolume `json:"payments"`
	DailyPayments       []DailyVolume  `json:"daily_payments"`
	ActiveSubscriptions int64          `json:"active_subscriptions"`
	RemindersSent       int64          `json:"reminders_sent"`
}

// Service answers the admin overview queries straight from the database.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	out := &Overview{}

	err := s.db.WithContext(ctx).Table((models.Invoice{}).TableName()).
		Select("status, count(*) as count").
		Group("status").
		Order("status").
		Find(&out.Invoices).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("payment_method, currency, count(*) as count, sum(amount) as volume").
		Where("status = ?", types.PaymentStatusCompleted).
		Group("payment_method").
		Group("currency").
		Order("payment_method").
		Find(&out.Payments).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as count, sum(amount) as volume").
		Where("status = ?", types.PaymentStatusCompleted).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date DESC").
		Limit(30).
		Find(&out.DailyPayments).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Table((models.Subscription{}).TableName()).
		Where("status = ?", types.SubscriptionStatusActive).
		Count(&out.ActiveSubscriptions).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Table((models.ReminderLog{}).TableName()).
		Count(&out.RemindersSent).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
