package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/pkg/tool"
	"github.com/zenova/wms-billing/pkg/types"
)

type gormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return &inv, nil
}

func (s *gormStore) ListDueBefore(ctx context.Context, t time.Time) ([]*models.Invoice, error) {
	var rows []*models.Invoice
	err := s.db.WithContext(ctx).
		Where("status IN ?", []types.InvoiceStatus{types.InvoiceStatusUnpaid, types.InvoiceStatusOverdue}).
		Where("due_at < ?", t).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due invoices: %w", err)
	}
	return rows, nil
}

func (s *gormStore) ListUpcomingDue(ctx context.Context, from, to time.Time) ([]*models.Invoice, error) {
	var rows []*models.Invoice
	err := s.db.WithContext(ctx).
		Where("status = ?", types.InvoiceStatusUnpaid).
		Where("due_at > ? AND due_at <= ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming invoices: %w", err)
	}
	return rows, nil
}

func (s *gormStore) SetInvoiceStatus(ctx context.Context, id string, status types.InvoiceStatus) error {
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to set invoice status: %w", err)
	}
	return nil
}

func (s *gormStore) SavePayment(ctx context.Context, p *models.Payment) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "intent_id"}},
			UpdateAll: true,
		}).
		Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *gormStore) GetPayment(ctx context.Context, intentID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Where("intent_id = ?", intentID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &p, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanPayments implements paginated admin listing with filters.
func (s *gormStore) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}

func (s *gormStore) ActivateSubscription(ctx context.Context, userID, planID, intentID string, at time.Time) error {
	sub := &models.Subscription{
		ID:              tool.GenerateUUIDV7(),
		UserID:          userID,
		PlanID:          planID,
		Status:          types.SubscriptionStatusActive,
		PaymentIntentID: intentID,
		StartAt:         at,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "payment_intent_id", "start_at", "updated_at"}),
		}).
		Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetSubscription(ctx context.Context, userID, planID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ? AND plan_id = ?", userID, planID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) ReminderSentOn(ctx context.Context, invoiceID, sentDate string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ReminderLog{}).
		Where("invoice_id = ? AND sent_date = ?", invoiceID, sentDate).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reminder log: %w", err)
	}
	return count > 0, nil
}

func (s *gormStore) MarkReminderSent(ctx context.Context, invoiceID, sentDate string, at time.Time) error {
	row := &models.ReminderLog{
		ID:        tool.GenerateUUIDV7(),
		InvoiceID: invoiceID,
		SentDate:  sentDate,
		SentAt:    at,
	}
	// DoNothing keeps a concurrent duplicate insert from failing the sweep;
	// the same-day double-send race itself is a documented gap.
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}, {Name: "sent_date"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

func (s *gormStore) AppendNotificationRecord(ctx context.Context, rec *models.NotificationRecord) error {
	if rec.ID == "" {
		rec.ID = tool.GenerateUUIDV7()
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append notification record: %w", err)
	}
	return nil
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}
