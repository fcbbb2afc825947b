package store

import (
	"context"
	"time"

	"github.com/zenova/wms-billing/internal/models"
	"github.com/zenova/wms-billing/pkg/types"
)

// The document store is an external collaborator: core services depend on
// these narrow interfaces so tests can substitute fakes. Lookup methods
// return (nil, nil) when no record exists; absence is not an error at this
// layer.

type Invoices interface {
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	// ListDueBefore returns invoices with status unpaid or overdue whose due
	// timestamp is strictly before t.
	ListDueBefore(ctx context.Context, t time.Time) ([]*models.Invoice, error)
	// ListUpcomingDue returns unpaid invoices due after from and up to to
	// (exclusive of already-past-due, inclusive of the window end).
	ListUpcomingDue(ctx context.Context, from, to time.Time) ([]*models.Invoice, error)
	SetInvoiceStatus(ctx context.Context, id string, status types.InvoiceStatus) error
}

type Payments interface {
	// SavePayment overwrites by intent id, which is what makes retried
	// webhook deliveries idempotent.
	SavePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, intentID string) (*models.Payment, error)
	ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error)
}

type Subscriptions interface {
	// ActivateSubscription upserts the (user, plan) row to active with the
	// triggering intent id. Last writer wins.
	ActivateSubscription(ctx context.Context, userID, planID, intentID string, at time.Time) error
	GetSubscription(ctx context.Context, userID, planID string) (*models.Subscription, error)
}

type ReminderLogs interface {
	ReminderSentOn(ctx context.Context, invoiceID, sentDate string) (bool, error)
	MarkReminderSent(ctx context.Context, invoiceID, sentDate string, at time.Time) error
}

type NotificationRecords interface {
	AppendNotificationRecord(ctx context.Context, rec *models.NotificationRecord) error
}

type Users interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Store aggregates every persistence concern of the service.
type Store interface {
	Invoices
	Payments
	Subscriptions
	ReminderLogs
	NotificationRecords
	Users
}

// Scan payments request/response (admin listing).
type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}
