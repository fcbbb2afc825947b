package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/models"
	fb "github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/pkg/logctx"
)

const typePaymentReminder = "payment_reminder"

// Pusher delivers payment-reminder pushes to all of a user's registered
// devices.
type Pusher interface {
	SendPaymentReminder(ctx context.Context, userID, invoiceID string, amount float64, dueDate string) error
}

type Service struct {
	users   store.Users
	records store.NotificationRecords
	sender  fb.MulticastSender
	log     *zap.SugaredLogger
}

func NewService(users store.Users, records store.NotificationRecords, sender fb.MulticastSender, log *zap.SugaredLogger) Pusher {
	return &Service{users: users, records: records, sender: sender, log: log}
}

// SendPaymentReminder builds and sends the multicast push. A user without
// registered tokens is a logged no-op, not an error. Per-token failures do
// not abort the batch; an audit record is appended regardless of partial
// failure.
func (s *Service) SendPaymentReminder(ctx context.Context, userID, invoiceID string, amount float64, dueDate string) error {
	lg := logctx.FromCtx(ctx, s.log)

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		lg.Errorw("push_user_not_found", "user_id", userID, "invoice_id", invoiceID)
		return nil
	}

	tokens := user.DeviceTokens()
	if len(tokens) == 0 {
		lg.Warnw("push_no_device_tokens", "user_id", userID, "invoice_id", invoiceID)
		return nil
	}

	title := "💰 Payment Reminder"
	body := fmt.Sprintf("You have an invoice of $%.2f due soon. Due date: %s", amount, dueDate)
	data := map[string]string{
		"type":         typePaymentReminder,
		"invoiceId":    invoiceID,
		"amount":       fmt.Sprintf("%.2f", amount),
		"dueDate":      dueDate,
		"click_action": "FLUTTER_NOTIFICATION_CLICK",
	}

	msg := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default", Badge: lo.ToPtr(1)},
			},
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "payment_reminders",
			},
		},
	}

	resp, err := s.sender.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send multicast: %w", err)
	}

	lg.Infow("push_sent", "user_id", userID, "invoice_id", invoiceID,
		"success", resp.SuccessCount, "failure", resp.FailureCount)

	if resp.FailureCount > 0 {
		for i, r := range resp.Responses {
			if !r.Success {
				lg.Errorw("push_token_failed", "token", tokens[i], "error", r.Error)
			}
		}
	}

	dataBytes, _ := json.Marshal(data)
	rec := &models.NotificationRecord{
		UserID:       userID,
		InvoiceID:    invoiceID,
		Type:         typePaymentReminder,
		Title:        title,
		Body:         body,
		Data:         datatypes.JSON(dataBytes),
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
		SentAt:       time.Now(),
	}
	if err := s.records.AppendNotificationRecord(ctx, rec); err != nil {
		// Audit write failure does not undo an already-sent push.
		lg.Errorw("push_record_append_failed", "invoice_id", invoiceID, "error", err)
	}

	return nil
}
