package notification

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/models"
)

type fakeUsers struct {
	byID map[string]*models.User
	err  error
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	return f.byID[id], f.err
}

type fakeRecords struct {
	appended []*models.NotificationRecord
	err      error
}

func (f *fakeRecords) AppendNotificationRecord(_ context.Context, rec *models.NotificationRecord) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, rec)
	return nil
}

type fakeSender struct {
	resp *messaging.BatchResponse
	err  error
	got  *messaging.MulticastMessage
}

func (f *fakeSender) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.got = msg
	return f.resp, f.err
}

func userWithTokens(id string, tokens string) *models.User {
	return &models.User{ID: id, FCMTokens: []byte(tokens)}
}

func TestSendPaymentReminder_BuildsMulticast(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"user-1": userWithTokens("user-1", `["tok-a","tok-b"]`),
	}}
	records := &fakeRecords{}
	sender := &fakeSender{resp: &messaging.BatchResponse{SuccessCount: 2}}
	svc := &Service{users: users, records: records, sender: sender, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "user-1", "inv-1", 150.00, "2026-03-13")
	require.NoError(t, err)

	msg := sender.got
	require.NotNil(t, msg)
	require.Equal(t, []string{"tok-a", "tok-b"}, msg.Tokens)
	require.Equal(t, "payment_reminder", msg.Data["type"])
	require.Equal(t, "inv-1", msg.Data["invoiceId"])
	require.Equal(t, "150.00", msg.Data["amount"])
	require.Equal(t, "FLUTTER_NOTIFICATION_CLICK", msg.Data["click_action"])
	require.Equal(t, "high", string(msg.Android.Priority))
	require.Equal(t, "payment_reminders", msg.Android.Notification.ChannelID)
	require.Equal(t, "default", msg.APNS.Payload.Aps.Sound)

	require.Len(t, records.appended, 1)
	require.Equal(t, 2, records.appended[0].SuccessCount)
}

func TestSendPaymentReminder_NoTokensIsNoop(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"user-1": userWithTokens("user-1", `[]`),
	}}
	sender := &fakeSender{}
	svc := &Service{users: users, records: &fakeRecords{}, sender: sender, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "user-1", "inv-1", 10, "2026-03-13")
	require.NoError(t, err)
	require.Nil(t, sender.got, "no multicast without device tokens")
}

func TestSendPaymentReminder_UnknownUserIsNoop(t *testing.T) {
	svc := &Service{users: &fakeUsers{}, records: &fakeRecords{}, sender: &fakeSender{}, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "ghost", "inv-1", 10, "2026-03-13")
	require.NoError(t, err)
}

func TestSendPaymentReminder_PartialFailureStillRecorded(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"user-1": userWithTokens("user-1", `["tok-a","tok-b"]`),
	}}
	records := &fakeRecords{}
	sender := &fakeSender{resp: &messaging.BatchResponse{
		SuccessCount: 1,
		FailureCount: 1,
		Responses: []*messaging.SendResponse{
			{Success: true, MessageID: "m1"},
			{Success: false, Error: errors.New("unregistered token")},
		},
	}}
	svc := &Service{users: users, records: records, sender: sender, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "user-1", "inv-1", 10, "2026-03-13")
	require.NoError(t, err)
	require.Len(t, records.appended, 1)
	require.Equal(t, 1, records.appended[0].FailureCount)
}

func TestSendPaymentReminder_SendFailurePropagates(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"user-1": userWithTokens("user-1", `["tok-a"]`),
	}}
	sender := &fakeSender{err: errors.New("fcm unreachable")}
	svc := &Service{users: users, records: &fakeRecords{}, sender: sender, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "user-1", "inv-1", 10, "2026-03-13")
	require.Error(t, err)
}

func TestSendPaymentReminder_AuditFailureSwallowed(t *testing.T) {
	users := &fakeUsers{byID: map[string]*models.User{
		"user-1": userWithTokens("user-1", `["tok-a"]`),
	}}
	records := &fakeRecords{err: errors.New("store down")}
	sender := &fakeSender{resp: &messaging.BatchResponse{SuccessCount: 1}}
	svc := &Service{users: users, records: records, sender: sender, log: zap.NewNop().Sugar()}

	err := svc.SendPaymentReminder(context.Background(), "user-1", "inv-1", 10, "2026-03-13")
	require.NoError(t, err)
}
