package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/internal/app/service/mailer"
	"github.com/zenova/wms-billing/internal/app/service/notification"
	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/models"
	cfgpkg "github.com/zenova/wms-billing/pkg/config"
	"github.com/zenova/wms-billing/pkg/logctx"
	"github.com/zenova/wms-billing/pkg/types"
)

const dateLayout = "2006-01-02"

var (
	overdueMarkedCnt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_invoices_marked_overdue_total",
		Help: "Invoices transitioned unpaid->overdue by the sweep.",
	})
	overdueEmailCnt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_overdue_emails_total",
		Help: "Overdue reminder emails sent.",
	})
	upcomingPushCnt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billing_upcoming_pushes_total",
		Help: "Upcoming-due push reminders sent.",
	})
)

// Service runs the two periodic sweeps. It holds no state across runs;
// every run reloads from the store, which is what makes repeated and
// overlapping executions safe (to the documented extent).
type Service struct {
	invoices store.Invoices
	logs     store.ReminderLogs
	users    store.Users
	pusher   notification.Pusher
	mail     mailer.Sender
	cfg      *cfgpkg.Config
	loc      *time.Location
	log      *zap.SugaredLogger

	now func() time.Time
}

func NewService(invoices store.Invoices, logs store.ReminderLogs, users store.Users, pusher notification.Pusher, mail mailer.Sender, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{
		invoices: invoices,
		logs:     logs,
		users:    users,
		pusher:   pusher,
		mail:     mail,
		cfg:      cfg,
		loc:      cfg.DayLocation(),
		log:      log,
		now:      time.Now,
	}
}

// SweepOverdue classifies past-due invoices: transitions unpaid ones to
// overdue and emails the owner on every Nth overdue day. The modulo check
// against wall-clock overdue days at sweep time is the entire cadence guard;
// concurrent runs landing on the same overdue day can double-send. That gap
// is accepted, not guaranteed against.
func (s *Service) SweepOverdue(ctx context.Context) error {
	lg := logctx.FromCtx(ctx, s.log)
	now := s.now()

	invs, err := s.invoices.ListDueBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("overdue sweep query failed: %w", err)
	}
	lg.Infow("overdue_sweep_started", "candidates", len(invs))

	for _, inv := range invs {
		if inv.Status != types.InvoiceStatusOverdue {
			if err := s.invoices.SetInvoiceStatus(ctx, inv.ID, types.InvoiceStatusOverdue); err != nil {
				lg.Errorw("overdue_transition_failed", "invoice_id", inv.ID, "error", err)
				continue
			}
			overdueMarkedCnt.Inc()
			lg.Infow("invoice_marked_overdue", "invoice_id", inv.ID)
		}

		days := inv.OverdueDaysAt(now)
		if days > 0 && days%s.cfg.Reminder.OverdueEmailEveryDays == 0 {
			s.sendOverdueEmail(ctx, inv, days)
		}
	}
	return nil
}

// sendOverdueEmail is best-effort: a missing user, missing email, or send
// failure is logged and skipped, never failing the sweep.
func (s *Service) sendOverdueEmail(ctx context.Context, inv *models.Invoice, overdueDays int) {
	lg := logctx.FromCtx(ctx, s.log)

	user, err := s.users.GetUser(ctx, inv.UserID)
	if err != nil {
		lg.Errorw("overdue_email_user_load_failed", "invoice_id", inv.ID, "user_id", inv.UserID, "error", err)
		return
	}
	if user == nil {
		lg.Errorw("overdue_email_user_not_found", "invoice_id", inv.ID, "user_id", inv.UserID)
		return
	}
	if user.Email == "" {
		lg.Errorw("overdue_email_no_address", "invoice_id", inv.ID, "user_id", inv.UserID)
		return
	}

	name := user.DisplayName
	if name == "" {
		name = "Customer"
	}

	err = s.mail.SendOverdueReminder(&mailer.OverdueReminderInput{
		To:          user.Email,
		UserName:    name,
		InvoiceID:   inv.ID,
		Amount:      inv.TotalAmount,
		DueDate:     inv.DueAt.In(s.loc).Format(dateLayout),
		OverdueDays: overdueDays,
	})
	if err != nil {
		lg.Errorw("overdue_email_failed", "invoice_id", inv.ID, "error", err)
		return
	}
	overdueEmailCnt.Inc()
}

// SweepUpcoming reminds about unpaid invoices due within the configured
// window. The (invoice, calendar day) reminder log guarantees at most one
// push per invoice per day no matter how often the sweep runs that day; it
// offers nothing across days.
func (s *Service) SweepUpcoming(ctx context.Context) error {
	lg := logctx.FromCtx(ctx, s.log)
	now := s.now()
	windowEnd := now.Add(time.Duration(s.cfg.Reminder.UpcomingWindowDays) * 24 * time.Hour)

	invs, err := s.invoices.ListUpcomingDue(ctx, now, windowEnd)
	if err != nil {
		return fmt.Errorf("upcoming sweep query failed: %w", err)
	}
	lg.Infow("upcoming_sweep_started", "candidates", len(invs))

	today := now.In(s.loc).Format(dateLayout)
	for _, inv := range invs {
		sent, err := s.logs.ReminderSentOn(ctx, inv.ID, today)
		if err != nil {
			lg.Errorw("reminder_log_check_failed", "invoice_id", inv.ID, "error", err)
			continue
		}
		if sent {
			continue
		}

		dueDate := inv.DueAt.In(s.loc).Format(dateLayout)
		if err := s.pusher.SendPaymentReminder(ctx, inv.UserID, inv.ID, inv.TotalAmount, dueDate); err != nil {
			lg.Errorw("upcoming_push_failed", "invoice_id", inv.ID, "error", err)
			continue
		}
		upcomingPushCnt.Inc()

		if err := s.logs.MarkReminderSent(ctx, inv.ID, today, now); err != nil {
			// The push went out; a failed log write can only cause an extra
			// reminder on a later run today.
			lg.Errorw("reminder_log_write_failed", "invoice_id", inv.ID, "error", err)
		}
	}
	return nil
}
