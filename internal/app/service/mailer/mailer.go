package mailer

import (
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// Sender delivers billing emails. Send failures are non-fatal to callers;
// sweeps log and continue.
type Sender interface {
	SendOverdueReminder(in *OverdueReminderInput) error
}

type OverdueReminderInput struct {
	To          string
	UserName    string
	InvoiceID   string
	Amount      float64
	DueDate     string
	OverdueDays int
}

type Service struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.SugaredLogger
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger) Sender {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}
	return &Service{dialer: d, from: from, log: log}
}

func (s *Service) SendOverdueReminder(in *OverdueReminderInput) error {
	tmpl := OverdueEmail(in.UserName, in.InvoiceID, in.Amount, in.DueDate, in.OverdueDays)

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.from, "Workshop Management"))
	m.SetHeader("To", in.To)
	m.SetHeader("Subject", tmpl.Subject)
	m.SetBody("text/plain", tmpl.Text)
	m.AddAlternative("text/html", tmpl.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.log.Errorw("overdue_email_send_failed", "to", in.To, "invoice_id", in.InvoiceID, "error", err)
		return err
	}
	s.log.Infow("overdue_email_sent", "to", in.To, "invoice_id", in.InvoiceID, "overdue_days", in.OverdueDays)
	return nil
}
