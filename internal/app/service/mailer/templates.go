package mailer

import "fmt"

// urgentAfterDays escalates subject and wording once an invoice is more than
// a week overdue.
const urgentAfterDays = 7

type EmailTemplate struct {
	Subject string
	HTML    string
	Text    string
}

// OverdueEmail renders the overdue-invoice reminder. Tone escalates after
// urgentAfterDays.
func OverdueEmail(userName, invoiceID string, amount float64, dueDate string, overdueDays int) *EmailTemplate {
	urgent := overdueDays > urgentAfterDays

	subjectPrefix := "Reminder: "
	urgencyLevel := "Reminder"
	if urgent {
		subjectPrefix = "URGENT: "
		urgencyLevel = "URGENT"
	}

	subject := fmt.Sprintf("%sInvoice #%s is %d days overdue - Payment Required",
		subjectPrefix, invoiceID, overdueDays)

	urgentBlock := ""
	urgentText := ""
	if urgent {
		urgentBlock = `<p style="color:#d32f2f;font-weight:bold;">IMPORTANT: Your invoice is significantly overdue. Immediate payment is required to avoid account suspension.</p>`
		urgentText = "IMPORTANT: Your invoice is significantly overdue. Immediate payment is required to avoid account suspension.\n\n"
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;line-height:1.6;color:#333;">
  <div style="max-width:600px;margin:0 auto;padding:20px;">
    <div style="padding:20px;text-align:center;background:#f8f9fa;">
      <h2>%s: Payment Overdue</h2>
    </div>
    <div style="padding:30px;background:#fff;">
      <h3>Dear %s,</h3>
      %s
      <p>This is a reminder that your invoice <strong>#%s</strong> was due on <strong>%s</strong> and is now <strong>%d days overdue</strong>.</p>
      <p style="text-align:center;">
        <span style="font-size:24px;color:#dc3545;font-weight:bold;">$%.2f</span><br>
        <span style="color:#666;">%d days overdue</span>
      </p>
      <p style="text-align:center;">
        <a href="wms://invoice/%s" style="background:#dc3545;color:white;padding:12px 24px;text-decoration:none;border-radius:4px;display:inline-block;">Pay Now</a>
      </p>
      <p>If you have already made the payment, please disregard this email. For any questions or payment arrangements, please contact our support team.</p>
      <p>Thank you,<br>Zenova</p>
    </div>
    <div style="padding:20px;text-align:center;font-size:12px;color:#666;">
      <p>This is an automated message, please do not reply to this email.</p>
    </div>
  </div>
</body>
</html>`, urgencyLevel, userName, urgentBlock, invoiceID, dueDate, overdueDays, amount, overdueDays, invoiceID)

	text := fmt.Sprintf(`%sDear %s,

This is a reminder that your invoice #%s was due on %s and is now %d days overdue.

Amount due: $%.2f

If you have already made the payment, please disregard this email.

Thank you,
Zenova`, urgentText, userName, invoiceID, dueDate, overdueDays, amount)

	return &EmailTemplate{Subject: subject, HTML: html, Text: text}
}
