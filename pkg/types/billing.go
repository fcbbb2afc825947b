package types

// PaymentProvider identifies which external processor produced a payment handle.
type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderPayPal PaymentProvider = "paypal"
)

func (p PaymentProvider) Valid() bool {
	switch p {
	case PaymentProviderStripe, PaymentProviderPayPal:
		return true
	}
	return false
}

// InvoiceStatus is the closed set of invoice lifecycle states.
// Allowed transitions: unpaid->overdue, unpaid->paid, overdue->paid.
// canceled is terminal from any non-paid state. Nothing reverses overdue.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid   InvoiceStatus = "unpaid"
	InvoiceStatusOverdue  InvoiceStatus = "overdue"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusCanceled InvoiceStatus = "canceled"
)

// CanTransitionTo reports whether moving from s to next is a legal invoice
// state transition.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceStatusUnpaid:
		return next == InvoiceStatusOverdue || next == InvoiceStatusPaid || next == InvoiceStatusCanceled
	case InvoiceStatusOverdue:
		return next == InvoiceStatusPaid || next == InvoiceStatusCanceled
	case InvoiceStatusPaid, InvoiceStatusCanceled:
		return false
	}
	return false
}

func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCanceled
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)
