package payment

import "time"

const (
	ProviderSePay  = "sepay"
	ProviderStripe = "stripe"
)

// EventKind is the provider-neutral classification of an inbound notification.
type EventKind string

const (
	KindOrderPaid            EventKind = "order_paid"
	KindInvoicePaid          EventKind = "invoice_paid"
	KindInvoicePaymentFailed EventKind = "invoice_payment_failed"
	KindSubscriptionCanceled EventKind = "subscription_canceled"
	KindUnhandled            EventKind = "unhandled"
)

// Event is the normalized shape both gateways are mapped into before any
// state is touched.
type Event struct {
	Provider   string
	EventID    string
	Kind       EventKind
	SubjectRef string
	// PeriodEnd carries the new billing period end for invoice events,
	// when the provider reported one.
	PeriodEnd  *time.Time
	RawPayload []byte
	ReceivedAt time.Time
}

// Outcome describes what processing an event did.
type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeUnhandled      Outcome = "unhandled"
	OutcomeNoSubject      Outcome = "no_subject"
	OutcomeNoTransition   Outcome = "no_transition"
	OutcomeUnknownSubject Outcome = "unknown_subject"
)

// Result reports the processing outcome for one notification.
type Result struct {
	Outcome  Outcome
	EventID  string
	LedgerID uint
	// FromStatus/ToStatus are set when a transition was applied.
	FromStatus string
	ToStatus   string
}
