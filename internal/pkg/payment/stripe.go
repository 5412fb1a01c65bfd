package payment

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrMalformedPayload is returned when a card gateway body cannot be decoded
// as an event envelope at all.
var ErrMalformedPayload = errors.New("payment: malformed webhook payload")

type stripeEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type stripeObject struct {
	Customer         string `json:"customer"`
	PeriodEnd        int64  `json:"period_end"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// NormalizeStripeEvent maps a card gateway webhook body to an Event. Unknown
// event types are not errors; they normalize to KindUnhandled so the endpoint
// can acknowledge without acting. Only a body that is not an event envelope
// at all yields ErrMalformedPayload.
func NormalizeStripeEvent(raw []byte, receivedAt time.Time) (*Event, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}

	var envelope stripeEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ErrMalformedPayload
	}

	ev := &Event{
		Provider:   ProviderStripe,
		EventID:    strings.TrimSpace(envelope.ID),
		Kind:       KindUnhandled,
		RawPayload: append([]byte(nil), raw...),
		ReceivedAt: receivedAt,
	}
	if ev.EventID == "" {
		ev.EventID = hashEventID(raw)
	}

	var obj stripeObject
	if len(envelope.Data.Object) > 0 {
		// Absent or unexpected nested fields must not fail the event;
		// they degrade to KindUnhandled below.
		_ = json.Unmarshal(envelope.Data.Object, &obj)
	}
	ev.SubjectRef = strings.TrimSpace(obj.Customer)

	kind := KindUnhandled
	switch strings.TrimSpace(envelope.Type) {
	case "checkout.session.completed", "invoice.paid":
		kind = KindInvoicePaid
	case "invoice.payment_failed":
		kind = KindInvoicePaymentFailed
	case "customer.subscription.deleted":
		kind = KindSubscriptionCanceled
	}
	if kind == KindUnhandled || ev.SubjectRef == "" {
		return ev, nil
	}
	ev.Kind = kind

	end := obj.PeriodEnd
	if end == 0 {
		end = obj.CurrentPeriodEnd
	}
	if end > 0 {
		t := time.Unix(end, 0)
		ev.PeriodEnd = &t
	}
	return ev, nil
}
