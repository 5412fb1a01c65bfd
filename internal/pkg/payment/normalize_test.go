package payment

import (
	"testing"
	"time"
)

var testReceivedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeSePayNotification(t *testing.T) {
	raw := []byte(`{"notification_type":"order_paid","order":{"order_invoice_number":"INV-1001","order_status":"completed"}}`)

	ev, err := NormalizeSePayNotification(raw, testReceivedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != KindOrderPaid {
		t.Fatalf("expected KindOrderPaid, got %q", ev.Kind)
	}
	if ev.EventID != "INV-1001:order_paid" {
		t.Fatalf("unexpected event id %q", ev.EventID)
	}
	if ev.SubjectRef != "INV-1001" {
		t.Fatalf("unexpected subject ref %q", ev.SubjectRef)
	}
	if ev.Provider != ProviderSePay {
		t.Fatalf("unexpected provider %q", ev.Provider)
	}
}

func TestNormalizeSePayNotificationEmptyBody(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("  \n ")} {
		ev, err := NormalizeSePayNotification(raw, testReceivedAt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev != nil {
			t.Fatalf("expected empty body to yield no event, got %+v", ev)
		}
	}
}

func TestNormalizeSePayNotificationDegradesToUnhandled(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `not-json at all`},
		{name: "unknown type", raw: `{"notification_type":"order_refund_requested","order":{"order_invoice_number":"INV-1"}}`},
		{name: "missing order object", raw: `{"notification_type":"order_paid"}`},
		{name: "missing invoice", raw: `{"notification_type":"order_paid","order":{}}`},
	}

	for _, tt := range tests {
		ev, err := NormalizeSePayNotification([]byte(tt.raw), testReceivedAt)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if ev == nil {
			t.Fatalf("%s: expected an event", tt.name)
		}
		if tt.name == "unknown type" {
			if ev.Kind != KindUnhandled {
				t.Fatalf("%s: expected KindUnhandled, got %q", tt.name, ev.Kind)
			}
			continue
		}
		if ev.Kind != KindUnhandled || ev.EventID == "" {
			t.Fatalf("%s: expected unhandled event with dedupe id, got kind=%q id=%q", tt.name, ev.Kind, ev.EventID)
		}
	}
}

func TestNormalizeSePayNotificationStableHashID(t *testing.T) {
	raw := []byte(`broken payload`)
	a, _ := NormalizeSePayNotification(raw, testReceivedAt)
	b, _ := NormalizeSePayNotification(raw, testReceivedAt.Add(time.Hour))
	if a.EventID != b.EventID {
		t.Fatalf("expected identical broken payloads to share a dedupe id: %q vs %q", a.EventID, b.EventID)
	}
}

func TestNormalizeStripeEvent(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind EventKind
		wantRef  string
	}{
		{
			name:     "invoice paid",
			raw:      `{"id":"evt_1","type":"invoice.paid","data":{"object":{"customer":"cus_9","period_end":1750000000}}}`,
			wantKind: KindInvoicePaid,
			wantRef:  "cus_9",
		},
		{
			name:     "checkout completed",
			raw:      `{"id":"evt_2","type":"checkout.session.completed","data":{"object":{"customer":"cus_9"}}}`,
			wantKind: KindInvoicePaid,
			wantRef:  "cus_9",
		},
		{
			name:     "payment failed",
			raw:      `{"id":"evt_3","type":"invoice.payment_failed","data":{"object":{"customer":"cus_9"}}}`,
			wantKind: KindInvoicePaymentFailed,
			wantRef:  "cus_9",
		},
		{
			name:     "subscription deleted",
			raw:      `{"id":"evt_4","type":"customer.subscription.deleted","data":{"object":{"customer":"cus_9","current_period_end":1750000000}}}`,
			wantKind: KindSubscriptionCanceled,
			wantRef:  "cus_9",
		},
		{
			name:     "unknown type",
			raw:      `{"id":"evt_5","type":"charge.refunded","data":{"object":{"customer":"cus_9"}}}`,
			wantKind: KindUnhandled,
			wantRef:  "cus_9",
		},
		{
			name:     "missing customer",
			raw:      `{"id":"evt_6","type":"invoice.paid","data":{"object":{}}}`,
			wantKind: KindUnhandled,
			wantRef:  "",
		},
		{
			name:     "missing data object",
			raw:      `{"id":"evt_7","type":"invoice.paid"}`,
			wantKind: KindUnhandled,
			wantRef:  "",
		},
	}

	for _, tt := range tests {
		ev, err := NormalizeStripeEvent([]byte(tt.raw), testReceivedAt)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if ev.Kind != tt.wantKind {
			t.Fatalf("%s: kind = %q, want %q", tt.name, ev.Kind, tt.wantKind)
		}
		if ev.SubjectRef != tt.wantRef {
			t.Fatalf("%s: subject = %q, want %q", tt.name, ev.SubjectRef, tt.wantRef)
		}
	}
}

func TestNormalizeStripeEventPeriodEnd(t *testing.T) {
	raw := []byte(`{"id":"evt_1","type":"invoice.paid","data":{"object":{"customer":"cus_9","period_end":1750000000}}}`)
	ev, err := NormalizeStripeEvent(raw, testReceivedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.PeriodEnd == nil || ev.PeriodEnd.Unix() != 1750000000 {
		t.Fatalf("expected period end 1750000000, got %v", ev.PeriodEnd)
	}
}

func TestNormalizeStripeEventMalformed(t *testing.T) {
	if _, err := NormalizeStripeEvent([]byte(`{{not json`), testReceivedAt); err != ErrMalformedPayload {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
	ev, err := NormalizeStripeEvent([]byte(""), testReceivedAt)
	if err != nil || ev != nil {
		t.Fatalf("expected empty body to yield no event, got ev=%v err=%v", ev, err)
	}
}

func TestNormalizeStripeEventMissingIDFallsBackToHash(t *testing.T) {
	raw := []byte(`{"type":"invoice.paid","data":{"object":{"customer":"cus_9"}}}`)
	ev, err := NormalizeStripeEvent(raw, testReceivedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.EventID == "" {
		t.Fatalf("expected a hash fallback event id")
	}
}
