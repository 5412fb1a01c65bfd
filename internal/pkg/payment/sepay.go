package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

type sepayOrder struct {
	InvoiceNumber string `json:"order_invoice_number"`
	Status        string `json:"order_status"`
}

type sepayNotification struct {
	NotificationType string      `json:"notification_type"`
	Order            *sepayOrder `json:"order"`
}

// NormalizeSePayNotification maps a bank-transfer IPN body to an Event. The
// gateway probes with empty bodies, so an empty body yields (nil, nil) and
// the endpoint still acknowledges. Bodies that fail to parse or lack an
// invoice number degrade to KindUnhandled; the gateway contract is to always
// acknowledge once the secret checked out.
func NormalizeSePayNotification(raw []byte, receivedAt time.Time) (*Event, error) {
	body := strings.TrimSpace(string(raw))
	if body == "" {
		return nil, nil
	}

	ev := &Event{
		Provider:   ProviderSePay,
		Kind:       KindUnhandled,
		RawPayload: append([]byte(nil), raw...),
		ReceivedAt: receivedAt,
	}

	var n sepayNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		ev.EventID = hashEventID(raw)
		return ev, nil
	}

	notificationType := strings.ToLower(strings.TrimSpace(n.NotificationType))
	invoice := ""
	if n.Order != nil {
		invoice = strings.TrimSpace(n.Order.InvoiceNumber)
	}
	if notificationType == "" || invoice == "" {
		ev.EventID = hashEventID(raw)
		return ev, nil
	}

	// The gateway guarantees no native event id; (invoice, type) is the
	// dedupe key used in its place.
	ev.EventID = invoice + ":" + notificationType
	ev.SubjectRef = invoice

	switch notificationType {
	case "order_paid", "order.paid", "payment_success":
		ev.Kind = KindOrderPaid
	default:
		ev.Kind = KindUnhandled
	}
	return ev, nil
}

// hashEventID derives a stable dedupe key for payloads that carry no usable
// identifier, so re-deliveries of the same broken body stay a no-op.
func hashEventID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return "hash:" + hex.EncodeToString(sum[:])
}
