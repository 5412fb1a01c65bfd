package payment

import "github.com/tuanngo/coursecart/app/models"

// NextOrderStatus returns the status an order moves to for an event kind.
// ok is false when the pair is not a legal transition; callers log and skip
// without failing the request. Re-applying KindOrderPaid to a paid order is
// legal and lands on the same status, so the transition stays idempotent even
// if a duplicate slips past the ledger.
func NextOrderStatus(current string, kind EventKind) (next string, ok bool) {
	switch {
	case kind == KindOrderPaid && current == models.OrderStatusPending:
		return models.OrderStatusPaid, true
	case kind == KindOrderPaid && current == models.OrderStatusPaid:
		return models.OrderStatusPaid, true
	default:
		return current, false
	}
}

// NextSubscriptionStatus returns the status a subscription moves to for an
// event kind. Canceled is terminal; cancellation itself is accepted from any
// non-canceled state.
func NextSubscriptionStatus(current string, kind EventKind) (next string, ok bool) {
	if current == models.SubscriptionStatusCanceled {
		return current, false
	}

	switch kind {
	case KindInvoicePaid:
		switch current {
		case models.SubscriptionStatusIncomplete,
			models.SubscriptionStatusActive,
			models.SubscriptionStatusPastDue:
			return models.SubscriptionStatusActive, true
		}
	case KindInvoicePaymentFailed:
		if current == models.SubscriptionStatusActive {
			return models.SubscriptionStatusPastDue, true
		}
	case KindSubscriptionCanceled:
		return models.SubscriptionStatusCanceled, true
	}
	return current, false
}
