package payment

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/tuanngo/coursecart/app/models"
)

// Service applies verified, normalized payment events to orders and
// subscriptions exactly once.
type Service struct {
	repo Repository
}

// NewService creates a payment service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// Process records ev in the idempotency ledger and applies the resulting
// state transition in one transaction. A duplicate event id is a success
// no-op. A non-nil error means the persistence layer failed and nothing was
// committed; the caller should answer 5xx so the provider retries.
func (s *Service) Process(ctx context.Context, ev *Event) (*Result, error) {
	if ev == nil {
		return &Result{Outcome: OutcomeUnhandled}, nil
	}

	var res *Result
	err := s.repo.Transaction(ctx, func(r Repository) error {
		row := &models.PaymentWebhookEvent{
			Provider:        ev.Provider,
			ProviderEventID: ev.EventID,
			EventType:       string(ev.Kind),
			SubjectRef:      ev.SubjectRef,
			PayloadJSON:     string(ev.RawPayload),
		}
		created, stored, err := r.CreateWebhookEventIfNotExists(row)
		if err != nil {
			return err
		}
		if !created {
			res = &Result{Outcome: OutcomeDuplicate, EventID: ev.EventID, LedgerID: stored.ID}
			return nil
		}

		res = &Result{EventID: ev.EventID, LedgerID: stored.ID}
		switch ev.Kind {
		case KindUnhandled:
			res.Outcome = OutcomeUnhandled
			return nil
		case KindOrderPaid:
			return s.applyOrderEvent(r, ev, res)
		default:
			return s.applySubscriptionEvent(r, ev, res)
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) applyOrderEvent(r Repository, ev *Event, res *Result) error {
	if ev.SubjectRef == "" {
		res.Outcome = OutcomeNoSubject
		return nil
	}

	order, err := r.GetOrderByInvoice(ev.SubjectRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[payment] %s event %s references unknown invoice %s", ev.Provider, ev.EventID, ev.SubjectRef)
			res.Outcome = OutcomeUnknownSubject
			return nil
		}
		return err
	}

	next, ok := NextOrderStatus(order.Status, ev.Kind)
	if !ok {
		log.Infof("[payment] ignoring %s for order %s in status %s", ev.Kind, order.InvoiceNumber, order.Status)
		res.Outcome = OutcomeNoTransition
		return nil
	}
	res.FromStatus = order.Status
	res.ToStatus = next
	if next == order.Status {
		res.Outcome = OutcomeApplied
		return nil
	}
	if err := r.SetOrderStatus(order, next); err != nil {
		return err
	}
	res.Outcome = OutcomeApplied
	return nil
}

func (s *Service) applySubscriptionEvent(r Repository, ev *Event, res *Result) error {
	if ev.SubjectRef == "" {
		res.Outcome = OutcomeNoSubject
		return nil
	}

	sub, err := r.GetSubscriptionByCustomerRef(ev.SubjectRef)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if ev.Kind != KindInvoicePaid {
			log.Warnf("[payment] %s event %s references unknown customer %s", ev.Provider, ev.EventID, ev.SubjectRef)
			res.Outcome = OutcomeUnknownSubject
			return nil
		}
		// First successful checkout creates the subscription row.
		sub = &models.Subscription{
			CustomerRef: ev.SubjectRef,
			Status:      models.SubscriptionStatusIncomplete,
		}
	}

	next, ok := NextSubscriptionStatus(sub.Status, ev.Kind)
	if !ok {
		log.Infof("[payment] ignoring %s for subscription %s in status %s", ev.Kind, sub.CustomerRef, sub.Status)
		res.Outcome = OutcomeNoTransition
		return nil
	}

	res.FromStatus = sub.Status
	res.ToStatus = next
	sub.Status = next
	if ev.Kind == KindInvoicePaid && ev.PeriodEnd != nil {
		sub.CurrentPeriodEnd = ev.PeriodEnd
	}
	if err := r.SaveSubscription(sub); err != nil {
		return err
	}
	res.Outcome = OutcomeApplied
	return nil
}

// PruneLedger deletes applied-event rows older than cutoff. Correctness never
// depends on pruning; the retention window only has to outlive the providers'
// redelivery horizon.
func (s *Service) PruneLedger(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteWebhookEventsAppliedBefore(ctx, cutoff)
}

// Repo exposes the underlying repository for collaborators that share it.
func (s *Service) Repo() Repository {
	return s.repo
}
