package payment

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tuanngo/coursecart/app/models"
)

// fakeRepository keeps everything in maps and counts state writes so tests
// can assert that duplicates and no-ops touch nothing.
type fakeRepository struct {
	events        map[string]*models.PaymentWebhookEvent
	orders        map[string]*models.Order
	subscriptions map[string]*models.Subscription
	nextID        uint
	stateWrites   int
	failCreate    error
	lastCtx       context.Context
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:        map[string]*models.PaymentWebhookEvent{},
		orders:        map[string]*models.Order{},
		subscriptions: map[string]*models.Subscription{},
	}
}

func (f *fakeRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	f.lastCtx = ctx
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(f)
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	if f.failCreate != nil {
		return false, nil, f.failCreate
	}
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := f.events[key]; ok {
		return false, existing, nil
	}
	f.nextID++
	event.ID = f.nextID
	event.AppliedAt = time.Now()
	f.events[key] = event
	return true, event, nil
}

func (f *fakeRepository) GetWebhookEventByID(id uint) (*models.PaymentWebhookEvent, error) {
	for _, ev := range f.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) MarkWebhookEventArchived(id uint) error {
	ev, err := f.GetWebhookEventByID(id)
	if err != nil {
		return err
	}
	now := time.Now()
	ev.ArchivedAt = &now
	return nil
}

func (f *fakeRepository) DeleteWebhookEventsAppliedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCtx = ctx
	var n int64
	for key, ev := range f.events {
		if ev.AppliedAt.Before(cutoff) {
			delete(f.events, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) GetOrderByInvoice(invoiceNumber string) (*models.Order, error) {
	if o, ok := f.orders[invoiceNumber]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SetOrderStatus(order *models.Order, status string) error {
	order.Status = status
	f.orders[order.InvoiceNumber] = order
	f.stateWrites++
	return nil
}

func (f *fakeRepository) GetSubscriptionByCustomerRef(customerRef string) (*models.Subscription, error) {
	if s, ok := f.subscriptions[customerRef]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) SaveSubscription(sub *models.Subscription) error {
	f.subscriptions[sub.CustomerRef] = sub
	f.stateWrites++
	return nil
}

func orderPaidEvent(invoice string) *Event {
	return &Event{
		Provider:   ProviderSePay,
		EventID:    invoice + ":order_paid",
		Kind:       KindOrderPaid,
		SubjectRef: invoice,
		RawPayload: []byte(`{}`),
		ReceivedAt: time.Now(),
	}
}

func subscriptionEvent(kind EventKind, customer, eventID string) *Event {
	return &Event{
		Provider:   ProviderStripe,
		EventID:    eventID,
		Kind:       kind,
		SubjectRef: customer,
		RawPayload: []byte(`{}`),
		ReceivedAt: time.Now(),
	}
}

func TestProcessOrderPaid(t *testing.T) {
	repo := newFakeRepository()
	repo.orders["INV-1"] = &models.Order{InvoiceNumber: "INV-1", Status: models.OrderStatusPending}
	svc := NewService(repo)

	res, err := svc.Process(context.Background(), orderPaidEvent("INV-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeApplied {
		t.Fatalf("expected applied, got %q", res.Outcome)
	}
	if got := repo.orders["INV-1"].Status; got != models.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", got)
	}
	if res.FromStatus != models.OrderStatusPending || res.ToStatus != models.OrderStatusPaid {
		t.Fatalf("unexpected transition %q -> %q", res.FromStatus, res.ToStatus)
	}
}

func TestProcessDuplicateEventIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	repo.orders["INV-1"] = &models.Order{InvoiceNumber: "INV-1", Status: models.OrderStatusPending}
	svc := NewService(repo)

	if _, err := svc.Process(context.Background(), orderPaidEvent("INV-1")); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	writesAfterFirst := repo.stateWrites

	res, err := svc.Process(context.Background(), orderPaidEvent("INV-1"))
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if res.Outcome != OutcomeDuplicate {
		t.Fatalf("expected duplicate outcome, got %q", res.Outcome)
	}
	if repo.stateWrites != writesAfterFirst {
		t.Fatalf("duplicate performed %d extra state writes", repo.stateWrites-writesAfterFirst)
	}
	if got := repo.orders["INV-1"].Status; got != models.OrderStatusPaid {
		t.Fatalf("order status = %q, want paid", got)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(repo.events))
	}
}

func TestProcessUnhandledNeverMutates(t *testing.T) {
	repo := newFakeRepository()
	repo.orders["INV-1"] = &models.Order{InvoiceNumber: "INV-1", Status: models.OrderStatusPending}
	svc := NewService(repo)

	ev := orderPaidEvent("INV-1")
	ev.Kind = KindUnhandled
	ev.EventID = "INV-1:order_refund_requested"

	res, err := svc.Process(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeUnhandled {
		t.Fatalf("expected unhandled outcome, got %q", res.Outcome)
	}
	if repo.stateWrites != 0 {
		t.Fatalf("unhandled event performed %d state writes", repo.stateWrites)
	}
	if got := repo.orders["INV-1"].Status; got != models.OrderStatusPending {
		t.Fatalf("order status mutated to %q", got)
	}
}

func TestProcessNilEvent(t *testing.T) {
	svc := NewService(newFakeRepository())
	res, err := svc.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeUnhandled {
		t.Fatalf("expected unhandled outcome for nil event, got %q", res.Outcome)
	}
}

func TestProcessUnknownInvoice(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	res, err := svc.Process(context.Background(), orderPaidEvent("INV-404"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeUnknownSubject {
		t.Fatalf("expected unknown subject outcome, got %q", res.Outcome)
	}
	if repo.stateWrites != 0 {
		t.Fatalf("unknown invoice performed %d state writes", repo.stateWrites)
	}
}

func TestProcessSubscriptionLifecycle(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	// First paid invoice creates the row and activates it.
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	ev := subscriptionEvent(KindInvoicePaid, "cus_9", "evt_1")
	ev.PeriodEnd = &end
	res, err := svc.Process(ctx, ev)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if res.Outcome != OutcomeApplied {
		t.Fatalf("expected applied, got %q", res.Outcome)
	}
	sub := repo.subscriptions["cus_9"]
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("status = %q, want active", sub.Status)
	}
	if sub.CurrentPeriodEnd == nil || !sub.CurrentPeriodEnd.Equal(end) {
		t.Fatalf("period end = %v, want %v", sub.CurrentPeriodEnd, end)
	}

	// Payment failure moves it to past_due.
	if _, err := svc.Process(ctx, subscriptionEvent(KindInvoicePaymentFailed, "cus_9", "evt_2")); err != nil {
		t.Fatalf("fail event: %v", err)
	}
	if sub.Status != models.SubscriptionStatusPastDue {
		t.Fatalf("status = %q, want past_due", sub.Status)
	}

	// Recovery invoice extends the period and reactivates.
	laterEnd := end.AddDate(0, 1, 0)
	recover := subscriptionEvent(KindInvoicePaid, "cus_9", "evt_3")
	recover.PeriodEnd = &laterEnd
	if _, err := svc.Process(ctx, recover); err != nil {
		t.Fatalf("recover event: %v", err)
	}
	if sub.Status != models.SubscriptionStatusActive {
		t.Fatalf("status = %q, want active", sub.Status)
	}
	if !sub.CurrentPeriodEnd.Equal(laterEnd) {
		t.Fatalf("period end not extended: %v", sub.CurrentPeriodEnd)
	}

	// Cancellation is terminal.
	if _, err := svc.Process(ctx, subscriptionEvent(KindSubscriptionCanceled, "cus_9", "evt_4")); err != nil {
		t.Fatalf("cancel event: %v", err)
	}
	if sub.Status != models.SubscriptionStatusCanceled {
		t.Fatalf("status = %q, want canceled", sub.Status)
	}

	res, err = svc.Process(ctx, subscriptionEvent(KindInvoicePaid, "cus_9", "evt_5"))
	if err != nil {
		t.Fatalf("post-cancel event: %v", err)
	}
	if res.Outcome != OutcomeNoTransition {
		t.Fatalf("expected no transition out of canceled, got %q", res.Outcome)
	}
	if sub.Status != models.SubscriptionStatusCanceled {
		t.Fatalf("canceled subscription mutated to %q", sub.Status)
	}
}

func TestProcessRunsTransactionUnderCallerContext(t *testing.T) {
	repo := newFakeRepository()
	repo.orders["INV-1"] = &models.Order{InvoiceNumber: "INV-1", Status: models.OrderStatusPending}
	svc := NewService(repo)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := svc.Process(ctx, orderPaidEvent("INV-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastCtx != ctx {
		t.Fatalf("transaction did not receive the caller's context")
	}
	if _, ok := repo.lastCtx.Deadline(); !ok {
		t.Fatalf("transaction context carries no deadline")
	}

	canceled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if _, err := svc.Process(canceled, orderPaidEvent("INV-2")); err == nil {
		t.Fatalf("expected canceled context to abort processing")
	}
}

func TestProcessStorageFailureReturnsError(t *testing.T) {
	repo := newFakeRepository()
	repo.failCreate = gorm.ErrInvalidDB
	svc := NewService(repo)

	if _, err := svc.Process(context.Background(), orderPaidEvent("INV-1")); err == nil {
		t.Fatalf("expected storage failure to surface as error")
	}
}

func TestPruneLedger(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Process(ctx, orderPaidEvent("INV-1")); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	n, err := svc.PruneLedger(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 1 || len(repo.events) != 0 {
		t.Fatalf("expected one pruned row, got n=%d remaining=%d", n, len(repo.events))
	}
}
