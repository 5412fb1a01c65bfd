package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/tuanngo/coursecart/internal/pkg/jobqueue"
	"github.com/tuanngo/coursecart/internal/pkg/metrics/counter"
	"github.com/tuanngo/coursecart/internal/pkg/payment"
)

const webhookProcessTimeout = 15 * time.Second

// paymentProcessor is the slice of the payment service the endpoint drives.
type paymentProcessor interface {
	Process(ctx context.Context, ev *payment.Event) (*payment.Result, error)
}

// WebhookController handles inbound payment notifications. Verification runs
// on the raw body before anything is parsed; every authenticated request is
// acknowledged so the gateways do not retry non-actionable deliveries. Only a
// storage failure answers 5xx.
type WebhookController struct {
	cfg payment.Config
	svc paymentProcessor

	// Swappable for tests; defaults talk to the job queue and Redis.
	enqueueArchive func(ledgerID uint, provider, eventID string) error
	recordOutcome  func(provider, outcome string)
}

// NewWebhookController wires the endpoint with explicit configuration.
func NewWebhookController(cfg payment.Config, svc paymentProcessor) *WebhookController {
	return &WebhookController{
		cfg: cfg,
		svc: svc,
		enqueueArchive: func(ledgerID uint, provider, eventID string) error {
			return jobqueue.GetManager().EnqueuePayloadArchive(ledgerID, provider, eventID)
		},
		recordOutcome: func(provider, outcome string) {
			if err := counter.AddWebhookOutcome(provider, outcome); err != nil {
				log.Debugf("[Webhook] counter increment failed: %v", err)
			}
		},
	}
}

// HandleSePayIPN processes bank-transfer gateway notifications. The gateway
// keeps retrying anything but 200, so once the secret checks out every
// delivery is acknowledged with {"success": true} regardless of content.
func (wc *WebhookController) HandleSePayIPN(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	secretHeader := c.Get(wc.cfg.IPNSecretHeader)
	if !payment.VerifyIPNSecret(secretHeader, wc.cfg.SecretKey) {
		wc.recordOutcome(payment.ProviderSePay, "unauthorized")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false})
	}

	ev, err := payment.NormalizeSePayNotification(rawBody, time.Now())
	if err != nil || ev == nil {
		// Empty probe body; acknowledge without touching state.
		wc.recordOutcome(payment.ProviderSePay, "probe")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookProcessTimeout)
	defer cancel()

	res, err := wc.svc.Process(ctx, ev)
	if err != nil {
		log.Errorf("[Webhook] sepay event %s failed: %v", ev.EventID, err)
		wc.recordOutcome(payment.ProviderSePay, "storage_error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false})
	}

	wc.finishEvent(payment.ProviderSePay, res)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// HandleStripeWebhook processes card gateway webhooks. The signature covers
// the raw bytes, so the body is verified before any JSON parsing.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		wc.recordOutcome(payment.ProviderStripe, "missing_signature")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing_signature"})
	}
	if !payment.VerifyWebhookSignature(rawBody, signature, wc.cfg.SigningSecret, wc.cfg.SignatureTolerance, time.Now()) {
		wc.recordOutcome(payment.ProviderStripe, "unauthorized")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ev, err := payment.NormalizeStripeEvent(rawBody, time.Now())
	if err != nil {
		if errors.Is(err, payment.ErrMalformedPayload) {
			wc.recordOutcome(payment.ProviderStripe, "malformed")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
		log.Errorf("[Webhook] stripe normalize failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}
	if ev == nil {
		wc.recordOutcome(payment.ProviderStripe, "probe")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookProcessTimeout)
	defer cancel()

	res, err := wc.svc.Process(ctx, ev)
	if err != nil {
		log.Errorf("[Webhook] stripe event %s failed: %v", ev.EventID, err)
		wc.recordOutcome(payment.ProviderStripe, "storage_error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storage_unavailable"})
	}

	wc.finishEvent(payment.ProviderStripe, res)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// finishEvent records the outcome counter and schedules the audit archive for
// freshly recorded events. Both are best effort; the provider already has its
// acknowledgment either way.
func (wc *WebhookController) finishEvent(provider string, res *payment.Result) {
	wc.recordOutcome(provider, string(res.Outcome))

	switch res.Outcome {
	case payment.OutcomeDuplicate:
		log.Infof("[Webhook] %s event %s already applied", provider, res.EventID)
		return
	case payment.OutcomeApplied:
		if res.FromStatus != res.ToStatus {
			log.Infof("[Webhook] %s event %s: %s -> %s", provider, res.EventID, res.FromStatus, res.ToStatus)
		}
	case payment.OutcomeNoTransition, payment.OutcomeUnknownSubject, payment.OutcomeNoSubject:
		log.Infof("[Webhook] %s event %s not applied: %s", provider, res.EventID, res.Outcome)
	}

	if res.LedgerID != 0 {
		if err := wc.enqueueArchive(res.LedgerID, provider, res.EventID); err != nil {
			log.Warnf("[Webhook] failed to enqueue archive for event %s: %v", res.EventID, err)
		}
	}
}
