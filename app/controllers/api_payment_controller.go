package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/tuanngo/coursecart/app/models"
	"github.com/tuanngo/coursecart/app/repository"
	"github.com/tuanngo/coursecart/internal/pkg/metrics/counter"
	"github.com/tuanngo/coursecart/internal/pkg/payment"
)

// HandleGetOrderStatus returns the current status of an order by invoice
// number. Read-only; status transitions only ever come from webhooks.
func HandleGetOrderStatus(c *fiber.Ctx) error {
	invoice := c.Params("invoice")
	if invoice == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invoice missing"})
	}

	factory := repository.GetGlobalFactory()
	if factory == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}

	order, err := factory.GetOrderRepository().GetByInvoice(invoice)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("order lookup failed for %s: %v", invoice, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{
		"invoice_number": order.InvoiceNumber,
		"amount":         order.Amount,
		"currency":       order.Currency,
		"status":         order.Status,
		"updated_at":     order.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleGetSubscriptionStatus returns the current status of a subscription by
// customer reference.
func HandleGetSubscriptionStatus(c *fiber.Ctx) error {
	customerRef := c.Params("customer")
	if customerRef == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "customer missing"})
	}

	factory := repository.GetGlobalFactory()
	if factory == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}

	sub, err := factory.GetSubscriptionRepository().GetByCustomerRef(customerRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("subscription lookup failed for %s: %v", customerRef, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{
		"customer_ref":       sub.CustomerRef,
		"plan":               sub.Plan,
		"status":             sub.Status,
		"current_period_end": formatTimePtr(sub.CurrentPeriodEnd),
	})
}

// HandleGetWebhookStats returns per-provider outcome counters, ledger totals
// and per-status entity counts for the admin surface.
func HandleGetWebhookStats(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()
	if factory == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}

	stats := fiber.Map{}
	for _, provider := range []string{payment.ProviderSePay, payment.ProviderStripe} {
		outcomes, err := counter.Snapshot(provider)
		if err != nil {
			log.Warnf("webhook counter snapshot failed for %s: %v", provider, err)
			outcomes = map[string]string{}
		}
		total, err := factory.GetWebhookEventRepository().CountByProvider(provider)
		if err != nil {
			log.Errorf("ledger count failed for %s: %v", provider, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
		}
		stats[provider] = fiber.Map{
			"ledger_total": total,
			"outcomes":     outcomes,
		}
	}

	orderStats, err := orderCounts(factory.GetOrderRepository())
	if err != nil {
		log.Errorf("order counts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	stats["orders"] = orderStats

	subStats, err := subscriptionCounts(factory.GetSubscriptionRepository())
	if err != nil {
		log.Errorf("subscription counts failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	stats["subscriptions"] = subStats

	return c.JSON(stats)
}

func orderCounts(repo repository.OrderRepository) (fiber.Map, error) {
	total, err := repo.Count()
	if err != nil {
		return nil, err
	}
	byStatus := fiber.Map{}
	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusPaid,
		models.OrderStatusFailed,
		models.OrderStatusCanceled,
	} {
		n, err := repo.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		byStatus[status] = n
	}
	return fiber.Map{"total": total, "by_status": byStatus}, nil
}

func subscriptionCounts(repo repository.SubscriptionRepository) (fiber.Map, error) {
	total, err := repo.Count()
	if err != nil {
		return nil, err
	}
	byStatus := fiber.Map{}
	for _, status := range []string{
		models.SubscriptionStatusIncomplete,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue,
		models.SubscriptionStatusCanceled,
	} {
		n, err := repo.CountByStatus(status)
		if err != nil {
			return nil, err
		}
		byStatus[status] = n
	}
	return fiber.Map{"total": total, "by_status": byStatus}, nil
}

// HandleListRecentWebhookEvents returns the newest ledger rows for debugging
// delivery problems.
func HandleListRecentWebhookEvents(c *fiber.Ctx) error {
	factory := repository.GetGlobalFactory()
	if factory == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := factory.GetWebhookEventRepository().ListRecent(limit)
	if err != nil {
		log.Errorf("ledger listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	items := make([]fiber.Map, 0, len(events))
	for _, ev := range events {
		items = append(items, fiber.Map{
			"id":          ev.ID,
			"provider":    ev.Provider,
			"event_id":    ev.ProviderEventID,
			"event_type":  ev.EventType,
			"subject_ref": ev.SubjectRef,
			"applied_at":  ev.AppliedAt.UTC().Format(time.RFC3339),
			"archived":    ev.ArchivedAt != nil,
		})
	}
	return c.JSON(fiber.Map{"events": items})
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
