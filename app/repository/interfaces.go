package repository

import (
	"gorm.io/gorm"

	"github.com/tuanngo/coursecart/app/models"
)

// OrderRepository defines the read operations the API surface needs on orders.
// Payment-driven writes go through the payment service, never through here.
type OrderRepository interface {
	GetByInvoice(invoiceNumber string) (*models.Order, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// SubscriptionRepository defines the read operations for subscriptions.
type SubscriptionRepository interface {
	GetByCustomerRef(customerRef string) (*models.Subscription, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// WebhookEventRepository exposes the ledger for the admin surface.
type WebhookEventRepository interface {
	ListRecent(limit int) ([]models.PaymentWebhookEvent, error)
	CountByProvider(provider string) (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	Order        OrderRepository
	Subscription SubscriptionRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates all repositories with the given database connection
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:        NewOrderRepository(db),
		Subscription: NewSubscriptionRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
