package payment

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tuanngo/coursecart/app/models"
)

// Repository provides the DB operations used by the payment service.
type Repository interface {
	// Transaction runs fn against a repository bound to one DB transaction
	// carrying ctx, so the caller's deadline bounds every statement inside.
	// The ledger insert and the state write always commit together.
	Transaction(ctx context.Context, fn func(Repository) error) error

	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	GetWebhookEventByID(id uint) (*models.PaymentWebhookEvent, error)
	MarkWebhookEventArchived(id uint) error
	DeleteWebhookEventsAppliedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	GetOrderByInvoice(invoiceNumber string) (*models.Order, error)
	SetOrderStatus(order *models.Order, status string) error

	GetSubscriptionByCustomerRef(customerRef string) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetWebhookEventByID(id uint) (*models.PaymentWebhookEvent, error) {
	var event models.PaymentWebhookEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormRepository) MarkWebhookEventArchived(id uint) error {
	now := time.Now()
	return r.db.Model(&models.PaymentWebhookEvent{}).
		Where("id = ?", id).
		Update("archived_at", &now).Error
}

func (r *gormRepository) DeleteWebhookEventsAppliedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("applied_at < ?", cutoff).Delete(&models.PaymentWebhookEvent{})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) GetOrderByInvoice(invoiceNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("invoice_number = ?", invoiceNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) SetOrderStatus(order *models.Order, status string) error {
	order.Status = status
	return r.db.Model(order).Update("status", status).Error
}

func (r *gormRepository) GetSubscriptionByCustomerRef(customerRef string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("customer_ref = ?", customerRef).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}
