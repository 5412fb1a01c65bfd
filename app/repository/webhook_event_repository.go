package repository

import (
	"gorm.io/gorm"

	"github.com/tuanngo/coursecart/app/models"
)

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a ledger repository backed by GORM.
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) ListRecent(limit int) ([]models.PaymentWebhookEvent, error) {
	var events []models.PaymentWebhookEvent
	err := r.db.Order("applied_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *webhookEventRepository) CountByProvider(provider string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentWebhookEvent{}).Where("provider = ?", provider).Count(&count).Error
	return count, err
}
