package models

import "time"

// PaymentWebhookEvent is the idempotency ledger. A row for
// (provider, provider_event_id) means the corresponding side effect has been
// durably applied; the unique index makes the insert the atomic
// check-and-set for duplicate deliveries.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_payment_webhook_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;index:ux_payment_webhook_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	SubjectRef      string     `gorm:"type:varchar(191);not null;default:''" json:"subject_ref"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ArchivedAt      *time.Time `gorm:"type:timestamp;default:null" json:"archived_at,omitempty"`
	AppliedAt       time.Time  `gorm:"autoCreateTime;index" json:"applied_at"`
}
