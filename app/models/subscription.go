package models

import "time"

const (
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
)

// Subscription mirrors a card-gateway subscription for one customer. Rows are
// never deleted; cancellation only flips the status.
type Subscription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CustomerRef      string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_customer_ref" json:"customer_ref"`
	Plan             string     `gorm:"type:varchar(50);not null;default:''" json:"plan"`
	Status           string     `gorm:"type:varchar(16);not null;default:'incomplete';index" json:"status"`
	CurrentPeriodEnd *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
