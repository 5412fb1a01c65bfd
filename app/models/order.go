package models

import "time"

const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusFailed   = "failed"
	OrderStatusCanceled = "canceled"
)

// Order is a checkout order created by the shop frontend. Payment-driven
// status transitions are owned exclusively by the webhook endpoint.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InvoiceNumber string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_invoice_number" json:"invoice_number"`
	Amount        int64     `gorm:"not null;default:0" json:"amount"`
	Currency      string    `gorm:"type:varchar(8);not null;default:'VND'" json:"currency"`
	Status        string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
