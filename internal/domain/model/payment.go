package model

import "time"

type PaymentStatus string

const (
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusCaptured PaymentStatus = "captured"
)

type Payment struct {
	ID               int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	GatewayPaymentID string        `gorm:"type:varchar(64);not null;index" json:"gateway_payment_id"`
	GatewayOrderID   string        `gorm:"type:varchar(64);not null;index" json:"gateway_order_id"`
	Amount           int64         `gorm:"not null" json:"amount"`
	Currency         string        `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PaymentMethod    string        `gorm:"type:varchar(32)" json:"payment_method"`
	// 同じ支払いイベントを二重処理しないためのキー（uniqueが唯一の防壁）
	IdempotencyKey   string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"-"`
	WebhookProcessed bool      `gorm:"not null;default:false" json:"webhook_processed"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
