package model

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPaymentVerified OrderStatus = "payment_verified"
	OrderStatusPaymentCaptured OrderStatus = "payment_captured"
	OrderStatusSubmitted       OrderStatus = "submitted"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusInTransit       OrderStatus = "in_transit"
	OrderStatusDelivered       OrderStatus = "delivered"
)

// 配送追跡の対象になるステータス
func ActiveFulfillmentStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusSubmitted,
		OrderStatusShipped,
		OrderStatusInTransit,
	}
}

// submitted以降かどうか（後退防止の判定に使う）
func (s OrderStatus) AtLeastSubmitted() bool {
	switch s {
	case OrderStatusSubmitted, OrderStatusShipped, OrderStatusInTransit, OrderStatusDelivered:
		return true
	}
	return false
}

type Order struct {
	OrderID            string      `gorm:"primaryKey;type:varchar(64)" json:"order_id"`
	CustomerEmail      string      `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerName       string      `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone      string      `gorm:"type:varchar(32)" json:"customer_phone"`
	ShippingAddress    string      `gorm:"type:text;not null" json:"shipping_address"`
	ShippingCity       string      `gorm:"type:varchar(128)" json:"shipping_city"`
	ShippingState      string      `gorm:"type:varchar(128)" json:"shipping_state"`
	ShippingPincode    string      `gorm:"type:varchar(16)" json:"shipping_pincode"`
	Items              []OrderItem `gorm:"foreignKey:OrderID;references:OrderID" json:"items"`
	TotalAmount        int64       `gorm:"not null" json:"total_amount"`
	Status             OrderStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	GatewayOrderID     string      `gorm:"type:varchar(64);index" json:"gateway_order_id"`
	FulfillmentOrderID string      `gorm:"type:varchar(64)" json:"fulfillment_order_id,omitempty"`
	TrackingNumber     string      `gorm:"type:varchar(64)" json:"tracking_number,omitempty"`
	Notes              string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt          time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
