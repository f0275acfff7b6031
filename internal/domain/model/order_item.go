package model

import "time"

type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   string    `gorm:"type:varchar(64);not null;index" json:"order_id"`
	SKU       string    `gorm:"type:varchar(64);not null" json:"sku"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"price"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
