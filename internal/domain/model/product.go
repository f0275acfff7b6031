package model

import "time"

type Product struct {
	SKU                  string    `gorm:"primaryKey;type:varchar(64)" json:"sku"`
	Name                 string    `gorm:"type:varchar(255);not null" json:"name"`
	Description          string    `gorm:"type:text" json:"description"`
	Price                int64     `gorm:"not null" json:"price"`
	Category             string    `gorm:"type:varchar(64);index" json:"category"`
	Collection           string    `gorm:"type:varchar(64);index" json:"collection"`
	Manufacturer         string    `gorm:"type:varchar(128)" json:"manufacturer"`
	MadeIn               string    `gorm:"type:varchar(64)" json:"made_in"`
	ImageURL             string    `gorm:"type:varchar(512)" json:"image_url"`
	FulfillmentProductID string    `gorm:"type:varchar(64)" json:"fulfillment_product_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
