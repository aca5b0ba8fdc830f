package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line on an order, snapshotting the item at purchase time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ItemID     uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	ItemNumber string          `gorm:"column:item_number;not null"`
	ItemName   string          `gorm:"column:item_name;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table name.
func (OrderItem) TableName() string {
	return "order_items"
}
