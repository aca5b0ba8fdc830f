package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// RaffleItem represents one prize listing inside an event's catalog.
type RaffleItem struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID           uuid.UUID        `gorm:"column:event_id;type:uuid;not null"`
	ItemNumber        string           `gorm:"column:item_number;not null"`
	Name              string           `gorm:"column:name;not null"`
	Description       *string          `gorm:"column:description"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURLs         pq.StringArray   `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	Category          string           `gorm:"column:category;not null"`
	Sponsor           *string          `gorm:"column:sponsor"`
	ItemValue         *decimal.Decimal `gorm:"column:item_value;type:numeric(10,2)"`
	IsOver21          bool             `gorm:"column:is_over_21;not null;default:false"`
	IsLocalPickupOnly bool             `gorm:"column:is_local_pickup_only;not null;default:false"`
	DrawCount         int              `gorm:"column:draw_count;not null;default:1"`
	IsAvailable       bool             `gorm:"column:is_available;not null;default:true"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table name.
func (RaffleItem) TableName() string {
	return "raffle_items"
}
