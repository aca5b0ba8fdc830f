package models

import (
	"time"

	"github.com/google/uuid"
)

// EventSettings holds the storefront display and policy switches for an event.
type EventSettings struct {
	EventID                  uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey"`
	HeaderImageURL           *string   `gorm:"column:header_image_url"`
	AllowInternationalOrders bool      `gorm:"column:allow_international_orders;not null;default:false"`
	RequireAgeConfirmation   bool      `gorm:"column:require_age_confirmation;not null;default:false"`
	CreatedAt                time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (EventSettings) TableName() string {
	return "event_settings"
}
