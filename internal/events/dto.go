package events

import (
	"time"

	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/google/uuid"
)

// CreateEventInput captures the fields an operator supplies for a new event.
type CreateEventInput struct {
	Name        string
	Description *string
	StartDate   time.Time
	EndDate     time.Time
	Status      enums.EventStatus
}

// UpdateEventInput carries partial updates; nil fields are untouched.
type UpdateEventInput struct {
	Name        *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *enums.EventStatus
}

// SettingsInput captures the storefront policy switches for an event.
type SettingsInput struct {
	HeaderImageURL           *string
	AllowInternationalOrders bool
	RequireAgeConfirmation   bool
}

// EventView is the storefront representation of an event.
type EventView struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Status      enums.EventStatus `json:"status"`
}

// SettingsView is the storefront representation of event settings.
type SettingsView struct {
	EventID                  uuid.UUID `json:"event_id"`
	HeaderImageURL           *string   `json:"header_image_url,omitempty"`
	AllowInternationalOrders bool      `json:"allow_international_orders"`
	RequireAgeConfirmation   bool      `json:"require_age_confirmation"`
}
