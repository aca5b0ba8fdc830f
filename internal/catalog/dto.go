package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateItemInput captures the fields an operator supplies for a new item.
type CreateItemInput struct {
	EventID           uuid.UUID
	ItemNumber        string
	Name              string
	Description       *string
	Price             decimal.Decimal
	ImageURLs         []string
	Category          string
	Sponsor           *string
	ItemValue         *decimal.Decimal
	IsOver21          bool
	IsLocalPickupOnly bool
	DrawCount         int
	IsAvailable       bool
}

// UpdateItemInput carries partial updates; nil fields are untouched.
type UpdateItemInput struct {
	ItemNumber        *string
	Name              *string
	Description       *string
	Price             *decimal.Decimal
	ImageURLs         []string
	Category          *string
	Sponsor           *string
	ItemValue         *decimal.Decimal
	IsOver21          *bool
	IsLocalPickupOnly *bool
	DrawCount         *int
	IsAvailable       *bool
}
