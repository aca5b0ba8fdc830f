package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyerDetails is the checkout form payload supplied by the buyer.
type BuyerDetails struct {
	FirstName    string `json:"first_name" validate:"required,max=100"`
	LastName     string `json:"last_name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	ConfirmEmail string `json:"confirm_email" validate:"required"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Address      string `json:"address" validate:"required,max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"omitempty,max=100"`
	Zip          string `json:"zip" validate:"required,max=20"`
	Country      string `json:"country" validate:"required,max=100"`
	AgeConfirmed bool   `json:"age_confirmed"`
}

// OrderCreatedEvent is emitted once an order and its lines are durable.
type OrderCreatedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	EventID      uuid.UUID       `json:"event_id"`
	Email        string          `json:"email"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	TotalTickets int             `json:"total_tickets"`
}
