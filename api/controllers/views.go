package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
)

// ItemView is the wire representation of a catalog item.
type ItemView struct {
	ID                uuid.UUID        `json:"id"`
	EventID           uuid.UUID        `json:"event_id"`
	ItemNumber        string           `json:"item_number"`
	Name              string           `json:"name"`
	Description       *string          `json:"description,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	ImageURLs         []string         `json:"image_urls"`
	Category          string           `json:"category"`
	Sponsor           *string          `json:"sponsor,omitempty"`
	ItemValue         *decimal.Decimal `json:"item_value,omitempty"`
	IsOver21          bool             `json:"is_over_21"`
	IsLocalPickupOnly bool             `json:"is_local_pickup_only"`
	DrawCount         int              `json:"draw_count"`
	IsAvailable       bool             `json:"is_available"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// OrderItemView is one purchased line on an order.
type OrderItemView struct {
	ItemID     uuid.UUID       `json:"item_id"`
	ItemNumber string          `json:"item_number"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// OrderView is the wire representation of an order.
type OrderView struct {
	ID              uuid.UUID         `json:"id"`
	EventID         uuid.UUID         `json:"event_id"`
	OrderNumber     string            `json:"order_number"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	Email           string            `json:"email"`
	Phone           string            `json:"phone"`
	Address         string            `json:"address"`
	City            string            `json:"city"`
	State           *string           `json:"state,omitempty"`
	Zip             string            `json:"zip"`
	Country         string            `json:"country"`
	IsInternational bool              `json:"is_international"`
	AgeConfirmed    bool              `json:"age_confirmed"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	TotalTickets    int               `json:"total_tickets"`
	Status          enums.OrderStatus `json:"status"`
	Items           []OrderItemView   `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
}

func eventView(event *models.RaffleEvent) events.EventView {
	return events.EventView{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		Status:      event.Status,
	}
}

func settingsView(settings *models.EventSettings) *events.SettingsView {
	if settings == nil {
		return nil
	}
	return &events.SettingsView{
		EventID:                  settings.EventID,
		HeaderImageURL:           settings.HeaderImageURL,
		AllowInternationalOrders: settings.AllowInternationalOrders,
		RequireAgeConfirmation:   settings.RequireAgeConfirmation,
	}
}

func itemView(item models.RaffleItem) ItemView {
	return ItemView{
		ID:                item.ID,
		EventID:           item.EventID,
		ItemNumber:        item.ItemNumber,
		Name:              item.Name,
		Description:       item.Description,
		Price:             item.Price,
		ImageURLs:         []string(item.ImageURLs),
		Category:          item.Category,
		Sponsor:           item.Sponsor,
		ItemValue:         item.ItemValue,
		IsOver21:          item.IsOver21,
		IsLocalPickupOnly: item.IsLocalPickupOnly,
		DrawCount:         item.DrawCount,
		IsAvailable:       item.IsAvailable,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

func itemViews(items []models.RaffleItem) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(item))
	}
	return views
}

func orderView(order *models.Order) OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, OrderItemView{
			ItemID:     line.ItemID,
			ItemNumber: line.ItemNumber,
			ItemName:   line.ItemName,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
	}
	return OrderView{
		ID:              order.ID,
		EventID:         order.EventID,
		OrderNumber:     order.OrderNumber,
		FirstName:       order.FirstName,
		LastName:        order.LastName,
		Email:           order.Email,
		Phone:           order.Phone,
		Address:         order.Address,
		City:            order.City,
		State:           order.State,
		Zip:             order.Zip,
		Country:         order.Country,
		IsInternational: order.IsInternational,
		AgeConfirmed:    order.AgeConfirmed,
		TotalAmount:     order.TotalAmount,
		TotalTickets:    order.TotalTickets,
		Status:          order.Status,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

func orderViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orderView(&orders[i]))
	}
	return views
}
