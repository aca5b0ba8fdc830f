package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidquint/raffle-backend/pkg/enums"
)

// Order is the durable record of a submitted checkout.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID         uuid.UUID         `gorm:"column:event_id;type:uuid;not null"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	FirstName       string            `gorm:"column:customer_first_name;not null"`
	LastName        string            `gorm:"column:customer_last_name;not null"`
	Email           string            `gorm:"column:customer_email;not null"`
	Phone           string            `gorm:"column:customer_phone;not null"`
	Address         string            `gorm:"column:customer_address;not null"`
	City            string            `gorm:"column:customer_city;not null"`
	State           *string           `gorm:"column:customer_state"`
	Zip             string            `gorm:"column:customer_zip;not null"`
	Country         string            `gorm:"column:customer_country;not null"`
	IsInternational bool              `gorm:"column:is_international;not null;default:false"`
	AgeConfirmed    bool              `gorm:"column:age_confirmed;not null;default:false"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	TotalTickets    int               `gorm:"column:total_tickets;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table name.
func (Order) TableName() string {
	return "orders"
}
