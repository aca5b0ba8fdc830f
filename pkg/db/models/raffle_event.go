package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davidquint/raffle-backend/pkg/enums"
)

// RaffleEvent represents one fundraising raffle run.
type RaffleEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string            `gorm:"column:name;not null"`
	Description *string           `gorm:"column:description"`
	StartDate   time.Time         `gorm:"column:start_date;not null"`
	EndDate     time.Time         `gorm:"column:end_date;not null"`
	Status      enums.EventStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	Settings    *EventSettings    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural table name.
func (RaffleEvent) TableName() string {
	return "raffle_events"
}
