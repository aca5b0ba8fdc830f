package outbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/davidquint/raffle-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("db handle required")
	}
	return tx.Create(&event).Error
}

func (r *Repository) FetchUnpublished(limit int) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.db.Where("published_at IS NULL AND status = ?", enums.OutboxStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkPublished(id uuid.UUID) error {
	return r.db.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"published_at": time.Now(),
			"status":       enums.OutboxStatusPublished,
		}).Error
}

func (r *Repository) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	tx := r.db.
		Where("status = ? AND published_at < ?", enums.OutboxStatusPublished, cutoff).
		Delete(&models.OutboxEvent{})
	return tx.RowsAffected, tx.Error
}

func (r *Repository) MarkFailed(id uuid.UUID, err error, maxAttempts int) error {
	updates := map[string]any{
		"last_error":    err.Error(),
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	tx := r.db.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if maxAttempts > 0 {
		return r.db.Model(&models.OutboxEvent{}).
			Where("id = ? AND attempt_count >= ?", id, maxAttempts).
			Update("status", enums.OutboxStatusFailed).Error
	}
	return nil
}
