package catalog

import (
	"context"

	"github.com/davidquint/raffle-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for raffle items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.RaffleItem) (*models.RaffleItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RaffleItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.RaffleItem, error)
	ListAvailable(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error)
	ListAll(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.RaffleItem) (*models.RaffleItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RaffleItem, error) {
	var item models.RaffleItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.RaffleItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.RaffleItem
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListAvailable(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error) {
	var items []models.RaffleItem
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_available = ?", eventID, true).
		Order("item_number ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListAll(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error) {
	var items []models.RaffleItem
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("item_number ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RaffleItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.RaffleItem{}).Error
}
