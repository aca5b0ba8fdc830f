package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbpkg "github.com/davidquint/raffle-backend/pkg/db"
	"github.com/davidquint/raffle-backend/pkg/db/models"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Service exposes catalog reads for the storefront and item CRUD for the console.
type Service interface {
	ListAvailable(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RaffleItem, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]models.RaffleItem, error)
	Create(ctx context.Context, input CreateItemInput) (*models.RaffleItem, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.RaffleItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error)
	AttachImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.RaffleItem, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAvailable(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error) {
	items, err := s.repo.ListAvailable(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing available items")
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RaffleItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}
	return item, nil
}

func (s *service) GetMany(ctx context.Context, ids []uuid.UUID) ([]models.RaffleItem, error) {
	items, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading items")
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.RaffleItem, error) {
	if err := validateItemFields(input.ItemNumber, input.Name, input.Category, input.DrawCount); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.EventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}

	item := &models.RaffleItem{
		EventID:           input.EventID,
		ItemNumber:        strings.TrimSpace(input.ItemNumber),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		Price:             input.Price,
		ImageURLs:         pq.StringArray(input.ImageURLs),
		Category:          strings.TrimSpace(input.Category),
		Sponsor:           input.Sponsor,
		ItemValue:         input.ItemValue,
		IsOver21:          input.IsOver21,
		IsLocalPickupOnly: input.IsLocalPickupOnly,
		DrawCount:         input.DrawCount,
		IsAvailable:       input.IsAvailable,
	}
	if item.ImageURLs == nil {
		item.ImageURLs = pq.StringArray{}
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_raffle_items_event_item_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item number already used for this event")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating item")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.RaffleItem, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.ItemNumber != nil {
		if strings.TrimSpace(*input.ItemNumber) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item number cannot be empty")
		}
		updates["item_number"] = strings.TrimSpace(*input.ItemNumber)
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *input.Price
	}
	if input.ImageURLs != nil {
		updates["image_urls"] = pq.StringArray(input.ImageURLs)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Sponsor != nil {
		updates["sponsor"] = *input.Sponsor
	}
	if input.ItemValue != nil {
		updates["item_value"] = *input.ItemValue
	}
	if input.IsOver21 != nil {
		updates["is_over_21"] = *input.IsOver21
	}
	if input.IsLocalPickupOnly != nil {
		updates["is_local_pickup_only"] = *input.IsLocalPickupOnly
	}
	if input.DrawCount != nil {
		if *input.DrawCount < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "draw count must be at least 1")
		}
		updates["draw_count"] = *input.DrawCount
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_raffle_items_event_item_number") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item number already used for this event")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating item")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting item")
	}
	return nil
}

func (s *service) ListAll(ctx context.Context, eventID uuid.UUID) ([]models.RaffleItem, error) {
	items, err := s.repo.ListAll(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing items")
	}
	return items, nil
}

func (s *service) AttachImage(ctx context.Context, id uuid.UUID, imageURL string) (*models.RaffleItem, error) {
	if imageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	urls := append([]string(item.ImageURLs), imageURL)
	if err := s.repo.Update(ctx, id, map[string]any{"image_urls": pq.StringArray(urls)}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attaching image")
	}
	return s.Get(ctx, id)
}

func validateItemFields(itemNumber, name, category string, drawCount int) error {
	if strings.TrimSpace(itemNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item number is required")
	}
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if drawCount < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "draw count must be at least 1")
	}
	return nil
}
