package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/api/validators"
	"github.com/davidquint/raffle-backend/internal/catalog"
	"github.com/davidquint/raffle-backend/internal/media"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

type createItemRequest struct {
	ItemNumber        string   `json:"item_number" validate:"required,max=50"`
	Name              string   `json:"name" validate:"required,max=200"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	Price             string   `json:"price" validate:"required"`
	ImageURLs         []string `json:"image_urls" validate:"omitempty,dive,url"`
	Category          string   `json:"category" validate:"required,max=100"`
	Sponsor           *string  `json:"sponsor" validate:"omitempty,max=200"`
	ItemValue         *string  `json:"item_value"`
	IsOver21          bool     `json:"is_over_21"`
	IsLocalPickupOnly bool     `json:"is_local_pickup_only"`
	DrawCount         int      `json:"draw_count" validate:"omitempty,min=1"`
	IsAvailable       *bool    `json:"is_available"`
}

type updateItemRequest struct {
	ItemNumber        *string  `json:"item_number" validate:"omitempty,max=50"`
	Name              *string  `json:"name" validate:"omitempty,max=200"`
	Description       *string  `json:"description" validate:"omitempty,max=2000"`
	Price             *string  `json:"price"`
	ImageURLs         []string `json:"image_urls" validate:"omitempty,dive,url"`
	Category          *string  `json:"category" validate:"omitempty,max=100"`
	Sponsor           *string  `json:"sponsor" validate:"omitempty,max=200"`
	ItemValue         *string  `json:"item_value"`
	IsOver21          *bool    `json:"is_over_21"`
	IsLocalPickupOnly *bool    `json:"is_local_pickup_only"`
	DrawCount         *int     `json:"draw_count" validate:"omitempty,min=1"`
	IsAvailable       *bool    `json:"is_available"`
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be a decimal amount")
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative")
	}
	return value, nil
}

// ListItems returns the full catalog for one event, including unavailable items.
func ListItems(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := catalogSvc.ListAll(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": itemViews(items)})
	}
}

// GetItem returns one catalog item.
func GetItem(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := catalogSvc.Get(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, itemView(*item))
	}
}

// CreateItem adds a catalog item to an event.
func CreateItem(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req createItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		price, err := parseMoney(req.Price, "price")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.CreateItemInput{
			EventID:           eventID,
			ItemNumber:        req.ItemNumber,
			Name:              req.Name,
			Description:       req.Description,
			Price:             price,
			ImageURLs:         req.ImageURLs,
			Category:          req.Category,
			Sponsor:           req.Sponsor,
			IsOver21:          req.IsOver21,
			IsLocalPickupOnly: req.IsLocalPickupOnly,
			DrawCount:         req.DrawCount,
			IsAvailable:       true,
		}
		if req.ItemValue != nil {
			value, err := parseMoney(*req.ItemValue, "item_value")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.ItemValue = &value
		}
		if req.IsAvailable != nil {
			input.IsAvailable = *req.IsAvailable
		}

		item, err := catalogSvc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, itemView(*item))
	}
}

// UpdateItem applies a partial update to a catalog item.
func UpdateItem(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.UpdateItemInput{
			ItemNumber:        req.ItemNumber,
			Name:              req.Name,
			Description:       req.Description,
			ImageURLs:         req.ImageURLs,
			Category:          req.Category,
			Sponsor:           req.Sponsor,
			IsOver21:          req.IsOver21,
			IsLocalPickupOnly: req.IsLocalPickupOnly,
			DrawCount:         req.DrawCount,
			IsAvailable:       req.IsAvailable,
		}
		if req.Price != nil {
			price, err := parseMoney(*req.Price, "price")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.Price = &price
		}
		if req.ItemValue != nil {
			value, err := parseMoney(*req.ItemValue, "item_value")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.ItemValue = &value
		}

		item, err := catalogSvc.Update(ctx, itemID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, itemView(*item))
	}
}

// DeleteItem removes a catalog item.
func DeleteItem(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := catalogSvc.Delete(ctx, itemID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// UploadItemImage stores an item photo and appends it to the item's gallery.
func UploadItemImage(catalogSvc catalog.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		file, header, err := formImage(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer file.Close()

		url, err := mediaSvc.UploadImage(ctx, media.UploadInput{
			Kind:        enums.MediaKindItemImage,
			OwnerID:     itemID,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := catalogSvc.AttachImage(ctx, itemID, url)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, itemView(*item))
	}
}
