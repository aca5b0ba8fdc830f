package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/api/validators"
	"github.com/davidquint/raffle-backend/internal/cart"
	"github.com/davidquint/raffle-backend/internal/catalog"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

const cartTokenHeader = "X-Cart-Token"

type addCartItemRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// cartToken resolves the caller's cart id, minting one when the header is
// absent. The token is always echoed back so the storefront can persist it.
func cartToken(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(cartTokenHeader))
	if raw == "" {
		id := cart.NewCartID()
		w.Header().Set(cartTokenHeader, id.String())
		return id, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart token must be a uuid")
	}
	w.Header().Set(cartTokenHeader, id.String())
	return id, nil
}

// GetCart returns the current cart snapshot.
func GetCart(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carts.Snapshot(cartID))
	}
}

// AddCartItem resolves the catalog item and folds it into the cart.
func AddCartItem(carts *cart.Store, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req addCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := uuid.Parse(req.ItemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item_id must be a uuid"))
			return
		}

		item, err := catalogSvc.Get(ctx, itemID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !item.IsAvailable {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item is not available"))
			return
		}

		quantity := req.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		var imageURL string
		if len(item.ImageURLs) > 0 {
			imageURL = item.ImageURLs[0]
		}

		snapshot := carts.Add(cartID, cart.Line{
			ItemID:            item.ID,
			ItemNumber:        item.ItemNumber,
			Name:              item.Name,
			Price:             item.Price,
			ImageURL:          imageURL,
			IsOver21:          item.IsOver21,
			IsLocalPickupOnly: item.IsLocalPickupOnly,
			Quantity:          quantity,
		})
		responses.WriteSuccess(w, snapshot)
	}
}

// UpdateCartItem applies a quantity delta to one cart line.
func UpdateCartItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := carts.UpdateQuantity(cartID, itemID, req.Delta)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// RemoveCartItem drops one line from the cart.
func RemoveCartItem(carts *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		itemID, err := validators.ParsePathUUID(pathParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, carts.Remove(cartID, itemID))
	}
}
