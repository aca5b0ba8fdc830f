package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/davidquint/raffle-backend/api/middleware"
	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/api/validators"
	"github.com/davidquint/raffle-backend/internal/orders"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/pagination"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListOrders pages through an event's orders, newest first.
func ListOrders(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := ordersSvc.ListByEvent(ctx, eventID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"orders":      orderViews(result.Orders),
			"next_cursor": result.NextCursor,
		})
	}
}

// GetOrder returns one order with its lines.
func GetOrder(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID(pathParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := ordersSvc.Get(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderView(order))
	}
}

// UpdateOrderStatus moves an order through its lifecycle on behalf of the
// authenticated operator.
func UpdateOrderStatus(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParsePathUUID(pathParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing status"))
			return
		}

		actorID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity"))
			return
		}

		order, err := ordersSvc.UpdateStatus(ctx, orders.StatusChangeInput{
			OrderID:     orderID,
			Status:      status,
			ActorUserID: actorID,
			ActorRole:   middleware.RoleFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderView(order))
	}
}
