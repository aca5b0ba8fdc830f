package controllers

import (
	"net/http"
	"strings"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/internal/orders"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

// OrderConfirmation serves a submitted order by its public order number.
func OrderConfirmation(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderNumber := strings.TrimSpace(pathParam(r, "orderNumber"))
		if orderNumber == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number is required"))
			return
		}

		order, err := ordersSvc.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderView(order))
	}
}
