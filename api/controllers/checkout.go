package controllers

import (
	"net/http"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/api/validators"
	"github.com/davidquint/raffle-backend/internal/checkout"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

// ValidateCheckout runs the checkout form rules without creating an order.
func ValidateCheckout(checkoutSvc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var details checkout.BuyerDetails
		if err := validators.DecodeJSONBody(r, &details); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		problems, err := checkoutSvc.Validate(ctx, cartID, details)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"valid":    len(problems) == 0,
			"problems": problems,
		})
	}
}

// SubmitCheckout turns the cart into a durable order.
func SubmitCheckout(checkoutSvc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartToken(w, r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var details checkout.BuyerDetails
		if err := validators.DecodeJSONBody(r, &details); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := checkoutSvc.Submit(ctx, cartID, details)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, orderView(order))
	}
}
