package controllers

import (
	"net/http"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/internal/catalog"
	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

// CurrentEvent serves the active event and its storefront settings.
func CurrentEvent(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		event, err := eventsSvc.Current(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"event":    eventView(event),
			"settings": settingsView(event.Settings),
		})
	}
}

// CurrentItems serves the purchasable catalog for the active event.
func CurrentItems(eventsSvc events.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		event, err := eventsSvc.Current(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := catalogSvc.ListAvailable(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"event_id": event.ID,
			"items":    itemViews(items),
		})
	}
}
