package controllers

import (
	"net/http"
	"time"

	"github.com/davidquint/raffle-backend/api/responses"
	"github.com/davidquint/raffle-backend/api/validators"
	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/internal/media"
	"github.com/davidquint/raffle-backend/pkg/enums"
	pkgerrors "github.com/davidquint/raffle-backend/pkg/errors"
	"github.com/davidquint/raffle-backend/pkg/logger"
)

type createEventRequest struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	Status      *string   `json:"status" validate:"omitempty"`
}

type updateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

type eventSettingsRequest struct {
	HeaderImageURL           *string `json:"header_image_url" validate:"omitempty,url"`
	AllowInternationalOrders bool    `json:"allow_international_orders"`
	RequireAgeConfirmation   bool    `json:"require_age_confirmation"`
}

// ListEvents returns every event for the admin console.
func ListEvents(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		all, err := eventsSvc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		views := make([]events.EventView, 0, len(all))
		for i := range all {
			views = append(views, eventView(&all[i]))
		}
		responses.WriteSuccess(w, map[string]any{"events": views})
	}
}

// GetEvent returns one event with its settings.
func GetEvent(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		event, err := eventsSvc.Get(ctx, eventID)
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

// CreateEvent creates a new raffle event.
func CreateEvent(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := events.CreateEventInput{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}
		if req.Status != nil {
			status, err := enums.ParseEventStatus(*req.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing status"))
				return
			}
			input.Status = status
		}

		event, err := eventsSvc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, eventView(event))
	}
}

// UpdateEvent applies a partial update to an event.
func UpdateEvent(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req updateEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := events.UpdateEventInput{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}
		if req.Status != nil {
			status, err := enums.ParseEventStatus(*req.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing status"))
				return
			}
			input.Status = &status
		}

		event, err := eventsSvc.Update(ctx, eventID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, eventView(event))
	}
}

// UpsertEventSettings replaces the storefront policy switches for an event.
func UpsertEventSettings(eventsSvc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req eventSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		settings, err := eventsSvc.UpsertSettings(ctx, eventID, events.SettingsInput{
			HeaderImageURL:           req.HeaderImageURL,
			AllowInternationalOrders: req.AllowInternationalOrders,
			RequireAgeConfirmation:   req.RequireAgeConfirmation,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsView(settings))
	}
}

// UploadEventHeaderImage stores a header image and points the event at it.
func UploadEventHeaderImage(eventsSvc events.Service, mediaSvc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := validators.ParsePathUUID(pathParam(r, "eventID"), "eventID")
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
			Kind:        enums.MediaKindEventHeader,
			OwnerID:     eventID,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		settings, err := eventsSvc.SetHeaderImage(ctx, eventID, url)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, settingsView(settings))
	}
}
