package controllers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
)

// RegistrationSuccessResponse is the success response envelope for registration changes (200).
type RegistrationSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// AttendeeController handles event registration for the authenticated user.
type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// RegisterForEvent godoc
// @Summary Register for an event
// @Description Registers the caller. Fails with event_full when no spots remain and already_registered on a repeat call.
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains event_id and spots_remaining"
// @Failure 400 {object} helpers.APIResponse "error.code: event_full or already_registered"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/register [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.RegisterForEvent(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// UnregisterFromEvent godoc
// @Summary Cancel a registration
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse "data contains event_id and spots_remaining"
// @Failure 400 {object} helpers.APIResponse "error.code: not_registered"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/register [delete]
func (c *AttendeeController) UnregisterFromEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.UnregisterFromEvent(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}
