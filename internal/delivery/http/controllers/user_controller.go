package controllers

import (
	"log/slog"
	"net/http"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
)

// UpdateProfileRequest is the request body for PUT /user/profile. All fields are optional.
type UpdateProfileRequest struct {
	Name      *string   `json:"name" validate:"omitempty,max=100"`
	Bio       *string   `json:"bio" validate:"omitempty,max=2000"`
	Interests *[]string `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}

// UserSuccessResponse is the success response envelope for profile endpoints (200).
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MyEventsSuccessResponse is the success response envelope for GET /user/events (200).
type MyEventsSuccessResponse struct {
	Data  []*domain.EventView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// UserController handles profile endpoints for the authenticated user.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetProfile godoc
// @Summary Get my profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.UserSuccessResponse "data contains the user and profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /user/profile [get]
func (c *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update my profile
// @Description Updates name, bio and interests. Omitted fields are unchanged.
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UserSuccessResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /user/profile [put]
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), userID, domain.ProfilePatch{
		Name:      req.Name,
		Bio:       req.Bio,
		Interests: req.Interests,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ListMyEvents godoc
// @Summary List my registered events
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyEventsSuccessResponse "data contains the events the caller is registered for"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /user/events [get]
func (c *UserController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	views, err := c.Service.ListRegisteredEvents(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}
