package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Capacity    int    `json:"capacity" validate:"gt=0"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	if strings.TrimSpace(c.Title) == "" {
		return []string{"title is required"}
	}
	return nil
}

// UpdateEventRequest is the request body for PUT /events/{id}. Omitted fields are unchanged; a present
// empty description clears it. Capacity is checked against the current participant count by the service.
type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Capacity    *int    `json:"capacity"`
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:       u.Title,
		Description: u.Description,
		Date:        u.Date,
		Time:        u.Time,
		Capacity:    u.Capacity,
	}
}

// UpdateEventResponse is the response body for PUT /events/{id}.
type UpdateEventResponse struct {
	Event         *domain.EventView `json:"event"`
	UpdatedFields []string          `json:"updated_fields"`
}

// DeleteEventResponse is the response body for DELETE /events/{id}.
type DeleteEventResponse struct {
	ParticipantsNotified int `json:"participants_notified"`
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventView    `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// EventSuccessResponse is the success response envelope for a single event (200, 201).
type EventSuccessResponse struct {
	Data  *domain.EventView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEventSuccessResponse is the success response envelope for PUT /events/{id} (200).
type UpdateEventSuccessResponse struct {
	Data  UpdateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{id} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create a virtual event. The authenticated user becomes its owner. Date uses YYYY-MM-DD and time HH:MM (24h).
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := domain.NewEvent(req.Title, req.Description, req.Date, req.Time, req.Capacity, userID, time.Now())
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, domain.NewEventView(event, userID))
}

// ListEvents godoc
// @Summary List events
// @Description Lists events sorted by date then time. Each event carries spots_remaining, is_full, is_user_registered and registration_status for the caller.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param date query string false "Only events on this date (YYYY-MM-DD)"
// @Param query query string false "Case-insensitive search in title and description"
// @Param q query string false "Alias of query"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	search := q.Get("query")
	if search == "" {
		search = q.Get("q")
	}
	filter := domain.EventFilter{Date: strings.TrimSpace(q.Get("date")), Query: search}
	if filter.Date != "" {
		if _, err := time.Parse(domain.DateLayout, filter.Date); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "date must use the YYYY-MM-DD format")
			return
		}
	}
	params := helpers.ParsePagination(r)

	views, err := c.Service.ListEvents(r.Context(), userID, filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     domain.Paginate(views, params),
		Pagination: helpers.NewPaginationMeta(params, len(views)),
	})
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	view, err := c.Service.GetEvent(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partial update by the owner. Omitted fields are unchanged. Lowering capacity below the current participant count fails with capacity_too_low and details.current_participants. Participants are emailed when the date or time changes.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the event and updated_fields"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, validation_error or capacity_too_low"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, changed, err := c.Service.UpdateEvent(r.Context(), chi.URLParam(r, "id"), userID, req.patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UpdateEventResponse{
		Event:         domain.NewEventView(event, userID),
		UpdatedFields: changed,
	})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event owned by the caller, removes every registration and emails each participant. participants_notified is the participant count at deletion time.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains participants_notified"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	notified, err := c.Service.DeleteEvent(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ParticipantsNotified: notified})
}
