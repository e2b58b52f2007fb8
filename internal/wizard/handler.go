package wizard

import (
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// Handler exposes the booking wizard over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a wizard HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the booking routes on r. submitMiddleware wraps only the
// submit endpoint.
func (h *Handler) Register(r chi.Router, submitMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/catalog", h.GetCatalog)
	r.Get("/locations", h.GetLocations)
	r.Get("/dates", h.GetDates)
	r.Get("/slots", h.GetSlots)

	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/services/{serviceID}/toggle", h.ToggleService)
		r.Put("/location", h.SelectLocation)
		r.Get("/stylists", h.GetStylists)
		r.Put("/stylist", h.SelectStylist)
		r.Put("/date", h.SelectDate)
		r.Put("/time", h.SelectTime)
		r.Put("/details", h.SetDetails)
		r.Post("/next", h.Next)
		r.Post("/back", h.Back)
		r.With(submitMiddleware...).Post("/submit", h.Submit)
	})
}

type catalogResponse struct {
	Categories []booking.CategoryGroup `json:"categories"`
}

// GetCatalog handles GET /booking/catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	groups := h.service.Catalog(r.Context())
	if groups == nil {
		groups = []booking.CategoryGroup{}
	}
	writeJSON(w, http.StatusOK, catalogResponse{Categories: groups})
}

// GetLocations handles GET /booking/locations.
func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations := h.service.Locations(r.Context())
	if locations == nil {
		locations = []booking.Location{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations})
}

// GetDates handles GET /booking/dates.
func (h *Handler) GetDates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"dates": h.service.AvailableDates()})
}

// GetSlots handles GET /booking/slots.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"slots": h.service.TimeSlots()})
}

// StartSession handles POST /booking/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Start(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, NewView(sess, false))
}

// GetSession handles GET /booking/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, r, sess, err)
}

// ToggleService handles POST /booking/sessions/{sessionID}/services/{serviceID}/toggle.
func (h *Handler) ToggleService(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.ToggleService(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "serviceID"))
	h.respond(w, r, sess, err)
}

type selectLocationRequest struct {
	LocationID string `json:"locationId"`
}

// SelectLocation handles PUT /booking/sessions/{sessionID}/location.
func (h *Handler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	var req selectLocationRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectLocation(r.Context(), chi.URLParam(r, "sessionID"), req.LocationID)
	h.respond(w, r, sess, err)
}

// GetStylists handles GET /booking/sessions/{sessionID}/stylists.
func (h *Handler) GetStylists(w http.ResponseWriter, r *http.Request) {
	stylists, err := h.service.Stylists(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if stylists == nil {
		stylists = []booking.Stylist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stylists": stylists})
}

type selectStylistRequest struct {
	StylistID string `json:"stylistId"`
}

// SelectStylist handles PUT /booking/sessions/{sessionID}/stylist.
func (h *Handler) SelectStylist(w http.ResponseWriter, r *http.Request) {
	var req selectStylistRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectStylist(r.Context(), chi.URLParam(r, "sessionID"), req.StylistID)
	h.respond(w, r, sess, err)
}

type selectDateRequest struct {
	Date string `json:"date"`
}

// SelectDate handles PUT /booking/sessions/{sessionID}/date.
func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req selectDateRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}
	sess, err := h.service.SelectDate(r.Context(), chi.URLParam(r, "sessionID"), date)
	h.respond(w, r, sess, err)
}

type selectTimeRequest struct {
	Time string `json:"time"`
}

// SelectTime handles PUT /booking/sessions/{sessionID}/time.
func (h *Handler) SelectTime(w http.ResponseWriter, r *http.Request) {
	var req selectTimeRequest
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SelectTime(r.Context(), chi.URLParam(r, "sessionID"), req.Time)
	h.respond(w, r, sess, err)
}

// SetDetails handles PUT /booking/sessions/{sessionID}/details.
func (h *Handler) SetDetails(w http.ResponseWriter, r *http.Request) {
	var req Details
	if !h.decode(w, r, &req) {
		return
	}
	sess, err := h.service.SetDetails(r.Context(), chi.URLParam(r, "sessionID"), req)
	h.respond(w, r, sess, err)
}

// Next handles POST /booking/sessions/{sessionID}/next.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Next(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, r, sess, err)
}

// Back handles POST /booking/sessions/{sessionID}/back.
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Back(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, r, sess, err)
}

// Submit handles POST /booking/sessions/{sessionID}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Submit(r.Context(), chi.URLParam(r, "sessionID"))
	h.respond(w, r, sess, err)
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sess *Session, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewView(sess, h.service.Submitting(r.Context(), sess.ID)))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
	case IsClientError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, booking.ErrSubmissionInFlight),
		errors.Is(err, ErrNotAtConfirm),
		errors.Is(err, ErrAlreadyBooked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case booking.IsRetryable(err):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:     "we couldn't complete your booking, please try again",
			Retryable: true,
		})
	default:
		h.logger.Error("booking request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
