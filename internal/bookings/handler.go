package bookings

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/enums/bookingstatus"
)

const MaxBodyBytes = 1 << 20

// Handler handles HTTP requests for table bookings
type Handler struct {
	repo   BookingRepo
	logger aqm.Logger
	config *aqm.Config
	tlm    *telemetry.HTTP
}

func NewHandler(repo BookingRepo, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
		config: config,
		tlm:    telemetry.NewHTTP(),
	}
}

// RegisterPublicRoutes registers the storefront booking surface.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/bookings", h.CreateBooking)
}

// RegisterAdminRoutes registers the back-office booking surface.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.ListBookings)
		r.Get("/{id}", h.GetBooking)
		r.Patch("/{id}/confirm", h.ConfirmBooking)
		r.Patch("/{id}/cancel", h.CancelBooking)
	})
}

// CreateBooking handles POST /bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateBooking")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	booking, ok := h.decodeBookingPayload(w, r, log)
	if !ok {
		return
	}

	// Booking status is always pending on creation, whatever the client sent
	booking.Status = ""
	booking.BeforeCreate()

	if validationErrors := ValidateBooking(ctx, booking); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.repo.Create(ctx, booking); err != nil {
		log.Error("cannot create booking", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create booking")
		return
	}

	links := aqm.RESTfulLinksFor(booking)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, booking, links...)
}

// ListBookings handles GET /admin/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListBookings")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	status := r.URL.Query().Get("status")

	var bookings []*Booking
	var err error

	if status != "" {
		if bookingstatus.ByName(status) == nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		bookings, err = h.repo.ListByStatus(ctx, status)
	} else {
		bookings, err = h.repo.List(ctx)
	}

	if err != nil {
		log.Error("cannot list bookings", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list bookings")
		return
	}

	aqm.RespondCollection(w, bookings, "bookings")
}

// GetBooking handles GET /admin/bookings/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetBooking")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	booking, err := h.repo.Get(ctx, id)
	if err != nil || booking == nil {
		log.Debug("booking not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Booking not found")
		return
	}

	links := aqm.RESTfulLinksFor(booking)
	aqm.RespondSuccess(w, booking, links...)
}

// ConfirmBooking handles PATCH /admin/bookings/{id}/confirm
func (h *Handler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, "Handler.ConfirmBooking", (*Booking).Confirm)
}

// CancelBooking handles PATCH /admin/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, "Handler.CancelBooking", (*Booking).Cancel)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, span string, apply func(*Booking) error) {
	w, r, finish := h.tlm.Start(w, r, span)
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	booking, err := h.repo.Get(ctx, id)
	if err != nil || booking == nil {
		log.Debug("booking not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Booking not found")
		return
	}

	if err := apply(booking); err != nil {
		if errors.Is(err, ErrBookingClosed) {
			aqm.RespondError(w, http.StatusConflict, "Booking is already cancelled")
			return
		}
		log.Error("cannot update booking", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update booking")
		return
	}

	if err := h.repo.Save(ctx, booking); err != nil {
		log.Error("cannot save booking", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update booking")
		return
	}

	links := aqm.RESTfulLinksFor(booking)
	aqm.RespondSuccess(w, booking, links...)
}

// Helper methods

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log aqm.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		aqm.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeBookingPayload(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*Booking, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var booking Booking
	if err := json.Unmarshal(body, &booking); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &booking, true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}
