package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/enums/orderstatus"
	"github.com/meetupclub/meetup/pkg/event"
)

const MaxBodyBytes = 1 << 20

// createRetries bounds re-generation of the order number on a store
// uniqueness conflict.
const createRetries = 3

type HandlerDeps struct {
	Repo       OrderRepository
	Cache      *OrderStateCache
	Publisher  events.Publisher
	OTPLimiter *OTPLimiter
}

type Handler struct {
	repo       OrderRepository
	cache      *OrderStateCache
	publisher  events.Publisher
	otpLimiter *OTPLimiter
	logger     aqm.Logger
	config     *aqm.Config
	tlm        *telemetry.HTTP
}

func NewHandler(deps HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		repo:       deps.Repo,
		cache:      deps.Cache,
		publisher:  deps.Publisher,
		otpLimiter: deps.OTPLimiter,
		logger:     logger,
		config:     config,
		tlm:        telemetry.NewHTTP(),
	}
}

// RegisterPublicRoutes registers the storefront surface.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/orders", h.Checkout)
	r.Get("/track/{orderNumber}", h.TrackOrder)
}

// RegisterAdminRoutes registers the back-office console surface. The caller
// wraps these with the session middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/prepare", h.StartPreparing)
		r.Patch("/{id}/ready", h.MarkPrepared)
		r.Patch("/{id}/dispatch", h.Dispatch)
		r.Patch("/{id}/deliver", h.Deliver)
		r.Patch("/{id}/cancel", h.Cancel)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// Checkout handles POST /orders: it snapshots the cart, computes totals and
// creates the order in pending state. Nothing is persisted on failure, so a
// client retry simply gets a fresh order number.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Checkout")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var req CheckoutRequest
	if err := json.Unmarshal(body, &req); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if validationErrors := ValidateCheckout(ctx, req); len(validationErrors) > 0 {
		log.Debug("checkout validation failed", "errors", validationErrors)
		aqm.Respond(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": validationErrors,
		}, nil)
		return
	}

	order := NewOrder()
	order.CustomerName = req.CustomerName
	order.CustomerPhone = req.CustomerPhone
	order.CustomerAddress = req.CustomerAddress
	order.Items = req.Items
	order.ComputeTotals()
	order.BeforeCreate()

	var createErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		createErr = h.repo.Create(ctx, order)
		if !errors.Is(createErr, ErrDuplicateOrderNumber) {
			break
		}
		order.OrderNumber = NewOrderNumber()
	}
	if createErr != nil {
		log.Error("cannot create order", "error", createErr)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not place order")
		return
	}

	if h.cache != nil {
		h.cache.Set(order)
	}
	h.publishCreated(ctx, order)

	links := aqm.RESTfulLinksFor(order)
	w.WriteHeader(http.StatusCreated)
	aqm.RespondSuccess(w, order, links...)
}

// trackingView is the customer-facing projection of an order. The delivery
// code is included only while the order is out for delivery; it is the
// customer's copy to hand to the courier.
type trackingView struct {
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	CustomerAddress string      `json:"customer_address"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	Tax             float64     `json:"tax"`
	DeliveryFee     float64     `json:"delivery_fee"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	DeliveryOTP     string      `json:"delivery_otp,omitempty"`
	OTPVerified     bool        `json:"otp_verified"`
	CreatedAt       time.Time   `json:"created_at"`
}

func newTrackingView(o *Order) trackingView {
	view := trackingView{
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		Items:           o.Items,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		DeliveryFee:     o.DeliveryFee,
		Total:           o.Total,
		Status:          o.Status,
		OTPVerified:     o.OTPVerified,
		CreatedAt:       o.CreatedAt,
	}
	if o.Status == orderstatus.Statuses.OutForDelivery.Code() && o.DeliveryOTP != nil {
		view.DeliveryOTP = *o.DeliveryOTP
	}
	return view
}

// TrackOrder handles GET /track/{orderNumber}. Lookup is case-insensitive
// and trimmed; a missing order is distinguished from a store failure.
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.TrackOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	orderNumber := NormalizeOrderNumber(chi.URLParam(r, "orderNumber"))
	if orderNumber == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing order number")
		return
	}

	// Entries built from bare status events carry no items; those fall
	// through to the store for the full document.
	if h.cache != nil {
		if order := h.cache.GetByNumber(orderNumber); order != nil && len(order.Items) > 0 {
			aqm.Respond(w, http.StatusOK, newTrackingView(order), nil)
			return
		}
	}

	order, err := h.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		log.Error("cannot look up order", "error", err, "order_number", orderNumber)
		aqm.RespondError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found. Please check your tracking ID.")
		return
	}

	aqm.Respond(w, http.StatusOK, newTrackingView(order), nil)
}

// ListOrders handles GET /admin/orders. The full set is fetched (cache when
// warm, store otherwise) sorted newest first; free-text search and the
// single-status filter are applied over that set, and per-status counters
// are derived from it rather than queried separately.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	q := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")
	if status != "" && orderstatus.ByName(status) == nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	var all []*Order
	if h.cache != nil && h.cache.Count() > 0 {
		all = h.cache.GetAll()
	} else {
		list, err := h.repo.List(ctx, OrderFilter{})
		if err != nil {
			log.Error("cannot list orders", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not list orders")
			return
		}
		all = make([]*Order, 0, len(list))
		for i := range list {
			all = append(all, &list[i])
		}
		SortByCreatedDesc(all)
	}

	filtered := FilterOrders(all, q, status)

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"orders": filtered,
		"stats":  StatsFor(all),
	}, nil)
}

// adminOrderView decorates an order with the actions legal from its
// current status, so the console renders only valid controls.
type adminOrderView struct {
	*Order
	NextActions []string `json:"next_actions"`
}

func newAdminOrderView(o *Order) adminOrderView {
	return adminOrderView{Order: o, NextActions: NextStatuses(o.Status)}
}

// GetOrder handles GET /admin/orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.repo.FindByID(ctx, id)
	if err != nil || order == nil {
		log.Debug("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	links := aqm.RESTfulLinksFor(order)
	aqm.RespondSuccess(w, newAdminOrderView(order), links...)
}

// StartPreparing handles PATCH /admin/orders/{id}/prepare.
func (h *Handler) StartPreparing(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "prepare", func(o *Order) error { return o.MarkPreparing() })
}

// MarkPrepared handles PATCH /admin/orders/{id}/ready.
func (h *Handler) MarkPrepared(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "ready", func(o *Order) error { return o.MarkPrepared() })
}

// Dispatch handles PATCH /admin/orders/{id}/dispatch. The delivery code is
// issued here, exactly once.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "dispatch", func(o *Order) error { return o.Dispatch() })
}

// Cancel handles PATCH /admin/orders/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel", func(o *Order) error { return o.Cancel() })
}

// Deliver handles PATCH /admin/orders/{id}/deliver. The supplied code must
// match the stored delivery code; attempts are rate limited per order.
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Deliver")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var payload struct {
		OTP string `json:"otp"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	order, err := h.repo.FindByID(ctx, id)
	if err != nil || order == nil {
		log.Debug("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if h.otpLimiter != nil && !h.otpLimiter.Allow(order.ID) {
		log.Debug("delivery code attempts exhausted", "order_number", order.OrderNumber)
		aqm.RespondError(w, http.StatusTooManyRequests, "Too many attempts. Please wait before retrying.")
		return
	}

	previousStatus := order.Status
	expectedVersion := order.ModelVersion

	if err := order.Deliver(payload.OTP); err != nil {
		switch {
		case errors.Is(err, ErrOTPMismatch), errors.Is(err, ErrOTPNotIssued):
			aqm.RespondError(w, http.StatusUnprocessableEntity, "Invalid delivery code")
		case errors.Is(err, ErrInvalidTransition):
			aqm.RespondError(w, http.StatusConflict, "Order cannot be delivered in its current status")
		default:
			log.Error("cannot deliver order", "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		}
		return
	}

	if err := h.repo.Update(ctx, order, expectedVersion); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			aqm.RespondError(w, http.StatusConflict, "Order was modified by someone else. Please reload.")
			return
		}
		log.Error("cannot update order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	if h.otpLimiter != nil {
		h.otpLimiter.Forget(order.ID)
	}
	if h.cache != nil {
		h.cache.Set(order)
	}
	h.publishStatusChange(ctx, order, previousStatus)

	aqm.RespondSuccess(w, newAdminOrderView(order), aqm.RESTfulLinksFor(order)...)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, apply func(*Order) error) {
	w, r, finish := h.tlm.Start(w, r, "Handler."+action)
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.repo.FindByID(ctx, id)
	if err != nil || order == nil {
		log.Debug("order not found", "error", err, "id", id.String())
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	previousStatus := order.Status
	expectedVersion := order.ModelVersion

	if err := apply(order); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			aqm.RespondError(w, http.StatusConflict, "Transition not allowed from current status")
			return
		}
		log.Error("cannot apply transition", "action", action, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	if err := h.repo.Update(ctx, order, expectedVersion); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			aqm.RespondError(w, http.StatusConflict, "Order was modified by someone else. Please reload.")
			return
		}
		log.Error("cannot update order", "action", action, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	if h.cache != nil {
		h.cache.Set(order)
	}
	h.publishStatusChange(ctx, order, previousStatus)

	aqm.RespondSuccess(w, newAdminOrderView(order), aqm.RESTfulLinksFor(order)...)
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) publishCreated(ctx context.Context, order *Order) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderCreatedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:     event.EventOrderCreated,
			OccurredAt:    time.Now().UTC(),
			OrderID:       order.ID.String(),
			OrderNumber:   order.OrderNumber,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Total:         order.Total,
		},
		Status:    order.Status,
		ItemCount: order.ItemCount(),
		CreatedAt: order.CreatedAt,
	}

	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, event.OrdersTopic, eventBytes); err != nil {
		h.logger.Errorf("Failed to publish order.created event: %v", err)
	}
}

func (h *Handler) publishStatusChange(ctx context.Context, order *Order, previousStatus string) {
	if h.publisher == nil {
		return
	}

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:     event.EventOrderStatusChanged,
			OccurredAt:    time.Now().UTC(),
			OrderID:       order.ID.String(),
			OrderNumber:   order.OrderNumber,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Total:         order.Total,
		},
		NewStatus:      order.Status,
		PreviousStatus: previousStatus,
		OTPVerified:    order.OTPVerified,
		ModelVersion:   order.ModelVersion,
	}
	if order.DeliveryOTP != nil {
		evt.DeliveryOTP = *order.DeliveryOTP
	}

	eventBytes, _ := json.Marshal(evt)
	if err := h.publisher.Publish(ctx, event.OrdersTopic, eventBytes); err != nil {
		h.logger.Errorf("Failed to publish order.status_changed event: %v", err)
	}
}
