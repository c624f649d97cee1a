package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"

	"github.com/meetupclub/meetup/internal/orders"
	"github.com/meetupclub/meetup/pkg/enums/orderstatus"
	"github.com/meetupclub/meetup/pkg/event"
)

const keepaliveInterval = 30 * time.Second

// SSEHandler streams order status updates over Server-Sent Events. The
// admin console gets every order; the public tracking page is narrowed to
// a single order number.
type SSEHandler struct {
	hub    *Hub
	logger aqm.Logger
}

func NewSSEHandler(hub *Hub, logger aqm.Logger) *SSEHandler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &SSEHandler{hub: hub, logger: logger}
}

// AdminOrderEvents handles GET /admin/orders/events.
func (h *SSEHandler) AdminOrderEvents(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "")
}

// TrackOrderEvents handles GET /track/{orderNumber}/events.
func (h *SSEHandler) TrackOrderEvents(w http.ResponseWriter, r *http.Request) {
	orderNumber := orders.NormalizeOrderNumber(chi.URLParam(r, "orderNumber"))
	if orderNumber == "" {
		http.Error(w, "Missing order number", http.StatusBadRequest)
		return
	}
	h.serve(w, r, orderNumber)
}

func (h *SSEHandler) serve(w http.ResponseWriter, r *http.Request, orderNumber string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID, eventChan := h.hub.Subscribe(orderNumber)
	defer h.hub.Unsubscribe(subscriberID)

	h.logger.Info("new SSE connection", "subscriber_id", subscriberID, "order_number", orderNumber)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}

		case evt, ok := <-eventChan:
			if !ok {
				h.logger.Info("event channel closed", "subscriber_id", subscriberID)
				return
			}

			payload, err := json.Marshal(streamEventFor(evt, orderNumber != ""))
			if err != nil {
				h.logger.Error("failed to marshal stream event", "error", err)
				continue
			}
			sendSSEEvent(w, "order-update", string(payload))
		}
	}
}

// streamEvent is the wire form pushed to browsers. The delivery code is
// only exposed on the customer-scoped stream; the admin console fetches it
// through the orders API when it needs it.
type streamEvent struct {
	OrderNumber    string `json:"order_number"`
	NewStatus      string `json:"new_status"`
	PreviousStatus string `json:"previous_status"`
	DeliveryOTP    string `json:"delivery_otp,omitempty"`
	OTPVerified    bool   `json:"otp_verified"`
	OccurredAt     string `json:"occurred_at"`
}

func streamEventFor(evt *event.OrderStatusChangedEvent, customerScoped bool) streamEvent {
	out := streamEvent{
		OrderNumber:    evt.OrderNumber,
		NewStatus:      evt.NewStatus,
		PreviousStatus: evt.PreviousStatus,
		OTPVerified:    evt.OTPVerified,
		OccurredAt:     evt.OccurredAt.Format(time.RFC3339),
	}
	if customerScoped && evt.NewStatus == orderstatus.Statuses.OutForDelivery.Code() {
		out.DeliveryOTP = evt.DeliveryOTP
	}
	return out
}

// sendSSEEvent writes an SSE event, prefixing every data line.
func sendSSEEvent(w http.ResponseWriter, eventType string, data string) {
	data = strings.TrimSpace(data)

	fmt.Fprintf(w, "event: %s\n", eventType)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprintf(w, "\n")

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
