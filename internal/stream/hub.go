package stream

import (
	"sync"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/event"
)

const subscriberBuffer = 16

type subscriber struct {
	ch chan *event.OrderStatusChangedEvent

	// orderNumber filters the feed to a single order. Empty means the
	// firehose.
	orderNumber string
}

// Hub fans order status events out to connected SSE clients. Slow clients
// are skipped rather than blocking the broadcast.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	logger      aqm.Logger
}

func NewHub(logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      logger,
	}
}

// Subscribe registers a client. orderNumber narrows the feed to one order;
// pass an empty string for all orders.
func (h *Hub) Subscribe(orderNumber string) (string, <-chan *event.OrderStatusChangedEvent) {
	id := uuid.NewString()
	sub := &subscriber{
		ch:          make(chan *event.OrderStatusChangedEvent, subscriberBuffer),
		orderNumber: orderNumber,
	}

	h.mu.Lock()
	h.subscribers[id] = sub
	h.mu.Unlock()

	h.logger.Debug("stream subscriber added", "subscriber_id", id, "order_number", orderNumber)
	return id, sub.ch
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
		close(sub.ch)
	}
	h.mu.Unlock()

	if ok {
		h.logger.Debug("stream subscriber removed", "subscriber_id", id)
	}
}

// BroadcastOrderEvent delivers the event to every matching subscriber.
func (h *Hub) BroadcastOrderEvent(evt *event.OrderStatusChangedEvent) {
	if evt == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, sub := range h.subscribers {
		if sub.orderNumber != "" && sub.orderNumber != evt.OrderNumber {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			h.logger.Debug("stream subscriber buffer full, dropping event", "subscriber_id", id)
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
