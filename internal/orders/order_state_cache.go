package orders

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/event"
)

// EventBroadcaster fans out order change events to connected live views
// (admin console firehose and per-order tracking streams).
type EventBroadcaster interface {
	BroadcastOrderEvent(evt *event.OrderStatusChangedEvent)
}

// OrderStateCache maintains an in-memory view of all orders, indexed by
// status and order number, so the admin console and tracking lookups do not
// hit the store on every notification.
type OrderStateCache struct {
	mu sync.RWMutex
	// orders indexed by order id
	orders map[uuid.UUID]*Order
	// index by status code -> order id
	byStatus map[string][]uuid.UUID
	// index by normalized order number -> order id
	byNumber map[string]uuid.UUID

	repo   OrderRepository
	logger aqm.Logger

	broadcaster EventBroadcaster
}

// NewOrderStateCache creates an empty cache backed by the given repository.
func NewOrderStateCache(repo OrderRepository, logger aqm.Logger) *OrderStateCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderStateCache{
		orders:   make(map[uuid.UUID]*Order),
		byStatus: make(map[string][]uuid.UUID),
		byNumber: make(map[string]uuid.UUID),
		repo:     repo,
		logger:   logger,
	}
}

// SetBroadcaster sets the live-view broadcaster (called after initialization).
func (c *OrderStateCache) SetBroadcaster(b EventBroadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

// Warm loads all orders from the repository.
func (c *OrderStateCache) Warm(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Info("repository panic recovered, cache will remain empty", "panic", r)
			err = nil
		}
	}()

	if c.repo == nil {
		c.logger.Info("repository is nil, cache will remain empty")
		return nil
	}

	list, dbErr := c.repo.List(ctx, OrderFilter{})
	if dbErr != nil {
		c.logger.Info("failed to warm order cache, cache will remain empty", "error", dbErr)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range list {
		c.setLocked(&list[i], false)
	}

	c.logger.Info("order cache warmed", "count", len(list))
	return nil
}

// ApplyEvent processes a single order event published on orders.events.
func (c *OrderStateCache) ApplyEvent(ctx context.Context, data []byte) {
	var baseEvent struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &baseEvent); err != nil {
		c.logger.Error("failed to unmarshal event type", "error", err)
		return
	}

	switch baseEvent.EventType {
	case event.EventOrderCreated:
		c.handleOrderCreated(data)
	case event.EventOrderStatusChanged:
		c.handleStatusChanged(data)
	default:
		// Silently ignore unknown event types (forward compatibility)
	}
}

func (c *OrderStateCache) handleOrderCreated(data []byte) {
	var evt event.OrderCreatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal order.created event", "error", err)
		return
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		c.logger.Error("invalid order_id in event", "order_id", evt.OrderID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.orders[orderID]; exists {
		return
	}

	order := &Order{
		ID:            orderID,
		OrderNumber:   evt.OrderNumber,
		CustomerName:  evt.CustomerName,
		CustomerPhone: evt.CustomerPhone,
		Total:         evt.Total,
		Status:        evt.Status,
		CreatedAt:     evt.CreatedAt,
		UpdatedAt:     evt.CreatedAt,
		ModelVersion:  1,
	}
	c.setLocked(order, false)
}

func (c *OrderStateCache) handleStatusChanged(data []byte) {
	var evt event.OrderStatusChangedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		c.logger.Error("failed to unmarshal order.status_changed event", "error", err)
		return
	}

	orderID, err := uuid.Parse(evt.OrderID)
	if err != nil {
		c.logger.Error("invalid order_id in event", "order_id", evt.OrderID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cached := c.orders[orderID]
	if cached != nil && evt.ModelVersion <= cached.ModelVersion {
		// Already applied by the producing handler's direct Set. Dropping
		// the echo keeps event application idempotent.
		return
	}

	var order *Order
	if cached != nil {
		cp := *cached
		order = &cp
	} else {
		// Create a minimal entry if the order predates this process
		order = &Order{
			ID:            orderID,
			OrderNumber:   evt.OrderNumber,
			CustomerName:  evt.CustomerName,
			CustomerPhone: evt.CustomerPhone,
			Total:         evt.Total,
		}
	}

	order.Status = evt.NewStatus
	order.OTPVerified = evt.OTPVerified
	order.UpdatedAt = evt.OccurredAt
	if evt.ModelVersion > order.ModelVersion {
		order.ModelVersion = evt.ModelVersion
	}
	if evt.DeliveryOTP != "" {
		code := evt.DeliveryOTP
		order.DeliveryOTP = &code
	}

	c.setLocked(order, true)
}

// Set updates or adds an order and notifies live views.
func (c *OrderStateCache) Set(order *Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(order, true)
}

func (c *OrderStateCache) setLocked(order *Order, broadcast bool) {
	if order == nil {
		return
	}

	orderID := order.ID

	var previousStatus string
	if old, exists := c.orders[orderID]; exists {
		previousStatus = old.Status
		c.removeFromIndex(c.byStatus, old.Status, orderID)
		delete(c.byNumber, NormalizeOrderNumber(old.OrderNumber))
	}

	// Store a private copy; callers may keep mutating their pointer and
	// pass it to Set again, and previousStatus must survive that.
	stored := *order
	c.orders[orderID] = &stored
	c.addToIndex(c.byStatus, stored.Status, orderID)
	c.byNumber[NormalizeOrderNumber(stored.OrderNumber)] = orderID

	if broadcast && c.broadcaster != nil {
		evt := &event.OrderStatusChangedEvent{
			OrderEventMetadata: event.OrderEventMetadata{
				EventType:     event.EventOrderStatusChanged,
				OccurredAt:    order.UpdatedAt,
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
		c.broadcaster.BroadcastOrderEvent(evt)
	}
}

// Get retrieves an order by ID.
func (c *OrderStateCache) Get(orderID uuid.UUID) *Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orders[orderID]
}

// GetByNumber retrieves an order by its normalized order number.
func (c *OrderStateCache) GetByNumber(orderNumber string) *Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byNumber[NormalizeOrderNumber(orderNumber)]
	if !ok {
		return nil
	}
	return c.orders[id]
}

// GetByStatusCode returns all orders with the given status.
func (c *OrderStateCache) GetByStatusCode(status string) []*Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.byStatus[status]
	result := make([]*Order, 0, len(ids))
	for _, id := range ids {
		if order := c.orders[id]; order != nil {
			result = append(result, order)
		}
	}
	return result
}

// GetAll returns all cached orders sorted by creation time descending.
func (c *OrderStateCache) GetAll() []*Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Order, 0, len(c.orders))
	for _, order := range c.orders {
		result = append(result, order)
	}
	SortByCreatedDesc(result)
	return result
}

// CountByStatus returns per-status counters derived from the cached set.
func (c *OrderStateCache) CountByStatus() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int, len(c.byStatus))
	for status, ids := range c.byStatus {
		counts[status] = len(ids)
	}
	return counts
}

// Count returns the number of cached orders.
func (c *OrderStateCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}

func (c *OrderStateCache) addToIndex(index map[string][]uuid.UUID, key string, orderID uuid.UUID) {
	index[key] = append(index[key], orderID)
}

func (c *OrderStateCache) removeFromIndex(index map[string][]uuid.UUID, key string, orderID uuid.UUID) {
	ids := index[key]
	for i, id := range ids {
		if id == orderID {
			index[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// SortByCreatedDesc orders the slice newest first, the console's sort order.
func SortByCreatedDesc(list []*Order) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// MatchesQuery reports whether an order matches a free-text console search
// over order number, customer name and phone.
func (o *Order) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.OrderNumber), q) ||
		strings.Contains(strings.ToLower(o.CustomerName), q) ||
		strings.Contains(strings.ToLower(o.CustomerPhone), q)
}

// FilterOrders applies the console's free-text search and single-status
// filter over an already-fetched set. It never touches the store.
func FilterOrders(list []*Order, q, status string) []*Order {
	result := make([]*Order, 0, len(list))
	for _, o := range list {
		if status != "" && o.Status != status {
			continue
		}
		if !o.MatchesQuery(q) {
			continue
		}
		result = append(result, o)
	}
	return result
}

// StatsFor derives per-status counters by iterating the fetched set.
func StatsFor(list []*Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range list {
		counts[o.Status]++
	}
	return counts
}
