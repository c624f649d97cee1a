package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetupclub/meetup/pkg/event"
)

func TestCacheSetAndGet(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	order := NewOrder()
	order.CustomerName = "Test Customer"

	cache.Set(order)

	if got := cache.Get(order.ID); got == nil || got.CustomerName != "Test Customer" {
		t.Errorf("Get() = %v, want the stored order", got)
	}
	if cache.Count() != 1 {
		t.Errorf("Count() = %d, want 1", cache.Count())
	}
}

func TestCacheGetByNumberIsCaseInsensitive(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	order := NewOrder()
	order.OrderNumber = "ORD-9999AB"
	cache.Set(order)

	tests := []string{"ORD-9999AB", "ord-9999ab", "  Ord-9999Ab  "}
	for _, lookup := range tests {
		if got := cache.GetByNumber(lookup); got == nil || got.ID != order.ID {
			t.Errorf("GetByNumber(%q) did not find the order", lookup)
		}
	}

	if got := cache.GetByNumber("ORD-XXXXXX"); got != nil {
		t.Error("GetByNumber() found an order that does not exist")
	}
}

func TestCacheStatusIndexFollowsUpdates(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	order := NewOrder()
	cache.Set(order)

	if got := len(cache.GetByStatusCode("pending")); got != 1 {
		t.Fatalf("pending count = %d, want 1", got)
	}

	if err := order.MarkPreparing(); err != nil {
		t.Fatalf("MarkPreparing() error = %v", err)
	}
	cache.Set(order)

	if got := len(cache.GetByStatusCode("pending")); got != 0 {
		t.Errorf("pending count after update = %d, want 0", got)
	}
	if got := len(cache.GetByStatusCode("preparing")); got != 1 {
		t.Errorf("preparing count after update = %d, want 1", got)
	}
}

func TestCacheSetBroadcasts(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	broadcaster := &MockBroadcaster{}
	cache.SetBroadcaster(broadcaster)

	order := NewOrder()
	cache.Set(order)

	if err := order.MarkPreparing(); err != nil {
		t.Fatalf("MarkPreparing() error = %v", err)
	}
	cache.Set(order)

	if len(broadcaster.Events) != 2 {
		t.Fatalf("broadcast count = %d, want 2", len(broadcaster.Events))
	}

	last := broadcaster.Events[1]
	if last.NewStatus != "preparing" {
		t.Errorf("NewStatus = %s, want preparing", last.NewStatus)
	}
	if last.PreviousStatus != "pending" {
		t.Errorf("PreviousStatus = %s, want pending", last.PreviousStatus)
	}
}

func TestCacheApplyStatusChangedEvent(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	order := NewOrder()
	order.BeforeCreate()
	cache.Set(order)

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:   event.EventOrderStatusChanged,
			OccurredAt:  time.Now().UTC(),
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
		},
		NewStatus:      "out_for_delivery",
		PreviousStatus: "prepared",
		DeliveryOTP:    "4821",
		ModelVersion:   4,
	}
	data, _ := json.Marshal(evt)

	cache.ApplyEvent(context.Background(), data)

	got := cache.Get(order.ID)
	if got.Status != "out_for_delivery" {
		t.Errorf("Status = %s, want out_for_delivery", got.Status)
	}
	if got.DeliveryOTP == nil || *got.DeliveryOTP != "4821" {
		t.Error("delivery code was not applied from the event")
	}
	if got.ModelVersion != 4 {
		t.Errorf("ModelVersion = %d, want 4", got.ModelVersion)
	}
}

func TestCacheApplyEventMovesStatusIndex(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	broadcaster := &MockBroadcaster{}
	cache.SetBroadcaster(broadcaster)

	order := NewOrder()
	order.BeforeCreate()
	cache.Set(order)
	broadcaster.Events = nil

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:   event.EventOrderStatusChanged,
			OccurredAt:  time.Now().UTC(),
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
		},
		NewStatus:    "preparing",
		ModelVersion: 2,
	}
	data, _ := json.Marshal(evt)

	cache.ApplyEvent(context.Background(), data)

	if got := len(cache.GetByStatusCode("pending")); got != 0 {
		t.Errorf("pending count = %d, want 0", got)
	}
	if got := len(cache.GetByStatusCode("preparing")); got != 1 {
		t.Errorf("preparing count = %d, want 1", got)
	}
	if len(broadcaster.Events) != 1 {
		t.Fatalf("broadcast count = %d, want 1", len(broadcaster.Events))
	}
	if got := broadcaster.Events[0].PreviousStatus; got != "pending" {
		t.Errorf("PreviousStatus = %s, want pending", got)
	}
}

func TestCacheApplyEventDropsStaleVersions(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	broadcaster := &MockBroadcaster{}
	cache.SetBroadcaster(broadcaster)

	order := NewOrder()
	order.BeforeCreate()
	if err := order.MarkPreparing(); err != nil {
		t.Fatalf("MarkPreparing() error = %v", err)
	}
	cache.Set(order)
	broadcaster.Events = nil

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:   event.EventOrderStatusChanged,
			OccurredAt:  time.Now().UTC(),
			OrderID:     order.ID.String(),
			OrderNumber: order.OrderNumber,
		},
		NewStatus:    "preparing",
		ModelVersion: order.ModelVersion,
	}
	data, _ := json.Marshal(evt)

	cache.ApplyEvent(context.Background(), data)
	cache.ApplyEvent(context.Background(), data)

	if len(broadcaster.Events) != 0 {
		t.Errorf("broadcast count = %d, want 0 for an already applied version", len(broadcaster.Events))
	}
	if got := len(cache.GetByStatusCode("preparing")); got != 1 {
		t.Errorf("preparing count = %d, want 1", got)
	}
}

func TestCacheApplyEventForUnknownOrderCreatesEntry(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)
	orderID := uuid.New()

	evt := event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:   event.EventOrderStatusChanged,
			OccurredAt:  time.Now().UTC(),
			OrderID:     orderID.String(),
			OrderNumber: "ORD-ZZ0001",
		},
		NewStatus: "preparing",
	}
	data, _ := json.Marshal(evt)

	cache.ApplyEvent(context.Background(), data)

	got := cache.GetByNumber("ord-zz0001")
	if got == nil {
		t.Fatal("event for unknown order should create a cache entry")
	}
	if got.Status != "preparing" {
		t.Errorf("Status = %s, want preparing", got.Status)
	}
}

func TestCacheApplyEventIgnoresGarbage(t *testing.T) {
	cache := NewOrderStateCache(nil, nil)

	cache.ApplyEvent(context.Background(), []byte("not json"))
	cache.ApplyEvent(context.Background(), []byte(`{"event_type":"unknown.event"}`))

	if cache.Count() != 0 {
		t.Error("garbage events should not populate the cache")
	}
}

func TestCacheWarm(t *testing.T) {
	repo := NewMockOrderRepository()
	for i := 0; i < 3; i++ {
		o := NewOrder()
		o.BeforeCreate()
		repo.AddOrder(o)
	}

	cache := NewOrderStateCache(repo, nil)
	if err := cache.Warm(context.Background()); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	if cache.Count() != 3 {
		t.Errorf("Count() after warm = %d, want 3", cache.Count())
	}
}

func TestCacheWarmSurvivesRepoFailure(t *testing.T) {
	repo := NewMockOrderRepository()
	repo.ListFunc = func(ctx context.Context, filter OrderFilter) ([]Order, error) {
		return nil, errRepoDown
	}

	cache := NewOrderStateCache(repo, nil)
	if err := cache.Warm(context.Background()); err != nil {
		t.Fatalf("Warm() should swallow repo errors, got %v", err)
	}
	if cache.Count() != 0 {
		t.Error("cache should stay empty after a failed warm")
	}
}

func TestFilterOrders(t *testing.T) {
	base := time.Now()
	mk := func(number, name, phone, status string, age time.Duration) *Order {
		o := NewOrder()
		o.OrderNumber = number
		o.CustomerName = name
		o.CustomerPhone = phone
		o.Status = status
		o.CreatedAt = base.Add(-age)
		return o
	}

	list := []*Order{
		mk("ORD-AAAA01", "Alice Rahman", "+8801811000001", "pending", time.Minute),
		mk("ORD-BBBB02", "Bob Hossain", "+8801811000002", "preparing", 2*time.Minute),
		mk("ORD-CCCC03", "Carol Islam", "+8801911000003", "pending", 3*time.Minute),
	}

	tests := []struct {
		name   string
		q      string
		status string
		want   int
	}{
		{"noFilters", "", "", 3},
		{"byStatus", "", "pending", 2},
		{"byNameFragment", "alice", "", 1},
		{"byOrderNumberLowercase", "ord-bbbb02", "", 1},
		{"byPhoneFragment", "1911", "", 1},
		{"statusAndQuery", "carol", "pending", 1},
		{"queryMatchesWrongStatus", "bob", "pending", 0},
		{"noMatch", "zzz", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterOrders(list, tt.q, tt.status)
			if len(got) != tt.want {
				t.Errorf("FilterOrders(%q, %q) returned %d orders, want %d", tt.q, tt.status, len(got), tt.want)
			}
		})
	}
}

func TestStatsFor(t *testing.T) {
	list := []*Order{
		{Status: "pending"},
		{Status: "pending"},
		{Status: "delivered"},
	}

	stats := StatsFor(list)
	if stats["pending"] != 2 {
		t.Errorf("pending = %d, want 2", stats["pending"])
	}
	if stats["delivered"] != 1 {
		t.Errorf("delivered = %d, want 1", stats["delivered"])
	}
	if stats["cancelled"] != 0 {
		t.Errorf("cancelled = %d, want 0", stats["cancelled"])
	}
}

func TestSortByCreatedDesc(t *testing.T) {
	now := time.Now()
	oldest := &Order{CreatedAt: now.Add(-2 * time.Hour)}
	newest := &Order{CreatedAt: now}
	middle := &Order{CreatedAt: now.Add(-time.Hour)}

	list := []*Order{oldest, newest, middle}
	SortByCreatedDesc(list)

	if list[0] != newest || list[1] != middle || list[2] != oldest {
		t.Error("orders are not sorted newest first")
	}
}
