package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"

	"github.com/meetupclub/meetup/internal/orders"
	"github.com/meetupclub/meetup/pkg/event"
)

// OrderEventSubscriber consumes the orders topic and keeps the in-memory
// order state current. Broadcasting to connected SSE clients happens inside
// the cache, so every consumer of the feed sees the same projection.
type OrderEventSubscriber struct {
	subscriber events.Subscriber
	cache      *orders.OrderStateCache
	logger     aqm.Logger
}

func NewOrderEventSubscriber(
	subscriber events.Subscriber,
	cache *orders.OrderStateCache,
	logger aqm.Logger,
) *OrderEventSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OrderEventSubscriber{
		subscriber: subscriber,
		cache:      cache,
		logger:     logger,
	}
}

func (s *OrderEventSubscriber) Start(ctx context.Context) error {
	s.logger.Info("Starting OrderEventSubscriber for topic: " + event.OrdersTopic)

	if err := s.subscriber.Subscribe(ctx, event.OrdersTopic, s.handleEvent); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.OrdersTopic, err)
	}

	s.logger.Info("OrderEventSubscriber started successfully")
	return nil
}

func (s *OrderEventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var probe struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil {
		s.logger.Errorf("Failed to unmarshal event: %v", err)
		return nil
	}

	switch probe.EventType {
	case event.EventOrderCreated, event.EventOrderStatusChanged:
		if s.cache != nil {
			s.cache.ApplyEvent(ctx, msg)
		}
	default:
		s.logger.Infof("Unknown event type: %s", probe.EventType)
	}

	return nil
}
