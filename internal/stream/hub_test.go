package stream

import (
	"testing"

	"github.com/meetupclub/meetup/pkg/event"
)

func statusEvent(orderNumber, newStatus string) *event.OrderStatusChangedEvent {
	return &event.OrderStatusChangedEvent{
		OrderEventMetadata: event.OrderEventMetadata{
			EventType:   event.EventOrderStatusChanged,
			OrderNumber: orderNumber,
		},
		NewStatus: newStatus,
	}
}

func TestHubSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(nil)

	id, ch := hub.Subscribe("")
	defer hub.Unsubscribe(id)

	if hub.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", hub.SubscriberCount())
	}

	hub.BroadcastOrderEvent(statusEvent("ORD-AAAA01", "preparing"))

	select {
	case evt := <-ch:
		if evt.OrderNumber != "ORD-AAAA01" {
			t.Errorf("OrderNumber = %s, want ORD-AAAA01", evt.OrderNumber)
		}
		if evt.NewStatus != "preparing" {
			t.Errorf("NewStatus = %s, want preparing", evt.NewStatus)
		}
	default:
		t.Fatal("firehose subscriber did not receive the event")
	}
}

func TestHubOrderNumberFilter(t *testing.T) {
	hub := NewHub(nil)

	matchID, matchCh := hub.Subscribe("ORD-AAAA01")
	defer hub.Unsubscribe(matchID)
	otherID, otherCh := hub.Subscribe("ORD-BBBB02")
	defer hub.Unsubscribe(otherID)

	hub.BroadcastOrderEvent(statusEvent("ORD-AAAA01", "prepared"))

	select {
	case <-matchCh:
	default:
		t.Error("matching subscriber did not receive the event")
	}

	select {
	case <-otherCh:
		t.Error("subscriber for a different order received the event")
	default:
	}
}

func TestHubDropsEventsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)

	id, ch := hub.Subscribe("")
	defer hub.Unsubscribe(id)

	// One more than the channel buffer; the broadcast must not block.
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.BroadcastOrderEvent(statusEvent("ORD-AAAA01", "preparing"))
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}

	if received != subscriberBuffer {
		t.Errorf("received %d events, want %d", received, subscriberBuffer)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)

	id, ch := hub.Subscribe("")
	hub.Unsubscribe(id)

	if hub.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", hub.SubscriberCount())
	}

	if _, open := <-ch; open {
		t.Error("channel must be closed after Unsubscribe")
	}

	// A second unsubscribe for the same id is a no-op.
	hub.Unsubscribe(id)
}

func TestHubBroadcastNilEvent(t *testing.T) {
	hub := NewHub(nil)

	id, ch := hub.Subscribe("")
	defer hub.Unsubscribe(id)

	hub.BroadcastOrderEvent(nil)

	select {
	case <-ch:
		t.Error("nil events must not be delivered")
	default:
	}
}
