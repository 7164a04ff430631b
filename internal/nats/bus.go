package nats

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/dashanwesha/Code-Editor/internal/domain"
)

// Emitter is the local fan-out the bus forwards remote events into.
type Emitter interface {
	EmitRoom(roomID string, ev domain.Event)
	EmitRoomExcept(roomID, exceptID string, ev domain.Event)
}

// envelope wraps a room event for cross-instance delivery. Origin identifies
// the publishing instance so it can drop its own envelopes; Except carries
// the excluded member id for echo-suppressed events (it only matches a
// connection on the origin instance, which already suppressed it locally).
type envelope struct {
	Origin string       `json:"origin"`
	Except string       `json:"except,omitempty"`
	Event  domain.Event `json:"event"`
}

// EventBus relays room events between relay instances over NATS. Each
// instance publishes every outbound room event and holds one wildcard
// subscription forwarding the other instances' events into its local hub.
type EventBus struct {
	client *NATSClient
	origin string

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewEventBus(client *NATSClient) *EventBus {
	return &EventBus{
		client: client,
		origin: uuid.NewString(),
	}
}

func subjectForRoom(roomID string) string {
	return fmt.Sprintf("relay.room.%s", roomID)
}

// PublishRoom fans an include-sender room event out to the other instances.
func (b *EventBus) PublishRoom(roomID string, ev domain.Event) error {
	return b.publish(roomID, envelope{Origin: b.origin, Event: ev})
}

// PublishRoomExcept fans an echo-suppressed room event out to the other
// instances.
func (b *EventBus) PublishRoomExcept(roomID, exceptID string, ev domain.Event) error {
	return b.publish(roomID, envelope{Origin: b.origin, Except: exceptID, Event: ev})
}

func (b *EventBus) publish(roomID string, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize room event: %w", err)
	}
	return b.client.Conn.Publish(subjectForRoom(roomID), data)
}

// Subscribe starts forwarding remote room events into local. Envelopes
// published by this instance are dropped so a publisher never hears itself.
func (b *EventBus) Subscribe(local Emitter) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		return nil
	}

	sub, err := b.client.Conn.Subscribe("relay.room.>", func(msg *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return // skip invalid envelopes
		}
		if env.Origin == b.origin {
			return
		}
		if env.Except != "" {
			local.EmitRoomExcept(env.Event.Room, env.Except, env.Event)
		} else {
			local.EmitRoom(env.Event.Room, env.Event)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to room events: %w", err)
	}

	b.sub = sub
	return nil
}

// Close drops the wildcard subscription. The underlying connection is owned
// by the NATSClient and closed separately.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
}
