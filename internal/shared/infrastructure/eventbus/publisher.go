package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meridianhire/panelsched/internal/shared/domain"
)

// Publisher defines the interface for publishing events to a message
// broker. cmd/worker wires a RabbitMQPublisher into jobqueue.Consumer;
// cmd/panelsched's synchronous CLI path never needs one at all, since a
// single solve never raises an event for anything but the job queue to
// pick up.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// PublishResult represents the result of a publish operation.
type PublishResult struct {
	Success bool
	Error   error
}

// PublishEvent JSON-encodes event and publishes it under its own
// RoutingKey. jobqueue.Consumer calls this once per SolveJob domain event
// (panelsched.solve.requested/succeeded/failed) it flushes after driving a
// job to completion, and InProcessEventBus.PublishDomainEvent uses it for
// synchronous local-mode delivery — one marshal/publish convention shared
// by both paths instead of each reimplementing it.
func PublishEvent(ctx context.Context, pub Publisher, event domain.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("eventbus: marshal event %s: %w", event.RoutingKey(), err)
	}
	if err := pub.Publish(ctx, event.RoutingKey(), payload); err != nil {
		return fmt.Errorf("eventbus: publish event %s: %w", event.RoutingKey(), err)
	}
	return nil
}
