package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventConsumer handles specific event types. jobqueue.Consumer is the
// only implementation in this module: it declares
// []string{jobqueue.RoutingKeyRequested} from EventTypes and drives a
// queued solve to completion from Handle.
type EventConsumer interface {
	// EventTypes returns the routing keys this consumer handles.
	// e.g., ["panelsched.solve.requested"]
	EventTypes() []string

	// Handle processes the event.
	Handle(ctx context.Context, event *ConsumedEvent) error
}

// ConsumedEvent represents an event received from the message bus. When
// RabbitMQConsumer delivers a panelsched.solve.* message, AggregateID is
// the SolveJob's ID and AggregateType is "scheduling.solve_job", matching
// what jobqueue's domain events set when they were published.
type ConsumedEvent struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      EventMetadata   `json:"metadata,omitempty"`
}

// EventMetadata contains optional metadata about the event.
// CoordinatorID identifies the recruiting coordinator whose CLI
// invocation or queued job submission produced the event, mirroring
// domain.EventMetadata — this module has no authenticated end-user
// concept to key a generic "user" field on.
type EventMetadata struct {
	CoordinatorID uuid.UUID `json:"coordinator_id,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CausationID   string    `json:"causation_id,omitempty"`
}

// Consumer defines the interface for consuming events from a message
// broker. cmd/worker uses RabbitMQConsumer: it registers jobqueue.Consumer
// and blocks in Start, turning panelsched.solve.requested deliveries into
// solves. InProcessEventBus also satisfies it for local mode.
type Consumer interface {
	// Start begins consuming messages. This is a blocking call.
	Start(ctx context.Context) error

	// RegisterConsumer registers an event consumer.
	RegisterConsumer(consumer EventConsumer)

	// Close closes the consumer connection.
	Close() error
}
