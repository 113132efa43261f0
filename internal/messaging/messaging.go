package messaging

import "context"

// Publisher publishes JSON-encoded events to a topic, keyed by aggregate id.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// Handler processes one message payload. A returned error is logged by the
// subscriber and the message is not redelivered.
type Handler func(ctx context.Context, payload []byte) error

// Subscriber consumes a topic as part of a consumer group. Consume blocks
// until ctx is cancelled.
type Subscriber interface {
	Consume(ctx context.Context, topic string, groupID string, handler Handler)
}

// Broker is a publisher and subscriber sharing one connection.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}
