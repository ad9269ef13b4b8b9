package pubsub

import "context"

// PubSubClient publishes sub request lifecycle events.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
}
