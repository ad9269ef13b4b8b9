package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a publisher for projectID. An empty projectID yields a client
// that drops every event. The returned teardown closes the underlying client.
func New(ctx context.Context, projectID string) (PubSubClient, func(), error) {
	if projectID == "" {
		log.Warn("GCP_PROJECT not set, lifecycle events will not be published")
		return noopClient{}, func() {}, nil
	}
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	teardown := func() {
		if err := pubSubC.Close(); err != nil {
			log.Error("Failed to close pubsub client", "error", err)
		}
	}
	return &client{client: pubSubC}, teardown, nil
}

func (c *client) SendMessage(ctx context.Context, topic EventType, data any) error {
	msgpackData, err := encode(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	result := c.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{
		Data:       msgpackData,
		Attributes: map[string]string{"event": string(topic)},
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	log.Debug("Published event", "topic", topic, "serverID", serverID)
	return nil
}

func (noopClient) SendMessage(ctx context.Context, topic EventType, data any) error {
	log.Debug("Dropping event, pubsub disabled", "topic", topic)
	return nil
}

func encode(data any) ([]byte, error) {
	return msgpack.Marshal(data)
}

// Decode unpacks an event payload received from a subscription.
func Decode(data []byte) (*SubRequestEvent, error) {
	var event SubRequestEvent
	if err := msgpack.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}
