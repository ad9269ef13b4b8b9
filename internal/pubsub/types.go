package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client *pubsub.Client
}

// noopClient is used when no GCP project is configured.
type noopClient struct{}

// EventType represents the type of event/message sent via pubsub. Each event
// type is published to the topic of the same name.
type EventType string

const (
	EventSubRequestCreated   EventType = "sub-request-created"
	EventSubRequestAccepted  EventType = "sub-request-accepted"
	EventSubRequestCancelled EventType = "sub-request-cancelled"
)

// SubRequestEvent is the msgpack payload of every lifecycle event.
type SubRequestEvent struct {
	RequestID      string `msgpack:"request_id"`
	MatchPlayerID  string `msgpack:"match_player_id"`
	OrganizationID string `msgpack:"organization_id"`
	RequestedBy    string `msgpack:"requested_by"`
	AcceptedBy     string `msgpack:"accepted_by,omitempty"`
	Status         string `msgpack:"status"`
	MatchDate      int64  `msgpack:"match_date"`
	OccurredAt     int64  `msgpack:"occurred_at"`
}
