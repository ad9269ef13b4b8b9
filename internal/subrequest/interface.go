package subrequest

import (
	"context"
	"time"
)

// Store persists sub requests. Every write validates its preconditions inside
// the transaction that performs it.
type Store interface {
	Eligible(ctx context.Context, userID, organizationID string, now time.Time) ([]Slot, error)
	GetSlot(ctx context.Context, matchPlayerID string) (*Slot, error)
	Create(ctx context.Context, matchPlayerID, requestedBy, note string, now time.Time) (*SubRequest, error)
	Accept(ctx context.Context, requestID, userID string, now time.Time) (*Accepted, error)
	Cancel(ctx context.Context, requestID, userID string, now time.Time) (*SubRequest, error)
	Get(ctx context.Context, requestID string) (*SubRequest, error)
	ListOpen(ctx context.Context, organizationID string, now time.Time) ([]OpenRequest, error)
}

// Lifecycle is the sub request workflow exposed to the HTTP layer.
type Lifecycle interface {
	Eligible(ctx context.Context, userID, organizationID string) ([]Slot, error)
	Create(ctx context.Context, matchPlayerID, requestedBy, note string) (*SubRequest, error)
	Accept(ctx context.Context, requestID, userID string) (*SubRequest, error)
	Cancel(ctx context.Context, requestID, userID string) (*SubRequest, error)
	Get(ctx context.Context, requestID string) (*SubRequest, error)
	ListOpen(ctx context.Context, organizationID string) ([]OpenRequest, error)
}
