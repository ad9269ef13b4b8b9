package subrequest

import (
	"context"
	"sync"
)

// MockLifecycle is a mock implementation of the Lifecycle interface for
// testing. It is safe for concurrent use.
type MockLifecycle struct {
	mu sync.Mutex

	// Spies for method calls
	EligibleFunc func(ctx context.Context, userID, organizationID string) ([]Slot, error)
	CreateFunc   func(ctx context.Context, matchPlayerID, requestedBy, note string) (*SubRequest, error)
	AcceptFunc   func(ctx context.Context, requestID, userID string) (*SubRequest, error)
	CancelFunc   func(ctx context.Context, requestID, userID string) (*SubRequest, error)
	GetFunc      func(ctx context.Context, requestID string) (*SubRequest, error)
	ListOpenFunc func(ctx context.Context, organizationID string) ([]OpenRequest, error)

	// Call records
	CreateCalls []CreateCall
	AcceptCalls []ActionCall
	CancelCalls []ActionCall
}

type CreateCall struct {
	MatchPlayerID string
	RequestedBy   string
	Note          string
}

type ActionCall struct {
	RequestID string
	UserID    string
}

// NewMock creates a new mock instance.
func NewMock() *MockLifecycle {
	return &MockLifecycle{}
}

func (m *MockLifecycle) Eligible(ctx context.Context, userID, organizationID string) ([]Slot, error) {
	if m.EligibleFunc != nil {
		return m.EligibleFunc(ctx, userID, organizationID)
	}
	return []Slot{}, nil
}

func (m *MockLifecycle) Create(ctx context.Context, matchPlayerID, requestedBy, note string) (*SubRequest, error) {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, CreateCall{matchPlayerID, requestedBy, note})
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, matchPlayerID, requestedBy, note)
	}
	return &SubRequest{ID: "req-1", MatchPlayerID: matchPlayerID, RequestedBy: requestedBy, Note: note, Status: StatusOpen}, nil
}

func (m *MockLifecycle) Accept(ctx context.Context, requestID, userID string) (*SubRequest, error) {
	m.mu.Lock()
	m.AcceptCalls = append(m.AcceptCalls, ActionCall{requestID, userID})
	m.mu.Unlock()
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, requestID, userID)
	}
	return &SubRequest{ID: requestID, Status: StatusAccepted, AcceptedBy: &userID}, nil
}

func (m *MockLifecycle) Cancel(ctx context.Context, requestID, userID string) (*SubRequest, error) {
	m.mu.Lock()
	m.CancelCalls = append(m.CancelCalls, ActionCall{requestID, userID})
	m.mu.Unlock()
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, requestID, userID)
	}
	return &SubRequest{ID: requestID, RequestedBy: userID, Status: StatusCancelled}, nil
}

func (m *MockLifecycle) Get(ctx context.Context, requestID string) (*SubRequest, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, requestID)
	}
	return nil, ErrNotFound
}

func (m *MockLifecycle) ListOpen(ctx context.Context, organizationID string) ([]OpenRequest, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx, organizationID)
	}
	return []OpenRequest{}, nil
}
