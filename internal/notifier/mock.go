package notifier

import (
	"context"
	"sync"
	"time"
)

// MockEmailSender records sent emails. It is safe for concurrent use.
type MockEmailSender struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, to, subject, textBody, htmlBody string) error
	Sent     []SentEmail
}

type SentEmail struct {
	To, Subject, TextBody, HTMLBody string
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	fn := m.SendFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, to, subject, textBody, htmlBody)
	}
	return nil
}

// MockSMSSender records sent text messages. It is safe for concurrent use.
type MockSMSSender struct {
	mu       sync.Mutex
	SendFunc func(ctx context.Context, to, body string) error
	Sent     []SentSMS
}

type SentSMS struct {
	To, Body string
}

func (m *MockSMSSender) Send(ctx context.Context, to, body string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentSMS{To: to, Body: body})
	fn := m.SendFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, to, body)
	}
	return nil
}

// MockAnnouncer records announcements.
type MockAnnouncer struct {
	mu           sync.Mutex
	AnnounceFunc func(ctx context.Context, a Announcement) error
	Calls        []Announcement
}

func (m *MockAnnouncer) Announce(ctx context.Context, a Announcement) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, a)
	fn := m.AnnounceFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, a)
	}
	return nil
}

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	DispatchFunc func(ctx context.Context, userID string, msg Message) error

	// Call records
	DispatchCalls []struct {
		UserID  string
		Message Message
	}
	BroadcastCalls []struct {
		OrganizationID string
		RequestedBy    string
		MatchDate      time.Time
		Note           string
	}
	AnnounceCalls []Announcement
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Dispatch(ctx context.Context, userID string, msg Message) error {
	m.mu.Lock()
	m.DispatchCalls = append(m.DispatchCalls, struct {
		UserID  string
		Message Message
	}{userID, msg})
	fn := m.DispatchFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID, msg)
	}
	return nil
}

func (m *Mock) BroadcastSubRequest(ctx context.Context, organizationID, requestedBy string, matchDate time.Time, note string) BroadcastResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BroadcastCalls = append(m.BroadcastCalls, struct {
		OrganizationID string
		RequestedBy    string
		MatchDate      time.Time
		Note           string
	}{organizationID, requestedBy, matchDate, note})
	return BroadcastResult{}
}

func (m *Mock) Announce(ctx context.Context, a Announcement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnnounceCalls = append(m.AnnounceCalls, a)
}

// Counts returns the number of Dispatch, BroadcastSubRequest and Announce calls.
func (m *Mock) Counts() (dispatches, broadcasts, announcements int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DispatchCalls), len(m.BroadcastCalls), len(m.AnnounceCalls)
}
