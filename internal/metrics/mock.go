package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	subRequests        map[string]int
	sent               map[string]int
	failed             map[string]int
	unavailable        map[string]int
	broadcastDurations []float64
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		subRequests:        map[string]int{},
		sent:               map[string]int{},
		failed:             map[string]int{},
		unavailable:        map[string]int{},
		broadcastDurations: make([]float64, 0),
	}
}

func (m *Mock) IncSubRequests(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subRequests[status]++
}

func (m *Mock) IncNotificationSent(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[channel]++
}

func (m *Mock) IncNotificationFailed(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[channel]++
}

func (m *Mock) IncNotificationUnavailable(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable[channel]++
}

func (m *Mock) ObserveBroadcastDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastDurations = append(m.broadcastDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SubRequests returns how many transitions to status were recorded.
func (m *Mock) SubRequests(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subRequests[status]
}

// Sent returns the number of delivered notifications on channel.
func (m *Mock) Sent(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[channel]
}

// Failed returns the number of failed notifications on channel.
func (m *Mock) Failed(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[channel]
}

// Unavailable returns the number of notifications skipped on channel.
func (m *Mock) Unavailable(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unavailable[channel]
}

// BroadcastCount returns how many broadcast durations were observed.
func (m *Mock) BroadcastCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.broadcastDurations)
}
