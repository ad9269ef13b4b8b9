package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSubRequests(status string)
	IncNotificationSent(channel string)
	IncNotificationFailed(channel string)
	IncNotificationUnavailable(channel string)
	ObserveBroadcastDuration(duration float64)
	SetStartupTime(duration float64)
}
