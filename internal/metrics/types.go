package metrics

import "github.com/prometheus/client_golang/prometheus"

// Notification channels used as label values.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelSlack = "slack"
)

// Service holds all the Prometheus metrics for the application.
type Service struct {
	SubRequests              *prometheus.CounterVec
	NotificationsSent        *prometheus.CounterVec
	NotificationsFailed      *prometheus.CounterVec
	NotificationsUnavailable *prometheus.CounterVec
	BroadcastDuration        prometheus.Histogram
	StartupTimeSeconds       prometheus.Gauge
}
