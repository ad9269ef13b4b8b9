package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SubRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_sub_requests_total",
			Help: "Sub request lifecycle transitions by resulting status.",
		}, []string{"status"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_notifications_sent_total",
			Help: "Notifications delivered, by channel.",
		}, []string{"channel"}),
		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_notifications_failed_total",
			Help: "Notifications the transport rejected, by channel.",
		}, []string{"channel"}),
		NotificationsUnavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_notifications_unavailable_total",
			Help: "Notifications skipped because the channel is not configured.",
		}, []string{"channel"}),
		BroadcastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_sub_request_broadcast_duration_seconds",
			Help:    "Time spent notifying every sub of a league about a new request.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SubRequests,
		s.NotificationsSent,
		s.NotificationsFailed,
		s.NotificationsUnavailable,
		s.BroadcastDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSubRequests(status string) {
	s.SubRequests.WithLabelValues(status).Inc()
}

func (s *Service) IncNotificationSent(channel string) {
	s.NotificationsSent.WithLabelValues(channel).Inc()
}

func (s *Service) IncNotificationFailed(channel string) {
	s.NotificationsFailed.WithLabelValues(channel).Inc()
}

func (s *Service) IncNotificationUnavailable(channel string) {
	s.NotificationsUnavailable.WithLabelValues(channel).Inc()
}

func (s *Service) ObserveBroadcastDuration(duration float64) {
	s.BroadcastDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
