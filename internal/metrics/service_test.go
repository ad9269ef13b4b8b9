package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestServiceCountsPerLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncSubRequests("open")
	s.IncSubRequests("open")
	s.IncSubRequests("accepted")
	s.IncNotificationSent(ChannelEmail)
	s.IncNotificationFailed(ChannelSMS)
	s.IncNotificationUnavailable(ChannelSlack)

	assert.Equal(t, 2.0, counterValue(t, reg, "league_sub_requests_total", "open"))
	assert.Equal(t, 1.0, counterValue(t, reg, "league_sub_requests_total", "accepted"))
	assert.Equal(t, 1.0, counterValue(t, reg, "league_notifications_sent_total", ChannelEmail))
	assert.Equal(t, 1.0, counterValue(t, reg, "league_notifications_failed_total", ChannelSMS))
	assert.Equal(t, 1.0, counterValue(t, reg, "league_notifications_unavailable_total", ChannelSlack))
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.SetStartupTime(1.5)
	s.ObserveBroadcastDuration(0.2)

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "league_startup_duration_seconds 1.5"))
	assert.True(t, strings.Contains(body, "league_sub_request_broadcast_duration_seconds_count 1"))
}
