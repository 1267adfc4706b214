package relay

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the relay's collectors. A nil *Metrics records nothing.
type Metrics struct {
	upstream       *prometheus.CounterVec
	tokenRefreshes *prometheus.CounterVec
	tempoLookups   *prometheus.CounterVec
	playback       *prometheus.HistogramVec
}

// NewMetrics registers the relay collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		upstream: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen_relay",
			Name:      "upstream_requests_total",
			Help:      "Requests made to the music service API, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		tokenRefreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen_relay",
			Name:      "token_refreshes_total",
			Help:      "Access token refresh exchanges, by outcome.",
		}, []string{"outcome"}),
		tempoLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumen_relay",
			Name:      "tempo_lookups_total",
			Help:      "Tempo lookups, by result (hit, miss, error).",
		}, []string{"result"}),
		playback: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lumen_relay",
			Name:      "playback_duration_seconds",
			Help:      "Time spent assembling a /playback response.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
}

func (m *Metrics) upstreamRequest(endpoint string, err error) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(endpoint, outcome(err)).Inc()
}

func (m *Metrics) tokenRefresh(err error) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) tempoLookup(result string) {
	if m == nil {
		return
	}
	m.tempoLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) observePlayback(start time.Time, err error) {
	if m == nil {
		return
	}
	m.playback.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
