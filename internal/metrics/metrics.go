package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Swipes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roam_swipes_total",
		Help: "Committed swipes by direction",
	}, []string{"direction"})
	SnapBacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roam_snapbacks_total",
		Help: "Drags released under the swipe threshold",
	})
	QuotaDenied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roam_quota_denied_total",
		Help: "Likes rejected by the daily quota",
	})
	Matches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roam_matches_total",
		Help: "Likes that matched back",
	})
	Exhausted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roam_queue_exhausted_total",
		Help: "Discovery sessions that ran out of candidates",
	})
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "roam_sessions_active",
		Help: "Open discovery sessions",
	})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roam_http_request_duration_seconds",
		Help:    "HTTP request duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(Swipes, SnapBacks, QuotaDenied, Matches, Exhausted, SessionsActive, HTTPDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func IncSwipe(direction string) { Swipes.WithLabelValues(direction).Inc() }

func SetSessionsActive(n int) { SessionsActive.Set(float64(n)) }

// ObserveHTTP records one request duration. route is the matched chi
// pattern, not the raw path.
func ObserveHTTP(method, route string, status int, start time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
