package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterCoreStats exposes the in-memory core's diagnostic snapshots as
// gauges, sampled at scrape time. Call once from main after the limiter and
// store are constructed.
func RegisterCoreStats(
	limiterStats func() (activeUsers, totalRequests int),
	storeStats func() (activeUsers, totalTurns int),
) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ratelimit_active_users",
			Help: "Users with at least one request inside the current window.",
		}, func() float64 { u, _ := limiterStats(); return float64(u) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ratelimit_tracked_requests",
			Help: "Valid (non-expired) request timestamps currently stored.",
		}, func() float64 { _, r := limiterStats(); return float64(r) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "conversation_active_users",
			Help: "Users with stored conversation history.",
		}, func() float64 { u, _ := storeStats(); return float64(u) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "conversation_turns",
			Help: "Total turns retained across all users.",
		}, func() float64 { _, t := storeStats(); return float64(t) }),
	)
}
