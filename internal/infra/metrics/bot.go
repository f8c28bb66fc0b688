package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Telegram updates handled, by kind (command/message/callback).",
		},
		[]string{"kind"},
	)

	botThrottled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_throttled_total",
			Help: "Messages rejected by the per-user rate limiter.",
		},
	)

	newsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fetches_total",
			Help: "News lookups by cache outcome (hit/miss).",
		},
		[]string{"cache"},
	)
)

func init() {
	register(botUpdates, botThrottled, newsFetches)
}

func IncUpdate(kind string) { botUpdates.WithLabelValues(norm(kind)).Inc() }

func IncThrottled() { botThrottled.Inc() }

func IncNewsFetch(outcome string) { newsFetches.WithLabelValues(norm(outcome)).Inc() }
