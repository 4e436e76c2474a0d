package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dialogue engine metrics.
var (
	DialogueTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_turns_total",
			Help:      "Total dialogue turns by classified intent",
		},
		[]string{"intent"},
	)

	DialogueFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_fallback_total",
			Help:      "Turns that fell back to the generic timetable query after zero hits",
		},
	)

	SessionsLive = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Number of live chat sessions",
		},
		func() float64 { return sessionCount() },
	)
)

// sessionCount is wired from main with the session manager's Len.
var sessionCount = func() float64 { return 0 }

// SetSessionCounter wires the live-session gauge to a counter source.
func SetSessionCounter(fn func() float64) {
	if fn != nil {
		sessionCount = fn
	}
}

var dialogueMetricsRegistered bool

// RegisterDialogueMetrics registers dialogue metrics. Must be called once from main.
func RegisterDialogueMetrics() {
	if dialogueMetricsRegistered {
		return
	}
	prometheus.MustRegister(DialogueTurnsTotal)
	prometheus.MustRegister(DialogueFallbackTotal)
	prometheus.MustRegister(SessionsLive)
	dialogueMetricsRegistered = true
}
