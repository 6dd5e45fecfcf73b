package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of bot updates handled labeled by kind and status",
		},
		[]string{"kind", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	stateTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)
	ledgerAppendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_appends_total",
			Help: "Total number of spreadsheet append attempts by status",
		},
		[]string{"status"},
	)
	ledgerAppendDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_append_duration_seconds",
			Help:    "Duration of spreadsheet appends in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
	)
	openConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "open_conversations",
			Help: "Current number of open conversations",
		},
	)
	usersByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_state",
			Help: "Number of users per conversation state",
		},
		[]string{"state"},
	)
)

// RecordUpdate increments update counters and records duration.
func RecordUpdate(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(kind, status).Inc()
	updateDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStateTransition tracks FSM transitions.
func RecordStateTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordLedgerAppend tracks spreadsheet append attempts.
func RecordLedgerAppend(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}

	ledgerAppendsTotal.WithLabelValues(status).Inc()
	ledgerAppendDurationSeconds.Observe(duration.Seconds())
}

// ConversationCounter reports how many conversations are open per state name.
// The conversation storage implements it; depending on the interface keeps
// this package free of application imports.
type ConversationCounter interface {
	CountByState(ctx context.Context) (map[string]int, error)
}

// StateCollector periodically gathers conversation counts and emits gauges.
type StateCollector struct {
	counter ConversationCounter
}

// NewStateCollector builds a collector bound to the provided state counter.
func NewStateCollector(counter ConversationCounter) *StateCollector {
	return &StateCollector{counter: counter}
}

// Run polls every 10 seconds, updating the gauges until ctx is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.counter == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	counts, err := c.counter.CountByState(ctx)
	if err != nil {
		return err
	}

	total := 0
	usersByState.Reset()
	for s, count := range counts {
		total += count
		usersByState.WithLabelValues(s).Set(float64(count))
	}

	openConversations.Set(float64(total))

	return nil
}
