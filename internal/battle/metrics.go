// Package battle metrics for vote and lifecycle activity.
package battle

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricBattlesCreatedTotal = "battles_created_total"
	MetricBattlesDeletedTotal = "battles_deleted_total"
	MetricBattleVotesTotal    = "battle_votes_total"
	MetricBattleVisitorsTotal = "battle_visitors_total"
)

// Metrics contains Prometheus metrics for battle operations.
// All operations are thread-safe.
type Metrics struct {
	battlesCreated prometheus.Counter
	battlesDeleted prometheus.Counter
	votes          *prometheus.CounterVec
	visitors       prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register them
// with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		battlesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBattlesCreatedTotal,
			Help: "Total number of battles created",
		}),
		battlesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBattlesDeletedTotal,
			Help: "Total number of battles deleted",
		}),
		votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricBattleVotesTotal,
				Help: "Total number of battle votes recorded by criterion",
			},
			[]string{"criterion"},
		),
		visitors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricBattleVisitorsTotal,
			Help: "Total number of battle visitor increments",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.battlesCreated, m.battlesDeleted, m.votes, m.visitors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveCreated records a battle creation.
func (m *Metrics) ObserveCreated() {
	m.battlesCreated.Inc()
}

// ObserveDeleted records a battle deletion.
func (m *Metrics) ObserveDeleted() {
	m.battlesDeleted.Inc()
}

// ObserveVote records a vote on the given criterion.
func (m *Metrics) ObserveVote(criterion string) {
	m.votes.WithLabelValues(criterion).Inc()
}

// ObserveVisitor records a visitor increment.
func (m *Metrics) ObserveVisitor() {
	m.visitors.Inc()
}
