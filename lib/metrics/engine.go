package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type EngineMetrics struct {
	OpenProposals metrics.Gauge
	Verdicts      metrics.Counter

	Extensions       metrics.Counter
	WeightRecomputes metrics.Counter
	RejectedVotes    metrics.Counter

	EvaluateDurationSeconds metrics.Histogram
}

func (e *EngineMetrics) SetOpenProposals(num int) {
	e.OpenProposals.Set(float64(num))
}

func (e *EngineMetrics) AddVerdict(verdict string) {
	e.Verdicts.With("verdict", verdict).Add(1)
}

func (e *EngineMetrics) AddExtension() {
	e.Extensions.Add(1)
}

func (e *EngineMetrics) AddWeightRecomputes(num int) {
	e.WeightRecomputes.Add(float64(num))
}

func (e *EngineMetrics) AddRejectedVote() {
	e.RejectedVotes.Add(1)
}

func (e *EngineMetrics) ObserveEvaluateDuration(seconds float64) {
	e.EvaluateDurationSeconds.Observe(seconds)
}

func PromEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		OpenProposals: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "open_proposals",
			Help:      "Number of proposals in the active evaluation pool.",
		}, []string{}),
		Verdicts: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "verdicts_total",
			Help:      "Total number of terminal verdicts.",
		}, []string{"verdict"}),
		Extensions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "extensions_total",
			Help:      "Total number of near-miss window extensions.",
		}, []string{}),
		WeightRecomputes: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "weight_recomputes_total",
			Help:      "Total number of effective weight recomputations.",
		}, []string{}),
		RejectedVotes: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "rejected_votes_total",
			Help:      "Total number of rejected votes.",
		}, []string{}),
		EvaluateDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "evaluate_duration_seconds",
		}, []string{}),
	}
}

func NopEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		OpenProposals: discard.NewGauge(),
		Verdicts:      discard.NewCounter(),

		Extensions:       discard.NewCounter(),
		WeightRecomputes: discard.NewCounter(),
		RejectedVotes:    discard.NewCounter(),

		EvaluateDurationSeconds: discard.NewHistogram(),
	}
}
