package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the minting engine.
type Metrics struct {
	ParticipantsRegistered prometheus.Counter
	PhaseTransitions       *prometheus.CounterVec
	CurrentPhase           prometheus.Gauge
	TokensMinted           *prometheus.CounterVec
	MintFailures           *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ParticipantsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_participants_registered_total",
			Help: "Total number of participants registered",
		}),
		PhaseTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_phase_transitions_total",
			Help: "Total number of phase lifecycle transitions",
		}, []string{"transition"}),
		CurrentPhase: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mintgate_current_phase",
			Help: "Index of the current allocation phase",
		}),
		TokensMinted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_tokens_minted_total",
			Help: "Total number of tokens minted, by channel",
		}, []string{"channel"}),
		MintFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_mint_failures_total",
			Help: "Total number of rejected mint requests, by channel",
		}, []string{"channel"}),
	}
}

func (m *Metrics) IncrementParticipantsRegistered() {
	m.ParticipantsRegistered.Inc()
}

func (m *Metrics) RecordPhaseTransition(transition string, phase uint64) {
	m.PhaseTransitions.WithLabelValues(transition).Inc()
	m.CurrentPhase.Set(float64(phase))
}

func (m *Metrics) RecordMint(channel string, count int) {
	m.TokensMinted.WithLabelValues(channel).Add(float64(count))
}

func (m *Metrics) RecordMintFailure(channel string) {
	m.MintFailures.WithLabelValues(channel).Inc()
}
