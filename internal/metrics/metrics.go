// Package metrics exposes prometheus counters for the quota and billing paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type Metrics struct {
	QuestionsConsumed prometheus.Counter
	GateDenials       *prometheus.CounterVec
	BillingEvents     *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuestionsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rescue",
			Name:      "questions_consumed_total",
			Help:      "Quota units recorded against user allowances.",
		}),
		GateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rescue",
			Name:      "gate_denials_total",
			Help:      "Requests rejected by the usage gate, by reason.",
		}, []string{"reason"}),
		BillingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rescue",
			Name:      "billing_events_total",
			Help:      "Checkout events applied to the quota ledger, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.QuestionsConsumed, m.GateDenials, m.BillingEvents)
	return m
}

func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func provideRegisterer(reg *prometheus.Registry) prometheus.Registerer {
	return reg
}

var Module = fx.Module("metrics",
	fx.Provide(
		NewRegistry,
		provideRegisterer,
		New,
	),
)
