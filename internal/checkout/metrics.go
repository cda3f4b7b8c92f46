package checkout

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK           = "ok"
	resultEmpty        = "empty_cart"
	resultInsufficient = "insufficient_coins"
	resultFailed       = "order_failed"
)

type Metrics struct {
	Checkouts *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Checkouts)
	return m
}

func (m *Metrics) observe(result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(result).Inc()
}
