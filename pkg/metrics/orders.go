package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle events.
type OrderMetrics struct {
	placed      *prometheus.CounterVec
	settlements prometheus.Counter
}

// NewOrderMetrics registers order lifecycle metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed at checkout.",
	}, []string{"delivery_method"})
	settlements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_settlements_total",
		Help: "Completed orders settled against the ingredient ledger.",
	})
	reg.MustRegister(placed, settlements)
	return &OrderMetrics{
		placed:      placed,
		settlements: settlements,
	}
}

// IncPlaced increments the placed counter for the given delivery method.
func (o *OrderMetrics) IncPlaced(deliveryMethod string) {
	if o == nil || o.placed == nil {
		return
	}
	o.placed.WithLabelValues(normalizeLabel(deliveryMethod)).Inc()
}

// IncSettlement increments the settlement counter.
func (o *OrderMetrics) IncSettlement() {
	if o == nil || o.settlements == nil {
		return
	}
	o.settlements.Inc()
}
