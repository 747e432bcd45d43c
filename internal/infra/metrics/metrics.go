package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Spok95/factory-stock/internal/domain/inventory"
)

// Stock exposes ledger activity as prometheus series.
type Stock struct {
	movements *prometheus.CounterVec
	quantity  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	level     *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Stock {
	s := &Stock{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_total",
			Help: "Applied stock movements by kind.",
		}, []string{"kind"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movement_quantity_total",
			Help: "Units moved by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_rejected_total",
			Help: "Rejected stock movements by reason.",
		}, []string{"reason"}),
		level: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stock_level",
			Help: "Current stock per product.",
		}, []string{"product"}),
	}
	reg.MustRegister(s.movements, s.quantity, s.rejected, s.level)
	return s
}

func (s *Stock) MovementApplied(tx inventory.Transaction) {
	s.movements.WithLabelValues(string(tx.Kind)).Inc()
	s.quantity.WithLabelValues(string(tx.Kind)).Add(float64(tx.Quantity))
}

func (s *Stock) MovementRejected(_ inventory.Kind, reason string) {
	s.rejected.WithLabelValues(reason).Inc()
}

func (s *Stock) StockLevel(product string, stock int64) {
	s.level.WithLabelValues(product).Set(float64(stock))
}
