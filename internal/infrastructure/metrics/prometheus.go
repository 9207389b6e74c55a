// Package metrics expone los contadores de negocio de ventas e inventario en formato Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementación de ports.Metrics.
type Prometheus struct {
	salesCommitted    prometheus.Counter
	saleLines         prometheus.Histogram
	salesAmount       prometheus.Counter
	salesRejected     *prometheus.CounterVec
	movementsRecorded *prometheus.CounterVec
	movementsRejected *prometheus.CounterVec
}

// NewPrometheus registra los colectores en reg (usar prometheus.DefaultRegisterer en producción).
func NewPrometheus(namespace string, reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		salesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sales", Name: "committed_total",
			Help: "Ventas confirmadas.",
		}),
		saleLines: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "sales", Name: "lines",
			Help:    "Líneas por venta confirmada.",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		}),
		salesAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sales", Name: "amount_total",
			Help: "Suma de totales de ventas confirmadas.",
		}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "sales", Name: "rejected_total",
			Help: "Ventas rechazadas por motivo.",
		}, []string{"reason"}),
		movementsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "movements_total",
			Help: "Movimientos manuales registrados por tipo.",
		}, []string{"type"}),
		movementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "inventory", Name: "movements_rejected_total",
			Help: "Movimientos rechazados por motivo.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.salesCommitted, m.saleLines, m.salesAmount, m.salesRejected, m.movementsRecorded, m.movementsRejected)
	return m
}

func (m *Prometheus) SaleCommitted(lines int, total decimal.Decimal) {
	m.salesCommitted.Inc()
	m.saleLines.Observe(float64(lines))
	amount, _ := total.Float64()
	m.salesAmount.Add(amount)
}

func (m *Prometheus) SaleRejected(reason string) {
	m.salesRejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) MovementRecorded(movementType string) {
	m.movementsRecorded.WithLabelValues(movementType).Inc()
}

func (m *Prometheus) MovementRejected(reason string) {
	m.movementsRejected.WithLabelValues(reason).Inc()
}

// Handler expone los colectores de g en /metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
