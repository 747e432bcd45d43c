package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Spok95/factory-stock/internal/domain/inventory"
)

func TestStockMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MovementApplied(inventory.Transaction{Kind: inventory.KindReceipt, Quantity: 100})
	m.MovementApplied(inventory.Transaction{Kind: inventory.KindReceipt, Quantity: 5})
	m.MovementApplied(inventory.Transaction{Kind: inventory.KindShipment, Quantity: 30})
	m.MovementRejected(inventory.KindShipment, "insufficient_stock")
	m.StockLevel("A", 220)
	m.StockLevel("A", 190)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("receipt")))
	assert.Equal(t, 105.0, testutil.ToFloat64(m.quantity.WithLabelValues("receipt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("shipment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 190.0, testutil.ToFloat64(m.level.WithLabelValues("A")))
}
