package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/factory-stock/internal/domain/catalog"
	"github.com/Spok95/factory-stock/internal/domain/history"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/domain/orders"
	"github.com/Spok95/factory-stock/internal/stock"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf
}

func TestImportOrders(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"customer", "product", "quantity", "delivery_date", "status"},
		{"Sample Trading", "A", 30, "2025-12-20", "未出荷"},
		{},
		{"Sample Goods", "A", 20, "2025/12/19", "shipped"},
		{"Dummy Corp", "C", 100, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), ""},
	})

	got, err := ImportOrders(buf)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, orders.Order{
		Customer:     "Sample Trading",
		Product:      "A",
		Quantity:     30,
		DeliveryDate: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
		Status:       orders.StatusPending,
	}, got[0])
	assert.Equal(t, orders.StatusShipped, got[1].Status)
	assert.Equal(t, time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), got[2].DeliveryDate)
	assert.Equal(t, orders.StatusPending, got[2].Status)
}

func TestImportOrders_BadRowFailsImport(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Sample Trading", "A", 30, "2025-12-20", "pending"},
		{"Test Industries", "B", "many", "2025-12-22", "pending"},
	})

	_, err := ImportOrders(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestImportOrders_NotAWorkbook(t *testing.T) {
	_, err := ImportOrders(bytes.NewReader([]byte("customer,product\n")))
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 12, 18, 9, 30, 0, 0, time.UTC)
	cat := catalog.New()
	require.NoError(t, cat.Add(catalog.Product{Name: "A", Stock: 120, Unit: "pcs"}))
	require.NoError(t, cat.Add(catalog.Product{Name: "B", Stock: 85, Unit: "pcs"}))
	led := inventory.NewLedger(inventory.WithClock(func() time.Time { return at }))
	svc := stock.New(cat, led, orders.NewBook(), stock.WithLocation(time.UTC))

	_, err := svc.ApplyMovement(ctx, inventory.KindReceipt, "A", 100, "made")
	require.NoError(t, err)
	_, err = svc.ApplyMovement(ctx, inventory.KindShipment, "A", 50, "")
	require.NoError(t, err)
	require.NoError(t, svc.AddOrder(orders.Order{Customer: "Sample Trading", Product: "A", Quantity: 30, DeliveryDate: at, Status: orders.StatusPending}))

	buf, err := Export(svc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetStock, SheetTransactions, SheetOrders, SheetHistory}, f.GetSheetList())

	rows, err := f.GetRows(SheetStock)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"product", "stock", "unit", "pending_orders"},
		{"A", "170", "pcs", "30"},
		{"B", "85", "pcs", "0"},
	}, rows)

	rows, err = f.GetRows(SheetTransactions)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-12-18 09:30", "shipment", "A", "50", "-", "2"}, rows[1])
	assert.Equal(t, []string{"2025-12-18 09:30", "receipt", "A", "100", "made", "1"}, rows[2])

	rows, err = f.GetRows(SheetOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample Trading", "A", "30", "2025-12-18", "pending"}, rows[1])

	rows, err = f.GetRows(SheetHistory)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"product", "datetime", "seq", "stock"},
		{"A", "2025-12-18 09:30", "0", "120"},
		{"A", "2025-12-18 09:30", "1", "220"},
		{"A", "2025-12-18 09:30", "2", "170"},
	}, rows)
}

// movingSource reports a product list that is already stale by the time the
// per-product snapshot is taken, as happens when a movement lands in between.
type movingSource struct {
	at time.Time
}

func (m movingSource) Products() []catalog.Product {
	return []catalog.Product{{Name: "A", Stock: 120, Unit: "pcs"}}
}

func (m movingSource) Snapshot(product string) (stock.Snapshot, error) {
	return stock.Snapshot{
		Product: catalog.Product{Name: product, Stock: 170, Unit: "pcs"},
		History: []history.Point{
			{At: m.at, Seq: 0, Stock: 120},
			{At: m.at, Seq: 1, Stock: 220},
			{At: m.at, Seq: 2, Stock: 170},
		},
	}, nil
}

func (m movingSource) PendingQuantity(string) int64       { return 0 }
func (m movingSource) Recent(int) []inventory.Transaction { return nil }
func (m movingSource) Orders() []orders.Order             { return nil }
func (m movingSource) Location() *time.Location           { return time.UTC }

func TestExport_StockAndHistoryAgree(t *testing.T) {
	buf, err := Export(movingSource{at: time.Date(2025, 12, 18, 0, 30, 0, 0, time.UTC)})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetStock)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "170", rows[1][1])

	rows, err = f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "170", rows[3][3], "last history point must match the stock sheet")
}
