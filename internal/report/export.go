package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/factory-stock/internal/domain/catalog"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/domain/orders"
	"github.com/Spok95/factory-stock/internal/stock"
)

// TimeLayout is the minute-resolution layout used in sheets and messages.
const TimeLayout = "2006-01-02 15:04"

const (
	SheetStock        = "stock"
	SheetTransactions = "transactions"
	SheetOrders       = "orders"
	SheetHistory      = "history"
)

type Source interface {
	Products() []catalog.Product
	PendingQuantity(product string) int64
	Recent(n int) []inventory.Transaction
	Orders() []orders.Order
	Snapshot(product string) (stock.Snapshot, error)
	Location() *time.Location
}

// Export builds a workbook with the current stock, the whole ledger (most
// recent first), the orders and the reconstructed history of every product.
// A product's stock row and its history come from the same snapshot, so they
// agree even while movements are being applied.
func Export(src Source) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetStock); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetTransactions, SheetOrders, SheetHistory} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	loc := src.Location()
	products := src.Products()
	snaps := make([]stock.Snapshot, 0, len(products))
	for _, p := range products {
		snap, err := src.Snapshot(p.Name)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", p.Name, err)
		}
		snaps = append(snaps, snap)
	}

	w := sheetWriter{f: f}
	w.sheet(SheetStock, "product", "stock", "unit", "pending_orders")
	for _, snap := range snaps {
		p := snap.Product
		w.row(p.Name, p.Stock, p.Unit, src.PendingQuantity(p.Name))
	}

	w.sheet(SheetTransactions, "datetime", "kind", "product", "quantity", "note", "seq")
	for _, tx := range src.Recent(0) {
		w.row(tx.At.In(loc).Format(TimeLayout), string(tx.Kind), tx.Product, tx.Quantity, tx.Note, tx.Seq)
	}

	w.sheet(SheetOrders, "customer", "product", "quantity", "delivery_date", "status")
	for _, o := range src.Orders() {
		w.row(o.Customer, o.Product, o.Quantity, o.DeliveryDate.Format(time.DateOnly), string(o.Status))
	}

	w.sheet(SheetHistory, "product", "datetime", "seq", "stock")
	for _, snap := range snaps {
		for _, pt := range snap.History {
			w.row(snap.Product.Name, pt.At.In(loc).Format(TimeLayout), pt.Seq, pt.Stock)
		}
	}
	if w.err != nil {
		return nil, w.err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// sheetWriter appends rows to one sheet at a time and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	name string
	next int
	err  error
}

func (w *sheetWriter) sheet(name string, header ...interface{}) {
	w.name, w.next = name, 1
	w.row(header...)
}

func (w *sheetWriter) row(values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.name, cell, &values); err != nil {
		w.err = fmt.Errorf("sheet %s row %d: %w", w.name, w.next, err)
		return
	}
	w.next++
}
