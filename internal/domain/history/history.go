// Package history rebuilds past stock levels of a product from its current
// stock and its ledger entries, without a stored history table.
//
// The walk runs backward from the current value, so the result is only as
// good as the ledger: if older movements are missing, the baseline point
// may come out negative. Reconstruct reports it as is.
package history

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Spok95/factory-stock/internal/domain/inventory"
)

var ErrInconsistent = errors.New("history: replay does not match reconstruction")

// Point is the stock level right after the movement with sequence Seq.
// The baseline point, the level before any recorded movement, has Seq 0.
type Point struct {
	At    time.Time `json:"at"`
	Seq   uint64    `json:"seq"`
	Stock int64     `json:"stock"`
}

// Chronological returns a copy of entries sorted oldest first. Entries with
// equal timestamps keep their ledger sequence order.
func Chronological(entries []inventory.Transaction) []inventory.Transaction {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b inventory.Transaction) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		}
		return 0
	})
	return out
}

// Reconstruct returns the product's stock levels oldest first: a baseline
// point followed by one point per entry. Empty entries give an empty result.
func Reconstruct(current int64, entries []inventory.Transaction) []Point {
	if len(entries) == 0 {
		return nil
	}
	txs := Chronological(entries)

	points := make([]Point, 0, len(txs)+1)
	s := current
	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		points = append(points, Point{At: tx.At, Seq: tx.Seq, Stock: s})
		s -= tx.Delta()
	}
	points = append(points, Point{At: txs[0].At, Seq: 0, Stock: s})

	slices.Reverse(points)
	return points
}

// Replay walks the entries forward from the baseline point and checks every
// intermediate level against points. It returns the final stock.
func Replay(points []Point, entries []inventory.Transaction) (int64, error) {
	if len(points) == 0 {
		if len(entries) != 0 {
			return 0, fmt.Errorf("%w: no points for %d entries", ErrInconsistent, len(entries))
		}
		return 0, nil
	}
	txs := Chronological(entries)
	if len(points) != len(txs)+1 {
		return 0, fmt.Errorf("%w: %d points for %d entries", ErrInconsistent, len(points), len(txs))
	}
	s := points[0].Stock
	for i, tx := range txs {
		s += tx.Delta()
		if p := points[i+1]; p.Seq != tx.Seq || p.Stock != s {
			return 0, fmt.Errorf("%w: seq %d expected %d, got %d", ErrInconsistent, tx.Seq, s, p.Stock)
		}
	}
	return s, nil
}
