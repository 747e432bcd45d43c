// Package stock is the inventory ledger service: it keeps the product
// catalog and the movement ledger consistent and answers stock, history
// and order queries.
package stock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Spok95/factory-stock/internal/domain/catalog"
	"github.com/Spok95/factory-stock/internal/domain/history"
	"github.com/Spok95/factory-stock/internal/domain/inventory"
	"github.com/Spok95/factory-stock/internal/domain/orders"
)

var (
	ErrUnknownProduct    = catalog.ErrUnknownProduct
	ErrInsufficientStock = catalog.ErrInsufficientStock
	ErrInvalidQuantity   = inventory.ErrInvalidQuantity
	ErrInvalidKind       = inventory.ErrInvalidKind
)

// emptyNote is stored when a movement is recorded without a note.
const emptyNote = "-"

// Journal is a durable, append-only copy of the ledger.
type Journal interface {
	Append(ctx context.Context, tx inventory.Transaction) error
	Load(ctx context.Context) ([]inventory.Transaction, error)
}

// Observer is notified about every movement attempt and stock change.
type Observer interface {
	MovementApplied(tx inventory.Transaction)
	MovementRejected(kind inventory.Kind, reason string)
	StockLevel(product string, stock int64)
}

type Service struct {
	catalog *catalog.Catalog
	ledger  *inventory.Ledger
	book    *orders.Book

	journal  Journal
	observer Observer
	log      *slog.Logger
	loc      *time.Location

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

type Option func(*Service)

func WithJournal(j Journal) Option     { return func(s *Service) { s.journal = j } }
func WithObserver(o Observer) Option   { return func(s *Service) { s.observer = o } }
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithLocation sets the time zone used for calendar-day metrics.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func New(cat *catalog.Catalog, led *inventory.Ledger, book *orders.Book, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		ledger:  led,
		book:    book,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		loc:     time.Local,
		locks:   make(map[string]*sync.RWMutex),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lockFor returns the product's lock. Locks exist only for catalog products,
// so lookups of unknown names leave nothing behind.
func (s *Service) lockFor(product string) (*sync.RWMutex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[product]; ok {
		return l, nil
	}
	if _, err := s.catalog.Get(product); err != nil {
		return nil, err
	}
	l := &sync.RWMutex{}
	s.locks[product] = l
	return l, nil
}

// ApplyMovement validates a receipt or shipment, adjusts the product's stock
// and appends the movement to the ledger as one unit. On error neither the
// catalog nor the ledger is changed.
func (s *Service) ApplyMovement(ctx context.Context, kind inventory.Kind, product string, qty int64, note string) (inventory.Transaction, error) {
	tx, after, err := s.applyLocked(ctx, kind, product, qty, note)
	if err != nil {
		s.log.Debug("movement rejected", "kind", kind, "product", product, "qty", qty, "err", err)
		if s.observer != nil {
			s.observer.MovementRejected(kind, rejectReason(err))
		}
		return inventory.Transaction{}, err
	}

	s.log.Info("movement applied",
		"seq", tx.Seq,
		"kind", tx.Kind,
		"product", tx.Product,
		"qty", tx.Quantity,
		"stock", after,
	)
	if s.observer != nil {
		s.observer.MovementApplied(tx)
		s.observer.StockLevel(tx.Product, after)
	}
	return tx, nil
}

func (s *Service) applyLocked(ctx context.Context, kind inventory.Kind, product string, qty int64, note string) (inventory.Transaction, int64, error) {
	l, err := s.lockFor(product)
	if err != nil {
		return inventory.Transaction{}, 0, err
	}
	l.Lock()
	defer l.Unlock()
	return s.apply(ctx, kind, product, qty, note)
}

func (s *Service) apply(ctx context.Context, kind inventory.Kind, product string, qty int64, note string) (inventory.Transaction, int64, error) {
	if !kind.Valid() {
		return inventory.Transaction{}, 0, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if qty <= 0 {
		return inventory.Transaction{}, 0, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	p, err := s.catalog.Get(product)
	if err != nil {
		return inventory.Transaction{}, 0, err
	}
	if kind == inventory.KindReceipt && qty > math.MaxInt64-p.Stock {
		return inventory.Transaction{}, 0, fmt.Errorf("%w: %q has %d, receipt of %d overflows", ErrInvalidQuantity, product, p.Stock, qty)
	}
	delta := kind.Sign() * qty
	if p.Stock+delta < 0 {
		return inventory.Transaction{}, 0, fmt.Errorf("%w: %q has %d, requested %d", ErrInsufficientStock, product, p.Stock, qty)
	}

	if strings.TrimSpace(note) == "" {
		note = emptyNote
	}

	var after catalog.Product
	tx, err := s.ledger.Append(kind, product, qty, note, func(tx inventory.Transaction) error {
		if s.journal != nil {
			if err := s.journal.Append(ctx, tx); err != nil {
				return fmt.Errorf("journal append: %w", err)
			}
		}
		p, err := s.catalog.AdjustStock(product, delta)
		after = p
		return err
	})
	if err != nil {
		return inventory.Transaction{}, 0, err
	}
	return tx, after.Stock, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidKind):
		return "invalid_kind"
	}
	return "internal"
}

func (s *Service) CurrentStock(product string) (int64, error) {
	l, err := s.lockFor(product)
	if err != nil {
		return 0, err
	}
	l.RLock()
	defer l.RUnlock()

	p, err := s.catalog.Get(product)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// History reconstructs the product's stock levels, oldest first.
func (s *Service) History(product string) ([]history.Point, error) {
	l, err := s.lockFor(product)
	if err != nil {
		return nil, err
	}
	l.RLock()
	defer l.RUnlock()

	p, err := s.catalog.Get(product)
	if err != nil {
		return nil, err
	}
	return history.Reconstruct(p.Stock, s.ledger.EntriesFor(product)), nil
}

// Snapshot is a product's stock together with the history that leads to it,
// read under one lock.
type Snapshot struct {
	Product catalog.Product
	History []history.Point
}

func (s *Service) Snapshot(product string) (Snapshot, error) {
	l, err := s.lockFor(product)
	if err != nil {
		return Snapshot{}, err
	}
	l.RLock()
	defer l.RUnlock()

	p, err := s.catalog.Get(product)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Product: p, History: history.Reconstruct(p.Stock, s.ledger.EntriesFor(product))}, nil
}

// Verify replays the product's reconstructed history forward and checks
// that it lands on the current stock.
func (s *Service) Verify(product string) error {
	l, err := s.lockFor(product)
	if err != nil {
		return err
	}
	l.RLock()
	defer l.RUnlock()

	p, err := s.catalog.Get(product)
	if err != nil {
		return err
	}
	entries := s.ledger.EntriesFor(product)
	got, err := history.Replay(history.Reconstruct(p.Stock, entries), entries)
	if err != nil {
		return err
	}
	if len(entries) > 0 && got != p.Stock {
		return fmt.Errorf("%w: %q replays to %d, stock is %d", history.ErrInconsistent, product, got, p.Stock)
	}
	return nil
}

func (s *Service) EntriesFor(product string) []inventory.Transaction {
	l, err := s.lockFor(product)
	if err != nil {
		return nil
	}
	l.RLock()
	defer l.RUnlock()
	return s.ledger.EntriesFor(product)
}

func (s *Service) PendingQuantity(product string) int64 { return s.book.PendingQuantity(product) }

func (s *Service) OrdersFor(product string) []orders.Order { return s.book.OrdersFor(product) }

// AddOrder records an externally created order for a known product.
func (s *Service) AddOrder(o orders.Order) error {
	if _, err := s.catalog.Get(o.Product); err != nil {
		return err
	}
	return s.book.Add(o)
}

func (s *Service) Orders() []orders.Order { return s.book.List() }

func (s *Service) Products() []catalog.Product { return s.catalog.List() }

// Recent returns up to n ledger entries, most recent first.
func (s *Service) Recent(n int) []inventory.Transaction { return s.ledger.Recent(n) }

func (s *Service) Location() *time.Location { return s.loc }

type Summary struct {
	TotalStock     int64 `json:"total_stock"`
	ReceiptsToday  int64 `json:"receipts_today"`
	ShipmentsToday int64 `json:"shipments_today"`
	PendingOrders  int   `json:"pending_orders"`
}

func (s *Service) Summary(now time.Time) Summary {
	in, out := s.ledger.Totals(now, s.loc)
	return Summary{
		TotalStock:     s.catalog.TotalStock(),
		ReceiptsToday:  in,
		ShipmentsToday: out,
		PendingOrders:  s.book.PendingCount(),
	}
}

// Restore replays the journal on top of the catalog's configured stock and
// publishes the resulting levels. It must run before the service starts
// handling movements.
func (s *Service) Restore(ctx context.Context) (int, error) {
	n, err := s.replay(ctx)
	if err != nil {
		return n, err
	}
	if s.observer != nil {
		for _, p := range s.catalog.List() {
			s.observer.StockLevel(p.Name, p.Stock)
		}
	}
	return n, nil
}

func (s *Service) replay(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	txs, err := s.journal.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("journal load: %w", err)
	}
	for i, tx := range txs {
		if _, err := s.catalog.AdjustStock(tx.Product, tx.Delta()); err != nil {
			return i, fmt.Errorf("replay seq %d: %w", tx.Seq, err)
		}
		if err := s.ledger.Restore(tx); err != nil {
			// keep the catalog in line with the ledger
			_, _ = s.catalog.AdjustStock(tx.Product, -tx.Delta())
			return i, fmt.Errorf("replay seq %d: %w", tx.Seq, err)
		}
	}
	s.log.Info("journal replayed", "movements", len(txs))
	return len(txs), nil
}
