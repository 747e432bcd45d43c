package inventory

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is the append-only log of stock movements.
// Entries are kept in insertion order; readers get copies.
type Ledger struct {
	// wmu serializes writers; mu guards entries and seq for readers.
	wmu     sync.Mutex
	mu      sync.RWMutex
	entries []Transaction
	seq     uint64
	now     func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record appends a new movement stamped with the current time.
func (l *Ledger) Record(kind Kind, product string, qty int64, note string) (Transaction, error) {
	return l.Append(kind, product, qty, note, nil)
}

// Append stamps a movement and calls apply with it. Writers are serialized,
// but apply runs without the read lock, so EntriesFor and Recent do not wait
// on a slow journal write. The entry becomes visible only if apply returns
// nil, so a failed stock adjustment or journal write leaves the ledger untouched.
func (l *Ledger) Append(kind Kind, product string, qty int64, note string, apply func(Transaction) error) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if qty <= 0 {
		return Transaction{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}

	l.wmu.Lock()
	defer l.wmu.Unlock()

	l.mu.RLock()
	next := l.seq + 1
	l.mu.RUnlock()

	tx := Transaction{
		ID:       uuid.New(),
		Seq:      next,
		At:       l.now(),
		Kind:     kind,
		Product:  product,
		Quantity: qty,
		Note:     note,
	}
	if apply != nil {
		if err := apply(tx); err != nil {
			return Transaction{}, err
		}
	}

	l.mu.Lock()
	l.entries = append(l.entries, tx)
	l.seq = tx.Seq
	l.mu.Unlock()
	return tx, nil
}

// Restore appends an entry that was stamped earlier, e.g. read back from a journal.
func (l *Ledger) Restore(tx Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, tx.Kind)
	}
	if tx.Quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, tx.Quantity)
	}
	l.wmu.Lock()
	defer l.wmu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx.Seq <= l.seq {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, tx.Seq, l.seq)
	}
	l.entries = append(l.entries, tx)
	l.seq = tx.Seq
	return nil
}

// EntriesFor returns the product's entries, most recent first.
func (l *Ledger) EntriesFor(product string) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Transaction
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Product == product {
			out = append(out, l.entries[i])
		}
	}
	return out
}

// Recent returns up to n entries across all products, most recent first.
func (l *Ledger) Recent(n int) []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Transaction, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// All returns a chronological copy of the whole log.
func (l *Ledger) All() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Totals sums receipt and shipment quantities recorded on the calendar day of
// day, evaluated in loc.
func (l *Ledger) Totals(day time.Time, loc *time.Location) (receipts, shipments int64) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.In(loc).Date()
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.entries {
		ty, tm, td := tx.At.In(loc).Date()
		if ty != y || tm != m || td != d {
			continue
		}
		switch tx.Kind {
		case KindReceipt:
			receipts += tx.Quantity
		case KindShipment:
			shipments += tx.Quantity
		}
	}
	return receipts, shipments
}
