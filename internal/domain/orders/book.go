package orders

import (
	"slices"
	"sync"
)

// Book is the in-memory list of orders, kept in insertion order.
type Book struct {
	mu     sync.RWMutex
	orders []Order
}

func NewBook() *Book { return &Book{} }

func (b *Book) Add(o Order) error {
	o, err := NewOrder(o.Customer, o.Product, o.Quantity, o.DeliveryDate, o.Status)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.orders = append(b.orders, o)
	b.mu.Unlock()
	return nil
}

func (b *Book) OrdersFor(product string) []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Order
	for _, o := range b.orders {
		if o.Product == product {
			out = append(out, o)
		}
	}
	return out
}

// PendingQuantity sums the quantity of the product's pending orders.
func (b *Book) PendingQuantity(product string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total int64
	for _, o := range b.orders {
		if o.Product == product && o.Status == StatusPending {
			total += o.Quantity
		}
	}
	return total
}

func (b *Book) PendingCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, o := range b.orders {
		if o.Status == StatusPending {
			n++
		}
	}
	return n
}

func (b *Book) List() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.orders)
}
