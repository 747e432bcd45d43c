package catalog

import (
	"fmt"
	"math"
	"sync"
)

// Catalog holds the current stock of every product.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	items map[string]*Product
}

func New() *Catalog { return &Catalog{items: make(map[string]*Product)} }

func (c *Catalog) Add(p Product) error {
	p, err := NewProduct(p.Name, p.Stock, p.Unit)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProduct, p.Name)
	}
	c.items[p.Name] = &p
	c.order = append(c.order, p.Name)
	return nil
}

func (c *Catalog) Get(name string) (Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[name]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, name)
	}
	return *p, nil
}

// AdjustStock applies a signed delta (positive = receipt, negative = shipment).
// The delta is applied in full or not at all; stock never drops below zero.
func (c *Catalog) AdjustStock(name string, delta int64) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[name]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, name)
	}
	if delta > 0 && delta > math.MaxInt64-p.Stock {
		return *p, fmt.Errorf("%w: %q has %d, adding %d overflows", ErrStockOverflow, name, p.Stock, delta)
	}
	if p.Stock+delta < 0 {
		return *p, fmt.Errorf("%w: %q has %d, requested %d", ErrInsufficientStock, name, p.Stock, -delta)
	}
	p.Stock += delta
	return *p, nil
}

// List returns the products in registration order.
func (c *Catalog) List() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.items[name])
	}
	return out
}

func (c *Catalog) TotalStock() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, p := range c.items {
		total += p.Stock
	}
	return total
}
