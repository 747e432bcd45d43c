package catalog

import (
	"errors"
	"strings"
)

var (
	ErrUnknownProduct    = errors.New("catalog: unknown product")
	ErrDuplicateProduct  = errors.New("catalog: duplicate product")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrInvalidProduct    = errors.New("catalog: invalid product")
	ErrStockOverflow     = errors.New("catalog: stock overflow")
)

type Product struct {
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
	Unit  string `json:"unit"` // display only, e.g. "pcs"
}

// NewProduct validates the fields of a product before it enters the catalog.
func NewProduct(name string, stock int64, unit string) (Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Product{}, errors.Join(ErrInvalidProduct, errors.New("empty name"))
	}
	if stock < 0 {
		return Product{}, errors.Join(ErrInvalidProduct, errors.New("negative stock"))
	}
	return Product{Name: name, Stock: stock, Unit: strings.TrimSpace(unit)}, nil
}
