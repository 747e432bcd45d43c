package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidOrder  = errors.New("orders: invalid order")
	ErrInvalidStatus = errors.New("orders: unknown status")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusShipped Status = "shipped"
)

// ParseStatus accepts the canonical values and the labels used on the
// factory's order sheets.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pending", "未出荷":
		return StatusPending, nil
	case "shipped", "出荷済":
		return StatusShipped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order is a demand record. Stock movements never change its status.
type Order struct {
	Customer     string    `json:"customer"`
	Product      string    `json:"product"`
	Quantity     int64     `json:"quantity"`
	DeliveryDate time.Time `json:"delivery_date"` // calendar date, UTC midnight
	Status       Status    `json:"status"`
}

func NewOrder(customer, product string, qty int64, delivery time.Time, status Status) (Order, error) {
	customer, product = strings.TrimSpace(customer), strings.TrimSpace(product)
	switch {
	case customer == "":
		return Order{}, fmt.Errorf("%w: empty customer", ErrInvalidOrder)
	case product == "":
		return Order{}, fmt.Errorf("%w: empty product", ErrInvalidOrder)
	case qty <= 0:
		return Order{}, fmt.Errorf("%w: quantity must be > 0", ErrInvalidOrder)
	case delivery.IsZero():
		return Order{}, fmt.Errorf("%w: missing delivery date", ErrInvalidOrder)
	}
	if status != StatusPending && status != StatusShipped {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	y, m, d := delivery.Date()
	return Order{
		Customer:     customer,
		Product:      product,
		Quantity:     qty,
		DeliveryDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}, nil
}
