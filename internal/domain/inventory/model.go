package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("inventory: quantity must be > 0")
	ErrInvalidKind     = errors.New("inventory: unknown movement kind")
	ErrOutOfOrder      = errors.New("inventory: sequence out of order")
)

type Kind string

const (
	KindReceipt  Kind = "receipt"  // inbound
	KindShipment Kind = "shipment" // outbound
)

func (k Kind) Valid() bool { return k == KindReceipt || k == KindShipment }

// Sign is +1 for a receipt and -1 for a shipment.
func (k Kind) Sign() int64 {
	if k == KindShipment {
		return -1
	}
	return 1
}

// Transaction is one immutable stock movement.
type Transaction struct {
	ID       uuid.UUID `json:"id"`
	Seq      uint64    `json:"seq"` // ledger-wide, strictly increasing
	At       time.Time `json:"at"`
	Kind     Kind      `json:"kind"`
	Product  string    `json:"product"`
	Quantity int64     `json:"quantity"`
	Note     string    `json:"note"`
}

// Delta returns the signed effect of the transaction on stock.
func (t Transaction) Delta() int64 { return t.Kind.Sign() * t.Quantity }

// Before orders transactions chronologically, using Seq when timestamps tie.
func (t Transaction) Before(o Transaction) bool {
	if !t.At.Equal(o.At) {
		return t.At.Before(o.At)
	}
	return t.Seq < o.Seq
}
