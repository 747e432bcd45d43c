package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"":        StatusPending,
		"Pending": StatusPending,
		"未出荷":     StatusPending,
		"shipped": StatusShipped,
		"出荷済":     StatusShipped,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewOrder_Validates(t *testing.T) {
	d := date(2025, 12, 20)
	_, err := NewOrder("", "A", 1, d, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = NewOrder("Acme", "A", 0, d, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = NewOrder("Acme", "A", 1, time.Time{}, StatusPending)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = NewOrder("Acme", "A", 1, d, Status("lost"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	o, err := NewOrder(" Acme ", "A", 3, time.Date(2025, 12, 20, 15, 4, 0, 0, time.UTC), StatusPending)
	require.NoError(t, err)
	assert.Equal(t, "Acme", o.Customer)
	assert.Equal(t, d, o.DeliveryDate)
}

func TestBook_PendingQuantityAndOrdersFor(t *testing.T) {
	b := NewBook()
	for _, o := range []Order{
		{Customer: "Sample Trading", Product: "A", Quantity: 30, DeliveryDate: date(2025, 12, 20), Status: StatusPending},
		{Customer: "Test Industries", Product: "B", Quantity: 50, DeliveryDate: date(2025, 12, 22), Status: StatusPending},
		{Customer: "Sample Goods", Product: "A", Quantity: 20, DeliveryDate: date(2025, 12, 19), Status: StatusShipped},
		{Customer: "Dummy Corp", Product: "A", Quantity: 5, DeliveryDate: date(2025, 12, 28), Status: StatusPending},
	} {
		require.NoError(t, b.Add(o))
	}

	assert.Equal(t, int64(35), b.PendingQuantity("A"))
	assert.Equal(t, int64(50), b.PendingQuantity("B"))
	assert.Equal(t, int64(0), b.PendingQuantity("C"))
	assert.Equal(t, 3, b.PendingCount())

	forA := b.OrdersFor("A")
	require.Len(t, forA, 3)
	assert.Equal(t, "Sample Trading", forA[0].Customer)
	assert.Equal(t, "Dummy Corp", forA[2].Customer)
	assert.Len(t, b.List(), 4)
}
