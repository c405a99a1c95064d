package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebus/wirebus/pkg/logger"
	"github.com/wirebus/wirebus/pkg/signal"
)

func testLogger() logger.Logger {
	return logger.New(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
}

func TestOrderDemo_PlaceOrder(t *testing.T) {
	bus := signal.New()
	demo, err := NewOrderDemo(bus, testLogger())
	require.NoError(t, err)

	order, err := demo.Orders.PlaceOrder(context.Background(), 101, "Laptop", 1, 1500)
	require.NoError(t, err)

	assert.Equal(t, 1, order.OrderID)
	assert.Equal(t, 101, order.UserID)
	assert.Equal(t, "Laptop", order.Product)
	assert.Equal(t, 1, order.Quantity)
	assert.Equal(t, 1500.0, order.Amount)

	// Every service saw the order exactly once.
	assert.Equal(t, int64(1), demo.Inventory.Reserved())

	// The payment slot runs first and re-emits paymentProcessed during
	// the orderPlaced dispatch, so the audit sees the payment before
	// the order entry.
	entries := demo.Audit.Entries()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "order 1 paid")
	assert.Contains(t, entries[1], "order 1 placed by user 101")
}

func TestOrderDemo_SequentialIDs(t *testing.T) {
	bus := signal.New()
	demo, err := NewOrderDemo(bus, testLogger())
	require.NoError(t, err)

	require.NoError(t, demo.Run(context.Background(), 3))

	entries := demo.Audit.Entries()
	assert.Len(t, entries, 6)
	assert.Equal(t, int64(3), demo.Inventory.Reserved())
}

func TestOrderDemo_SlotFailureIsolated(t *testing.T) {
	bus := signal.New()
	demo, err := NewOrderDemo(bus, testLogger())
	require.NoError(t, err)

	// Zero amount makes the payment slot fail, but the remaining
	// slots still run.
	_, err = demo.Orders.PlaceOrder(context.Background(), 101, "Laptop", 1, 0)
	require.Error(t, err)
	assert.True(t, signal.IsSlotInvocation(err))

	assert.Equal(t, int64(1), demo.Inventory.Reserved())
	entries := demo.Audit.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "order 1 placed")
}

func TestOrderDemo_Inspect(t *testing.T) {
	bus := signal.New()
	demo, err := NewOrderDemo(bus, testLogger())
	require.NoError(t, err)

	info, ok := bus.Inspect(demo.Orders)
	require.True(t, ok)
	require.Len(t, info.Signals, 1)
	assert.Equal(t, SignalOrderPlaced, info.Signals[0].Name)
	require.Len(t, info.Signals[0].Bindings, 4)
	assert.Equal(t, "PaymentService.ProcessPayment", info.Signals[0].Bindings[0].Slot)
	assert.Equal(t, "AuditService.RecordOrder", info.Signals[0].Bindings[3].Slot)
}
