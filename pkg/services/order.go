// Package services contains the demo collaborators bundled with the
// wirebus binary: an order-processing fan-out, a sequential pipeline,
// and a parallel aggregator. They double as living documentation for
// how the signal bus is meant to be wired.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wirebus/wirebus/pkg/logger"
	"github.com/wirebus/wirebus/pkg/signal"
)

// Signal names used by the order demo.
const (
	SignalOrderPlaced      = "orderPlaced"
	SignalPaymentProcessed = "paymentProcessed"
)

// Order is the payload carried by the orderPlaced signal.
type Order struct {
	OrderID  int     `json:"order_id"`
	UserID   int     `json:"user_id"`
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// OrderService places orders and announces them on the bus.
type OrderService struct {
	bus    *signal.Bus
	log    logger.Logger
	nextID atomic.Int64
}

// NewOrderService creates an OrderService and declares its signals.
func NewOrderService(bus *signal.Bus, log logger.Logger) (*OrderService, error) {
	s := &OrderService{bus: bus, log: log}
	if err := bus.Declare(s, SignalOrderPlaced); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *OrderService) String() string { return "OrderService" }

// PlaceOrder assigns an order ID and emits orderPlaced. Slot failures
// are reported in the returned error but do not abort delivery to the
// remaining slots.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int, product string, quantity int, amount float64) (Order, error) {
	order := Order{
		OrderID:  int(s.nextID.Add(1)),
		UserID:   userID,
		Product:  product,
		Quantity: quantity,
		Amount:   amount,
	}

	s.log.InfoContext(ctx, "placing order",
		"order_id", order.OrderID,
		"user_id", order.UserID,
		"product", order.Product,
	)

	err := s.bus.Emit(ctx, s, SignalOrderPlaced, order)
	return order, err
}

// PaymentService charges orders. It emits paymentProcessed from inside
// the orderPlaced dispatch, exercising reentrant emits.
type PaymentService struct {
	bus *signal.Bus
	log logger.Logger
}

// NewPaymentService creates a PaymentService and declares its signals.
func NewPaymentService(bus *signal.Bus, log logger.Logger) (*PaymentService, error) {
	s := &PaymentService{bus: bus, log: log}
	if err := bus.Declare(s, SignalPaymentProcessed); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PaymentService) String() string { return "PaymentService" }

// ProcessPayment charges the order and announces the result.
func (s *PaymentService) ProcessPayment(order Order) error {
	if order.Amount <= 0 {
		return fmt.Errorf("invalid amount %.2f for order %d", order.Amount, order.OrderID)
	}
	s.log.Info("payment processed", "order_id", order.OrderID, "amount", order.Amount)
	return s.bus.Emit(context.Background(), s, SignalPaymentProcessed, order)
}

// InventoryService reserves stock for placed orders.
type InventoryService struct {
	log logger.Logger

	reserved atomic.Int64
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(log logger.Logger) *InventoryService {
	return &InventoryService{log: log}
}

func (s *InventoryService) String() string { return "InventoryService" }

// ReserveStock reserves inventory for the order.
func (s *InventoryService) ReserveStock(order Order) error {
	if order.Quantity <= 0 {
		return fmt.Errorf("invalid quantity %d for order %d", order.Quantity, order.OrderID)
	}
	s.reserved.Add(int64(order.Quantity))
	s.log.Info("stock reserved", "order_id", order.OrderID, "quantity", order.Quantity)
	return nil
}

// Reserved returns the total quantity reserved so far.
func (s *InventoryService) Reserved() int64 { return s.reserved.Load() }

// NotificationService notifies users about their orders and payments.
type NotificationService struct {
	log logger.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(log logger.Logger) *NotificationService {
	return &NotificationService{log: log}
}

func (s *NotificationService) String() string { return "NotificationService" }

// NotifyOrderPlaced tells the user their order was accepted.
func (s *NotificationService) NotifyOrderPlaced(order Order) error {
	s.log.Info("order confirmation sent",
		"order_id", order.OrderID, "user_id", order.UserID)
	return nil
}

// NotifyPaymentProcessed tells the user their payment went through.
func (s *NotificationService) NotifyPaymentProcessed(order Order) error {
	s.log.Info("payment receipt sent",
		"order_id", order.OrderID, "user_id", order.UserID)
	return nil
}

// AuditService records every order event it sees.
type AuditService struct {
	log logger.Logger

	mu      sync.Mutex
	entries []string
}

// NewAuditService creates an AuditService.
func NewAuditService(log logger.Logger) *AuditService {
	return &AuditService{log: log}
}

func (s *AuditService) String() string { return "AuditService" }

// RecordOrder appends an audit entry for the order.
func (s *AuditService) RecordOrder(order Order) error {
	s.mu.Lock()
	s.entries = append(s.entries, fmt.Sprintf("order %d placed by user %d", order.OrderID, order.UserID))
	s.mu.Unlock()
	return nil
}

// RecordPayment appends an audit entry for the payment.
func (s *AuditService) RecordPayment(order Order) error {
	s.mu.Lock()
	s.entries = append(s.entries, fmt.Sprintf("order %d paid, amount %.2f", order.OrderID, order.Amount))
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of the audit trail.
func (s *AuditService) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

// OrderDemo bundles the order-processing services wired to one bus.
type OrderDemo struct {
	Orders        *OrderService
	Payments      *PaymentService
	Inventory     *InventoryService
	Notifications *NotificationService
	Audit         *AuditService
}

// NewOrderDemo constructs all order services and connects their slots
// in the canonical order: payment, inventory, notification, audit.
func NewOrderDemo(bus *signal.Bus, log logger.Logger) (*OrderDemo, error) {
	orders, err := NewOrderService(bus, log)
	if err != nil {
		return nil, err
	}
	payments, err := NewPaymentService(bus, log)
	if err != nil {
		return nil, err
	}

	d := &OrderDemo{
		Orders:        orders,
		Payments:      payments,
		Inventory:     NewInventoryService(log),
		Notifications: NewNotificationService(log),
		Audit:         NewAuditService(log),
	}

	connections := []struct {
		emitter  any
		signal   string
		receiver any
		method   string
	}{
		{orders, SignalOrderPlaced, payments, "ProcessPayment"},
		{orders, SignalOrderPlaced, d.Inventory, "ReserveStock"},
		{orders, SignalOrderPlaced, d.Notifications, "NotifyOrderPlaced"},
		{orders, SignalOrderPlaced, d.Audit, "RecordOrder"},
		{payments, SignalPaymentProcessed, d.Notifications, "NotifyPaymentProcessed"},
		{payments, SignalPaymentProcessed, d.Audit, "RecordPayment"},
	}
	for _, c := range connections {
		if _, err := bus.ConnectMethod(c.emitter, c.signal, c.receiver, c.method); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Run places count orders for a fixed demo user.
func (d *OrderDemo) Run(ctx context.Context, count int) error {
	var errs []error
	for i := 0; i < count; i++ {
		if _, err := d.Orders.PlaceOrder(ctx, 101, "Laptop", 1, 1500); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
