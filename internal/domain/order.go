package domain

import (
	"fmt"
	"time"
)

// OrderStatus is a step of the fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderFlow lists the forward path. Cancellation is handled separately.
var orderFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) next() (OrderStatus, bool) {
	for i, v := range orderFlow {
		if v == s && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// CheckTransition validates moving an order from s to target. Only the next
// forward step or cancellation of a non-terminal order is accepted.
func (s OrderStatus) CheckTransition(target OrderStatus) error {
	if !target.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown order status %q", target))
	}
	if s.IsTerminal() {
		return NewValidationError("status", fmt.Sprintf("order is already %s", s))
	}
	if s == target {
		return NewValidationError("status", fmt.Sprintf("order is already %s", s))
	}
	if target == OrderStatusCancelled {
		return nil
	}
	if next, ok := s.next(); ok && next == target {
		return nil
	}
	return NewValidationError("status", fmt.Sprintf("cannot move order from %s to %s", s, target))
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// CheckTransition allows pending to resolve once, to paid or failed.
func (s PaymentStatus) CheckTransition(target PaymentStatus) error {
	if !target.Valid() {
		return NewValidationError("paymentStatus", fmt.Sprintf("unknown payment status %q", target))
	}
	if s != PaymentStatusPending {
		return NewValidationError("paymentStatus", fmt.Sprintf("payment is already %s", s))
	}
	if target == PaymentStatusPending {
		return NewValidationError("paymentStatus", "payment is already pending")
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Pincode   string `json:"pincode"`
}

// OrderItem is an immutable snapshot of a cart line taken at checkout.
type OrderItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	CapsuleName string `json:"capsuleName,omitempty"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Image       string `json:"image,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

type Order struct {
	ID              string          `json:"orderId"`
	CustomerID      string          `json:"customerId,omitempty"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     int64           `json:"totalAmount"`
	ShippingAmount  int64           `json:"shippingAmount"`
	TaxAmount       int64           `json:"taxAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ItemsTotal sums price times quantity over items.
func ItemsTotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// AmountDue is what the customer pays: items plus shipping and tax.
func (o Order) AmountDue() int64 {
	return o.TotalAmount + o.ShippingAmount + o.TaxAmount
}
