package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusDelivered:
		return true
	}
	return false
}

// Order represents a placed customer order.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	Customer    *Customer       `json:"customer,omitempty" db:"-"`
	Items       []OrderItem     `json:"products"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Customer is the display projection of an order's owner.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewOrderFromCart snapshots the cart's lines and total into a NEW order.
func NewOrderFromCart(cart *Cart, now time.Time) *Order {
	id := uuid.New()
	items := make([]OrderItem, len(cart.Lines))
	for i, l := range cart.Lines {
		items[i] = OrderItem{
			OrderID:     id,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		}
	}
	return &Order{
		ID:          id,
		UserID:      cart.UserID,
		Items:       items,
		TotalAmount: cart.TotalAmount,
		Status:      OrderStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateOrderStatusRequest represents the payload for changing an order's status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// Validate checks the requested status.
func (r *UpdateOrderStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return NewValidationError(map[string]string{
			"status": "Status must be one of NEW, PROCESSING, DELIVERED",
		})
	}
	return nil
}

// DashboardStats aggregates orders for the admin dashboard.
type DashboardStats struct {
	TotalOrders int             `json:"totalOrders"`
	New         int             `json:"new"`
	Processing  int             `json:"processing"`
	Delivered   int             `json:"delivered"`
	Revenue     decimal.Decimal `json:"revenue"`
}
