package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product entry in a cart. Price is the product price
// captured when the line was last added to.
type CartLine struct {
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty" db:"-"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns quantity × price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the single open cart of a user.
type Cart struct {
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	Lines       []CartLine      `json:"products"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty" db:"updated_at"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:      userID,
		Lines:       []CartLine{},
		TotalAmount: decimal.Zero,
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns the index of the line for productID, or -1.
func (c *Cart) Line(productID uuid.UUID) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into the product's line, refreshing its price, or
// appends a new line. The total is recomputed.
func (c *Cart) Add(productID uuid.UUID, quantity int, price decimal.Decimal) {
	if i := c.Line(productID); i >= 0 {
		c.Lines[i].Quantity += quantity
		c.Lines[i].Price = price
	} else {
		c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: quantity, Price: price})
	}
	c.Recalculate()
}

// Remove takes quantity off the product's line. A line whose quantity is
// not greater than the requested amount is dropped entirely.
func (c *Cart) Remove(productID uuid.UUID, quantity int) error {
	i := c.Line(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	if c.Lines[i].Quantity <= quantity {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	} else {
		c.Lines[i].Quantity -= quantity
	}
	c.Recalculate()
	return nil
}

// Clear empties the cart after checkout.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.TotalAmount = decimal.Zero
}

// Recalculate re-establishes TotalAmount as the sum of line subtotals.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	c.TotalAmount = total
}

// CartItemRequest represents the payload for adding or removing cart items.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Validate checks the request and returns the parsed product ID.
func (r *CartItemRequest) Validate() (uuid.UUID, error) {
	fields := map[string]string{}
	id, err := uuid.Parse(r.ProductID)
	if err != nil {
		fields["productId"] = "Invalid product ID"
	}
	if r.Quantity < 1 {
		fields["quantity"] = "Quantity must be at least 1"
	} else if r.Quantity > MaxQuantity {
		fields["quantity"] = "Quantity is too large"
	}
	if len(fields) > 0 {
		return uuid.Nil, NewValidationError(fields)
	}
	return id, nil
}
