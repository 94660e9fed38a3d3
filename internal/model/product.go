package model

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the menu section a product belongs to.
type Category string

const (
	CategoryPizza Category = "Pizza"
	CategoryDrink Category = "Drink"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryPizza || c == CategoryDrink
}

// Storage limits: prices are NUMERIC(10,2), counts are 32-bit integers.
const (
	MaxQuantity = math.MaxInt32
	priceScale  = 2
)

var maxPrice = decimal.New(1, 8)

// priceProblem describes why p cannot be stored, or returns "".
func priceProblem(p decimal.Decimal) string {
	switch {
	case p.IsNegative():
		return "Price must be non-negative"
	case p.GreaterThanOrEqual(maxPrice):
		return "Price must be less than 100000000"
	case !p.Equal(p.Round(priceScale)):
		return "Price must have at most 2 decimal places"
	}
	return ""
}

func stockProblem(n int) string {
	switch {
	case n < 0:
		return "Stock must be non-negative"
	case n > MaxQuantity:
		return "Stock is too large"
	}
	return ""
}

// Product represents a menu item in the catalogue.
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Category    Category        `json:"category" db:"category"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateProductRequest represents the payload for adding a product.
type CreateProductRequest struct {
	Category    Category         `json:"category" yaml:"category"`
	Name        string           `json:"name" yaml:"name"`
	Price       *decimal.Decimal `json:"price" yaml:"price"`
	Stock       *int             `json:"stock" yaml:"stock"`
	IsAvailable *bool            `json:"isAvailable,omitempty" yaml:"isAvailable"`
}

// Validate checks the request and reports every invalid field.
func (r *CreateProductRequest) Validate() error {
	fields := map[string]string{}
	if !r.Category.Valid() {
		fields["category"] = "Category must be Pizza or Drink"
	}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "Name is required"
	}
	if r.Price == nil {
		fields["price"] = "Price is required"
	} else if msg := priceProblem(*r.Price); msg != "" {
		fields["price"] = msg
	}
	if r.Stock == nil {
		fields["stock"] = "Stock is required"
	} else if msg := stockProblem(*r.Stock); msg != "" {
		fields["stock"] = msg
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// ToProduct builds a new product from a validated request.
func (r *CreateProductRequest) ToProduct(now time.Time) *Product {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &Product{
		ID:          uuid.New(),
		Category:    r.Category,
		Name:        strings.TrimSpace(r.Name),
		Price:       *r.Price,
		Stock:       *r.Stock,
		IsAvailable: available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Category    *Category        `json:"category,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	IsAvailable *bool            `json:"isAvailable,omitempty"`
}

// Validate checks only the fields that are present.
func (r *UpdateProductRequest) Validate() error {
	fields := map[string]string{}
	if r.Category != nil && !r.Category.Valid() {
		fields["category"] = "Category must be Pizza or Drink"
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = "Name is required"
	}
	if r.Price != nil {
		if msg := priceProblem(*r.Price); msg != "" {
			fields["price"] = msg
		}
	}
	if r.Stock != nil {
		if msg := stockProblem(*r.Stock); msg != "" {
			fields["stock"] = msg
		}
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// Apply copies the present fields onto p.
func (r *UpdateProductRequest) Apply(p *Product, now time.Time) {
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.IsAvailable != nil {
		p.IsAvailable = *r.IsAvailable
	}
	p.UpdatedAt = now
}
