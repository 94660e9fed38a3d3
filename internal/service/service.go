package service

import (
	"context"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalog management.
type ProductService interface {
	// GetAll retrieves products ordered by category and name. A limit of
	// zero returns the whole catalog.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create adds a product to the catalog.
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)

	// Update applies a partial update to an existing product.
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)
}

// CartService defines operations on the principal's cart.
type CartService interface {
	// GetCart returns the principal's cart, or an empty one if none exists.
	GetCart(ctx context.Context, principal model.Principal) (*model.Cart, error)

	// AddItem adds quantity units of a product to the cart.
	AddItem(ctx context.Context, principal model.Principal, req *model.CartItemRequest) (*model.Cart, error)

	// RemoveItem takes quantity units of a product off the cart.
	RemoveItem(ctx context.Context, principal model.Principal, req *model.CartItemRequest) (*model.Cart, error)
}

// OrderService defines checkout and order management operations.
type OrderService interface {
	// PlaceOrder converts the principal's cart into an order, reserving stock.
	PlaceOrder(ctx context.Context, principal model.Principal) (*model.Order, error)

	// ListOrders returns every order for admins and the principal's own orders otherwise.
	ListOrders(ctx context.Context, principal model.Principal) ([]model.Order, error)

	// UpdateStatus overwrites an order's status. Admin only.
	UpdateStatus(ctx context.Context, principal model.Principal, orderID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error)
}

// DashboardService defines reporting operations.
type DashboardService interface {
	// Stats aggregates order counts and delivered revenue. Admin only.
	Stats(ctx context.Context, principal model.Principal) (*model.DashboardStats, error)
}

// AuthService defines account operations.
type AuthService interface {
	// Register creates an account and returns a token for it.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and returns a token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}
