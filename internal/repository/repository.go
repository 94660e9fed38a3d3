package repository

import (
	"context"
	"time"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts database transactions for multi-statement operations.
type TxBeginner interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves products ordered by category and name. A limit of
	// zero returns every product.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByName retrieves a product by exact name. Returns nil when absent.
	GetByName(ctx context.Context, name string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error

	// Update overwrites the mutable fields of an existing product.
	// Returns model.ErrProductNotFound if the ID does not resolve.
	Update(ctx context.Context, p *model.Product) error

	// DecrementStock removes quantity from the product's stock within tx,
	// but only if at least quantity units remain at write time. Reports
	// whether the decrement was applied.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)
}

// CartRepository defines the interface for cart data access operations.
type CartRepository interface {
	// Get retrieves the user's cart without locking. Returns nil when the
	// user has never added anything.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Ensure creates an empty cart row for the user if none exists.
	Ensure(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error

	// GetForUpdate retrieves the user's cart and locks it until tx ends.
	// Returns nil when no cart exists.
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)

	// Save persists the cart's lines and total within tx.
	Save(ctx context.Context, tx pgx.Tx, cart *model.Cart) error
}

// OrderFilter narrows an order listing. A nil UserID lists every order.
type OrderFilter struct {
	UserID *uuid.UUID
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves orders, newest first, with their items.
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)

	// UpdateStatus overwrites the status of an order. Reports whether the order exists.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, now time.Time) (bool, error)

	// Stats aggregates order counts per status and delivered revenue.
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a new user. Returns model.ErrUserExists on a duplicate email.
	Create(ctx context.Context, u *model.User) error

	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
