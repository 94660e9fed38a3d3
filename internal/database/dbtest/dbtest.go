// Package dbtest starts a disposable PostgreSQL for tests that need a real database.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pizza-maniac/internal/config"
	"pizza-maniac/internal/database"
	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// Setup creates a PostgreSQL test container with the application schema.
// It skips the test under -short.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromConnString(ctx, connStr, config.DatabaseConfig{
		MaxConnections: 20,
		MinConnections: 2,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Cleanup removes all rows from the application tables.
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	tables := []string{"order_items", "orders", "cart_items", "carts", "products", "users"}
	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// InsertUser stores a user with a placeholder password hash.
func (db *TestDB) InsertUser(t *testing.T, name string, role model.Role) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, password_hash, role) VALUES ($1, $2, $3, 'x', $4)`,
		id, name, fmt.Sprintf("%s-%s@example.com", name, id.String()[:8]), role,
	)
	if err != nil {
		t.Fatalf("failed to insert user %s: %v", name, err)
	}
	return id
}

// InsertProduct stores an available product.
func (db *TestDB) InsertProduct(t *testing.T, category model.Category, name, price string, stock int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Pool.Exec(context.Background(),
		`INSERT INTO products (id, category, name, price, stock, is_available) VALUES ($1, $2, $3, $4, $5, TRUE)`,
		id, category, name, decimal.RequireFromString(price), stock,
	)
	if err != nil {
		t.Fatalf("failed to insert product %s: %v", name, err)
	}
	return id
}

// Stock reads a product's current stock.
func (db *TestDB) Stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var stock int
	err := db.Pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}
