package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pizza-maniac/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Get retrieves the user's cart without locking.
func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.load(ctx, r.pool, userID, false)
}

// Ensure creates an empty cart row for the user if none exists.
func (r *cartRepository) Ensure(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `
		INSERT INTO carts (user_id, total_amount, updated_at)
		VALUES ($1, 0, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := tx.Exec(ctx, query, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure cart")
		return fmt.Errorf("failed to ensure cart: %w", err)
	}
	return nil
}

// GetForUpdate retrieves the user's cart and locks its row until tx ends.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	return r.load(ctx, tx, userID, true)
}

func (r *cartRepository) load(ctx context.Context, q querier, userID uuid.UUID, lock bool) (*model.Cart, error) {
	query := `SELECT user_id, total_amount, updated_at FROM carts WHERE user_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	cart := model.NewCart(userID)
	err := q.QueryRow(ctx, query, userID).Scan(&cart.UserID, &cart.TotalAmount, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", userID.String()).Msg("cart not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	itemsQuery := `
		SELECT ci.product_id, COALESCE(p.name, ''), ci.quantity, ci.price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.position
	`

	rows, err := q.Query(ctx, itemsQuery, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line model.CartLine
		if err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity, &line.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return cart, nil
}

// Save rewrites the cart's lines and total within tx.
func (r *cartRepository) Save(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	cart.UpdatedAt = time.Now().UTC()

	tag, err := tx.Exec(ctx,
		`UPDATE carts SET total_amount = $2, updated_at = $3 WHERE user_id = $1`,
		cart.UserID, cart.TotalAmount, cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to update cart")
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, cart.UserID); err != nil {
		r.logger.Error().Err(err).Str("user_id", cart.UserID.String()).Msg("failed to clear cart items")
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if len(cart.Lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO cart_items (user_id, product_id, position, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for i, line := range cart.Lines {
		batch.Queue(query, cart.UserID, line.ProductID, i, line.Quantity, line.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range cart.Lines {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("user_id", cart.UserID.String()).
				Str("product_id", cart.Lines[i].ProductID.String()).
				Msg("failed to insert cart item")
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	r.logger.Debug().
		Str("user_id", cart.UserID.String()).
		Int("line_count", len(cart.Lines)).
		Msg("cart saved")

	return nil
}
