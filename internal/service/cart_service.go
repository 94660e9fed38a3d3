package service

import (
	"context"
	"fmt"

	"pizza-maniac/internal/model"
	"pizza-maniac/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// cartService implements CartService. Every mutation locks the cart row so
// concurrent requests from the same user apply one after another.
type cartService struct {
	txs         repository.TxBeginner
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	txs repository.TxBeginner,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		txs:         txs,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the user's cart. Reading never creates one.
func (s *cartService) GetCart(ctx context.Context, principal model.Principal) (*model.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return model.NewCart(principal.UserID), nil
	}
	return cart, nil
}

// AddItem adds units of an available product whose stock covers the
// requested quantity. Stock itself is not reserved until checkout.
func (s *cartService) AddItem(ctx context.Context, principal model.Principal, req *model.CartItemRequest) (*model.Cart, error) {
	productID, err := req.Validate()
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsAvailable || product.Stock < req.Quantity {
		s.logger.Warn().
			Str("user_id", principal.UserID.String()).
			Str("product_id", productID.String()).
			Int("quantity", req.Quantity).
			Msg("product not available or insufficient stock")
		return nil, model.ErrInsufficientStock
	}

	var cart *model.Cart
	err = inTx(ctx, s.txs, s.logger, func(tx pgx.Tx) error {
		if err := s.cartRepo.Ensure(ctx, tx, principal.UserID); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		cart, err = s.cartRepo.GetForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
		if cart == nil {
			return model.ErrCartNotFound
		}

		if i := cart.Line(product.ID); i >= 0 && cart.Lines[i].Quantity > model.MaxQuantity-req.Quantity {
			return model.NewValidationError(map[string]string{"quantity": "Quantity is too large"})
		}

		cart.Add(product.ID, req.Quantity, product.Price)
		cart.Lines[cart.Line(product.ID)].ProductName = product.Name

		if err := s.cartRepo.Save(ctx, tx, cart); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", principal.UserID.String()).
		Str("product_id", productID.String()).
		Int("quantity", req.Quantity).
		Str("total", cart.TotalAmount.String()).
		Msg("item added to cart")

	return cart, nil
}

// RemoveItem decrements a line, dropping it when the requested quantity
// covers what is in the cart.
func (s *cartService) RemoveItem(ctx context.Context, principal model.Principal, req *model.CartItemRequest) (*model.Cart, error) {
	productID, err := req.Validate()
	if err != nil {
		return nil, err
	}

	var cart *model.Cart
	err = inTx(ctx, s.txs, s.logger, func(tx pgx.Tx) error {
		cart, err = s.cartRepo.GetForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}
		if cart == nil {
			return model.ErrCartNotFound
		}

		if err := cart.Remove(productID, req.Quantity); err != nil {
			return err
		}

		if err := s.cartRepo.Save(ctx, tx, cart); err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", principal.UserID.String()).
		Str("product_id", productID.String()).
		Int("quantity", req.Quantity).
		Msg("item removed from cart")

	return cart, nil
}
