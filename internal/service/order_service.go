package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"pizza-maniac/internal/events"
	"pizza-maniac/internal/model"
	"pizza-maniac/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "pizza-maniac/service"

// orderService implements OrderService.
type orderService struct {
	txs         repository.TxBeginner
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   events.Publisher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	txs repository.TxBeginner,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		txs:         txs,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder checks out the principal's cart in a single transaction: the
// cart row is locked, every line's stock is decremented with a conditional
// update, the order is stored and the cart cleared. Any insufficient line
// rolls back the whole checkout.
func (s *orderService) PlaceOrder(ctx context.Context, principal model.Principal) (*model.Order, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", principal.UserID.String()))

	var order *model.Order
	err := inTx(ctx, s.txs, s.logger, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetForUpdate(ctx, tx, principal.UserID)
		if err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}
		if cart == nil || cart.IsEmpty() {
			return model.ErrEmptyCart
		}

		// Fixed lock order across concurrent checkouts.
		lines := make([]model.CartLine, len(cart.Lines))
		copy(lines, cart.Lines)
		sort.Slice(lines, func(i, j int) bool {
			return bytes.Compare(lines[i].ProductID[:], lines[j].ProductID[:]) < 0
		})

		for _, line := range lines {
			ok, err := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("failed to place order: %w", err)
			}
			if !ok {
				s.logger.Warn().
					Str("user_id", principal.UserID.String()).
					Str("product_id", line.ProductID.String()).
					Int("quantity", line.Quantity).
					Msg("insufficient stock at checkout")
				return model.InsufficientStockFor(line.ProductName)
			}
		}

		order = model.NewOrderFromCart(cart, time.Now().UTC())
		if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}

		cart.Clear()
		if err := s.cartRepo.Save(ctx, tx, cart); err != nil {
			return fmt.Errorf("failed to place order: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
	)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", principal.UserID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.TotalAmount.String()).
		Msg("order placed successfully")

	s.publish(ctx, events.TypeOrderPlaced, order)

	return order, nil
}

// ListOrders returns every order for admins, including the customer, and
// only the principal's own orders for users.
func (s *orderService) ListOrders(ctx context.Context, principal model.Principal) ([]model.Order, error) {
	filter := repository.OrderFilter{}
	if !principal.IsAdmin() {
		filter.UserID = &principal.UserID
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if !principal.IsAdmin() {
		for i := range orders {
			orders[i].Customer = nil
		}
	}

	s.logger.Debug().
		Str("user_id", principal.UserID.String()).
		Str("role", string(principal.Role)).
		Int("count", len(orders)).
		Msg("retrieved orders")

	return orders, nil
}

// UpdateStatus overwrites the order's status. Any status may follow any other.
func (s *orderService) UpdateStatus(ctx context.Context, principal model.Principal, orderID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	if !principal.IsAdmin() {
		return nil, model.ErrForbidden
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	found, err := s.orderRepo.UpdateStatus(ctx, orderID, req.Status, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !found {
		s.logger.Debug().Str("order_id", orderID.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(req.Status)).
		Msg("order status updated")

	s.publish(ctx, events.TypeOrderStatusUpdated, order)

	return order, nil
}

// publish emits an event after commit. Failures never fail the request.
func (s *orderService) publish(ctx context.Context, eventType string, order *model.Order) {
	if err := s.publisher.Publish(ctx, eventType, order); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("order_id", order.ID.String()).
			Msg("order event not published")
	}
}
