package service

import (
	"context"
	"fmt"

	"pizza-maniac/internal/model"
	"pizza-maniac/internal/repository"

	"github.com/rs/zerolog"
)

type dashboardService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(orderRepo repository.OrderRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "dashboard").Logger(),
	}
}

func (s *dashboardService) Stats(ctx context.Context, principal model.Principal) (*model.DashboardStats, error) {
	if !principal.IsAdmin() {
		return nil, model.ErrForbidden
	}

	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	return stats, nil
}
