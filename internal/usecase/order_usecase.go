package usecase

import (
	"context"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const AllStatuses = "all"

type OrderUseCase interface {
	ListMyOrders(ctx context.Context, statusFilter string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type orderUseCase struct {
	session SessionUseCase
	orders  domain.OrderService
	log     *logrus.Logger
}

func NewOrderUseCase(session SessionUseCase, orders domain.OrderService, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		session: session,
		orders:  orders,
		log:     logger,
	}
}

func parseStatusFilter(filter string) (domain.OrderStatus, error) {
	if filter == "" || filter == AllStatuses {
		return "", nil
	}
	status := domain.OrderStatus(filter)
	if !domain.IsValidStatus(status) {
		return "", domain.NewValidationError("status", "unknown order status: "+filter)
	}
	return status, nil
}

func (uc *orderUseCase) ListMyOrders(ctx context.Context, statusFilter string) ([]domain.Order, error) {
	if !uc.session.IsActive(ctx) {
		return nil, domain.ErrAuthRequired
	}
	status, err := parseStatusFilter(statusFilter)
	if err != nil {
		return nil, err
	}

	orders, err := uc.orders.ListMyOrders(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders: %v", err)
		return nil, err
	}

	filtered := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if status == "" || o.Status == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if !uc.session.IsActive(ctx) {
		return nil, domain.ErrAuthRequired
	}
	if id == "" {
		return nil, domain.NewValidationError("id", "order id is required")
	}
	order, err := uc.orders.GetOrder(ctx, id)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to get order %s: %v", id, err)
		return nil, err
	}
	return order, nil
}
