package usecase

import (
	"context"
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMyOrdersFilter(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.backend.orders = []domain.Order{
		{ID: "o1", Status: domain.StatusPending},
		{ID: "o2", Status: domain.StatusDelivered},
		{ID: "o3", Status: domain.StatusPending},
	}
	orders := NewOrderUseCase(fx.session, fx.backend, testLogger())

	_, err := orders.ListMyOrders(ctx, "")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	fx.login()

	all, err := orders.ListMyOrders(ctx, AllStatuses)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := orders.ListMyOrders(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = orders.ListMyOrders(ctx, "lost")
	assert.True(t, domain.IsValidationError(err))
}

func TestGetOrder(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	fx.login()
	fx.backend.orders = []domain.Order{{ID: "o1", Status: domain.StatusShipped}}
	orders := NewOrderUseCase(fx.session, fx.backend, testLogger())

	order, err := orders.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, order.Status)

	_, err = orders.GetOrder(ctx, "")
	assert.True(t, domain.IsValidationError(err))

	_, err = orders.GetOrder(ctx, "nope")
	assert.True(t, domain.IsRemoteError(err))
}
