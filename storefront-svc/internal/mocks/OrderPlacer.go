package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type OrderPlacer struct {
	mock.Mock
}

func (_m *OrderPlacer) PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	ret := _m.Called(ctx, token, req)

	var r0 *domain.OrderConfirmation
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.OrderConfirmation)
	}

	return r0, ret.Error(1)
}

func NewOrderPlacer(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderPlacer {
	m := &OrderPlacer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
