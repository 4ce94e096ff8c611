package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"

	"github.com/stretchr/testify/mock"
)

type CheckoutServiceInterface struct {
	mock.Mock
}

func (_m *CheckoutServiceInterface) PlaceOrder(ctx context.Context, req service.CheckoutRequest) (*domain.OrderConfirmation, error) {
	ret := _m.Called(ctx, req)

	var r0 *domain.OrderConfirmation
	if rf, ok := ret.Get(0).(func(context.Context, service.CheckoutRequest) *domain.OrderConfirmation); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.OrderConfirmation)
	}

	return r0, ret.Error(1)
}

func NewCheckoutServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *CheckoutServiceInterface {
	m := &CheckoutServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
