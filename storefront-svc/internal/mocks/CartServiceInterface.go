package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type CartServiceInterface struct {
	mock.Mock
}

func (_m *CartServiceInterface) AddProduct(ctx context.Context, store service.CartAdder, productID int, quantity decimal.Decimal, spice string) (*domain.Product, error) {
	ret := _m.Called(ctx, store, productID, quantity, spice)

	var r0 *domain.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Product)
	}

	return r0, ret.Error(1)
}

func NewCartServiceInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartServiceInterface {
	m := &CartServiceInterface{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
