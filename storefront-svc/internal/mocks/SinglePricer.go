package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type SinglePricer struct {
	mock.Mock
}

func (_m *SinglePricer) QuoteSingle(ctx context.Context, productID int, quantity decimal.Decimal) (domain.QuotedItem, error) {
	ret := _m.Called(ctx, productID, quantity)

	var r0 domain.QuotedItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.QuotedItem)
	}

	return r0, ret.Error(1)
}

func NewSinglePricer(t interface {
	mock.TestingT
	Cleanup(func())
}) *SinglePricer {
	m := &SinglePricer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
