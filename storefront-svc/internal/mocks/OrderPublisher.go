package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type OrderPublisher struct {
	mock.Mock
}

func (_m *OrderPublisher) PublishOrderPlaced(ctx context.Context, msg domain.OrderPlacedMessage) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}

func NewOrderPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *OrderPublisher {
	m := &OrderPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
