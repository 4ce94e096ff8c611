package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Pricer struct {
	mock.Mock
}

func (_m *Pricer) Quote(ctx context.Context, lines []domain.QuoteLine) (domain.Quote, error) {
	ret := _m.Called(ctx, lines)

	var r0 domain.Quote
	if rf, ok := ret.Get(0).(func(context.Context, []domain.QuoteLine) domain.Quote); ok {
		r0 = rf(ctx, lines)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.Quote)
	}

	return r0, ret.Error(1)
}

func NewPricer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Pricer {
	m := &Pricer{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
