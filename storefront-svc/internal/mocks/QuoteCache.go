package mocks

import (
	"context"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type QuoteCache struct {
	mock.Mock
}

func (_m *QuoteCache) QuoteKey(lines []domain.QuoteLine) string {
	ret := _m.Called(lines)
	return ret.String(0)
}

func (_m *QuoteCache) Get(ctx context.Context, key string) (domain.Quote, bool, error) {
	ret := _m.Called(ctx, key)

	var r0 domain.Quote
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(domain.Quote)
	}

	return r0, ret.Bool(1), ret.Error(2)
}

func (_m *QuoteCache) Set(ctx context.Context, key string, quote domain.Quote, ttl time.Duration) error {
	ret := _m.Called(ctx, key, quote, ttl)
	return ret.Error(0)
}

func NewQuoteCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *QuoteCache {
	m := &QuoteCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
