package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type CatalogService struct {
	mock.Mock
}

func (_m *CatalogService) FetchCatalogPage(ctx context.Context, page, size int) (*domain.CatalogPage, error) {
	ret := _m.Called(ctx, page, size)

	var r0 *domain.CatalogPage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.CatalogPage)
	}

	return r0, ret.Error(1)
}

func (_m *CatalogService) FetchProduct(ctx context.Context, id int) (*domain.Product, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Product
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Product)
	}

	return r0, ret.Error(1)
}

func NewCatalogService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CatalogService {
	m := &CatalogService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
