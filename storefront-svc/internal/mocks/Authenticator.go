package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Authenticator struct {
	mock.Mock
}

func (_m *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	ret := _m.Called(ctx, username, password)
	return ret.String(0), ret.Error(1)
}

func (_m *Authenticator) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	ret := _m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

func NewAuthenticator(t interface {
	mock.TestingT
	Cleanup(func())
}) *Authenticator {
	m := &Authenticator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
