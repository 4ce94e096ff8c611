package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type TokenStore struct {
	mock.Mock
}

func (_m *TokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	ret := _m.Called(ctx, sessionID)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenStore) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	ret := _m.Called(ctx, sessionID, token, ttl)
	return ret.Error(0)
}

func (_m *TokenStore) Delete(ctx context.Context, sessionID string) error {
	ret := _m.Called(ctx, sessionID)
	return ret.Error(0)
}

func NewTokenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *TokenStore {
	m := &TokenStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
