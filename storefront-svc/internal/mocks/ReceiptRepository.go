package mocks

import (
	"context"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type ReceiptRepository struct {
	mock.Mock
}

func (_m *ReceiptRepository) SaveReceipt(ctx context.Context, receipt *domain.Receipt) error {
	ret := _m.Called(ctx, receipt)
	return ret.Error(0)
}

func (_m *ReceiptRepository) ListReceipts(ctx context.Context, sessionID string, limit int) ([]domain.Receipt, error) {
	ret := _m.Called(ctx, sessionID, limit)

	var r0 []domain.Receipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Receipt)
	}

	return r0, ret.Error(1)
}

func (_m *ReceiptRepository) GetReceipt(ctx context.Context, sessionID string, orderID int) (*domain.Receipt, error) {
	ret := _m.Called(ctx, sessionID, orderID)

	var r0 *domain.Receipt
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Receipt)
	}

	return r0, ret.Error(1)
}

func NewReceiptRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ReceiptRepository {
	m := &ReceiptRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
