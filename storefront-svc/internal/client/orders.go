package client

import (
	"context"
	"net/http"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
)

func (u *Upstream) PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	var confirmation domain.OrderConfirmation
	if err := u.do(ctx, http.MethodPost, "/order", token, req, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}
