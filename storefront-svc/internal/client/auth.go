package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
)

var errNoToken = errors.New("upstream returned no token")

type tokenResponse struct {
	Token string `json:"token"`
}

func (u *Upstream) Login(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}

	var resp tokenResponse
	if err := u.do(ctx, http.MethodPost, "/login", "", payload, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}

func (u *Upstream) Register(ctx context.Context, req domain.RegisterRequest) (string, error) {
	var resp tokenResponse
	if err := u.do(ctx, http.MethodPost, "/register", "", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errNoToken
	}
	return resp.Token, nil
}
