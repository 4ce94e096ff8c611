package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
)

func (u *Upstream) FetchCatalogPage(ctx context.Context, page, size int) (*domain.CatalogPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var result domain.CatalogPage
	if err := u.do(ctx, http.MethodGet, "/assortment?"+query.Encode(), "", nil, &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		result.Items = []domain.Product{}
	}
	return &result, nil
}

func (u *Upstream) FetchProduct(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.Product
	if err := u.do(ctx, http.MethodGet, "/product/"+strconv.Itoa(id), "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
