package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/shopspring/decimal"
)

var ErrProductUnavailable = errors.New("product is not available")

// CartAdder is the slice of the cart store that adding a product needs.
type CartAdder interface {
	Add(product domain.Product, quantity decimal.Decimal, spice string)
}

type CartService struct {
	catalog CatalogService
}

func NewCartService(catalog CatalogService) *CartService {
	return &CartService{catalog: catalog}
}

// AddProduct snapshots the product from the catalog and adds it to the cart.
// Quantities that are not positive become one kilogram.
func (s *CartService) AddProduct(ctx context.Context, store CartAdder, productID int, quantity decimal.Decimal, spice string) (*domain.Product, error) {
	product, err := s.catalog.FetchProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch product %d: %w", productID, err)
	}
	if !product.Avail {
		return nil, ErrProductUnavailable
	}
	if !quantity.IsPositive() {
		quantity = decimal.NewFromInt(1)
	}
	store.Add(*product, quantity, spice)
	return product, nil
}
