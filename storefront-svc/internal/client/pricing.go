package client

import (
	"context"
	"net/http"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/shopspring/decimal"
)

// Quote asks the API for the bulk price of the given lines. Discount tiers
// are applied server-side.
func (u *Upstream) Quote(ctx context.Context, lines []domain.QuoteLine) (domain.Quote, error) {
	payload := struct {
		Items []domain.QuoteLine `json:"items"`
	}{Items: lines}

	var quote domain.Quote
	if err := u.do(ctx, http.MethodPost, "/calculate-bulk", "", payload, &quote); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func (u *Upstream) QuoteSingle(ctx context.Context, productID int, quantity decimal.Decimal) (domain.QuotedItem, error) {
	payload := struct {
		ID       int             `json:"id"`
		Quantity decimal.Decimal `json:"quantity"`
	}{ID: productID, Quantity: quantity}

	var item domain.QuotedItem
	if err := u.do(ctx, http.MethodPost, "/calculate-price", "", payload, &item); err != nil {
		return domain.QuotedItem{}, err
	}
	return item, nil
}
