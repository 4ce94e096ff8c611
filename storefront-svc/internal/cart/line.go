package cart

import (
	"strconv"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/shopspring/decimal"
)

// ItemKey identifies a cart line. The same product with two spices is two lines.
type ItemKey struct {
	ProductID int    `json:"id"`
	Spice     string `json:"selected_spice"`
}

func (k ItemKey) String() string {
	return strconv.Itoa(k.ProductID) + "-" + k.Spice
}

type Line struct {
	Key      ItemKey
	Product  domain.Product // snapshot taken by Add
	Quantity decimal.Decimal
}

func (l Line) SelectedSpice() string {
	return l.Key.Spice
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(l.Quantity)
}

func (l Line) quoteLine() domain.QuoteLine {
	return domain.QuoteLine{
		ID:            l.Key.ProductID,
		Quantity:      l.Quantity,
		SelectedSpice: l.Key.Spice,
	}
}

// Total is the best price the store can show right now.
type Total struct {
	Amount        decimal.Decimal
	Authoritative bool
	Pending       bool
}
