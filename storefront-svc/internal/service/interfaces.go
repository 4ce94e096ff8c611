package service

import (
	"context"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/client"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/shopspring/decimal"
)

type CatalogService interface {
	FetchCatalogPage(ctx context.Context, page, size int) (*domain.CatalogPage, error)
	FetchProduct(ctx context.Context, id int) (*domain.Product, error)
}

type SinglePricer interface {
	QuoteSingle(ctx context.Context, productID int, quantity decimal.Decimal) (domain.QuotedItem, error)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, req domain.RegisterRequest) (string, error)
}

type QuoteCache interface {
	QuoteKey(lines []domain.QuoteLine) string
	Get(ctx context.Context, key string) (domain.Quote, bool, error)
	Set(ctx context.Context, key string, quote domain.Quote, ttl time.Duration) error
}

type ReceiptRepository interface {
	SaveReceipt(ctx context.Context, receipt *domain.Receipt) error
	ListReceipts(ctx context.Context, sessionID string, limit int) ([]domain.Receipt, error)
	GetReceipt(ctx context.Context, sessionID string, orderID int) (*domain.Receipt, error)
}

type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg domain.OrderPlacedMessage) error
}

// CheckoutCart is the slice of the cart store that checkout needs.
type CheckoutCart interface {
	Lines() []cart.Line
	Subtract(lines []cart.Line)
}

type CheckoutServiceInterface interface {
	PlaceOrder(ctx context.Context, req CheckoutRequest) (*domain.OrderConfirmation, error)
}

var (
	_ CatalogService = (*client.Upstream)(nil)
	_ SinglePricer   = (*client.Upstream)(nil)
	_ OrderPlacer    = (*client.Upstream)(nil)
	_ Authenticator  = (*client.Upstream)(nil)
	_ cart.Pricer    = (*client.Upstream)(nil)
	_ cart.Pricer    = (*CachedPricer)(nil)
	_ CheckoutCart   = (*cart.Store)(nil)

	_ CheckoutServiceInterface = (*CheckoutService)(nil)
)

type CartServiceInterface interface {
	AddProduct(ctx context.Context, store CartAdder, productID int, quantity decimal.Decimal, spice string) (*domain.Product, error)
}

var (
	_ CartAdder            = (*cart.Store)(nil)
	_ CartServiceInterface = (*CartService)(nil)
)

// SessionProvider hands out the per-browser session state.
type SessionProvider interface {
	Get(ctx context.Context, id string) *Session
}

var _ SessionProvider = (*Sessions)(nil)
