package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/auth"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/client"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/mocks"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "canonical", input: "+79991234567", want: "+79991234567"},
		{name: "with separators", input: " +7 (999) 123-45-67 ", want: "+79991234567"},
		{name: "missing plus", input: "79991234567", wantErr: true},
		{name: "too short", input: "+7999123456", wantErr: true},
		{name: "letters", input: "+7999123456a", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := service.NormalizePhone(testCase.input)

			if testCase.wantErr {
				assert.ErrorIs(t, err, service.ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func filledCart(t *testing.T) *cart.Store {
	store := newLocalStore(t)
	store.Add(brisket(), kg("10"), "classic")
	store.Add(ribs(), kg("2"), "honey")
	return store
}

func TestCheckoutService_PlaceOrderSuccess(t *testing.T) {
	orders := mocks.NewOrderPlacer(t)
	receipts := mocks.NewReceiptRepository(t)
	publisher := mocks.NewOrderPublisher(t)
	svc := service.NewCheckoutService(orders, receipts, publisher)
	store := filledCart(t)

	orders.On("PlaceOrder", mock.Anything, "tok", mock.MatchedBy(func(req domain.OrderRequest) bool {
		return req.PhoneNumber == "+79991234567" &&
			len(req.Items) == 2 &&
			req.Items[0].ID == 1 && req.Items[0].SelectedSpice == "classic" && req.Items[0].Meat == "Brisket" &&
			req.Items[1].ID == 2 && req.Items[1].SelectedSpice == "honey"
	})).Return(&domain.OrderConfirmation{OrderID: 42, TotalPrice: kg("1380.1")}, nil).Once()

	receipts.On("SaveReceipt", mock.Anything, mock.MatchedBy(func(r *domain.Receipt) bool {
		return r.SessionID == "sid" && r.OrderID == 42 && r.PhoneNumber == "+79991234567"
	})).Return(nil).Once()

	publisher.On("PublishOrderPlaced", mock.Anything, mock.MatchedBy(func(msg domain.OrderPlacedMessage) bool {
		return msg.Type == "order_placed" && msg.OrderID == 42 && msg.LineCount == 2 &&
			msg.TotalQuantity.Equal(kg("12"))
	})).Return(nil).Once()

	confirmation, err := svc.PlaceOrder(context.Background(), service.CheckoutRequest{
		SessionID:   "sid",
		Token:       "tok",
		PhoneNumber: "+7 999 123-45-67",
		Cart:        store,
	})

	require.NoError(t, err)
	assert.Equal(t, 42, confirmation.OrderID)
	assert.Equal(t, "+79991234567", confirmation.PhoneNumber)
	assert.Equal(t, 0, store.Len())
}

func TestCheckoutService_KeepsLinesAddedDuringSubmit(t *testing.T) {
	orders := mocks.NewOrderPlacer(t)
	svc := service.NewCheckoutService(orders, nil, nil)
	store := newLocalStore(t)
	store.Add(brisket(), kg("10"), "classic")

	orders.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			store.Add(ribs(), kg("2"), "honey")
			store.Add(brisket(), kg("1"), "classic")
		}).
		Return(&domain.OrderConfirmation{OrderID: 9}, nil).Once()

	_, err := svc.PlaceOrder(context.Background(), service.CheckoutRequest{
		SessionID:   "sid",
		PhoneNumber: "+79991234567",
		Cart:        store,
	})
	require.NoError(t, err)

	lines := store.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, cart.ItemKey{ProductID: 1, Spice: "classic"}, lines[0].Key)
	assert.True(t, lines[0].Quantity.Equal(kg("1")))
	assert.Equal(t, cart.ItemKey{ProductID: 2, Spice: "honey"}, lines[1].Key)
	assert.True(t, lines[1].Quantity.Equal(kg("2")))
}

func TestCheckoutService_PlaceOrderFailures(t *testing.T) {
	tests := []struct {
		name      string
		phone     string
		empty     bool
		setupMock func(m *mocks.OrderPlacer)
		wantErr   error
	}{
		{
			name:      "empty cart",
			phone:     "+79991234567",
			empty:     true,
			setupMock: func(m *mocks.OrderPlacer) {},
			wantErr:   service.ErrEmptyCart,
		},
		{
			name:      "invalid phone",
			phone:     "12345",
			setupMock: func(m *mocks.OrderPlacer) {},
			wantErr:   service.ErrInvalidPhone,
		},
		{
			name:  "order rejected",
			phone: "+79991234567",
			setupMock: func(m *mocks.OrderPlacer) {
				m.On("PlaceOrder", mock.Anything, "", mock.Anything).
					Return(nil, &client.APIError{Status: 400, Message: "Product not available"}).Once()
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			orders := mocks.NewOrderPlacer(t)
			testCase.setupMock(orders)
			svc := service.NewCheckoutService(orders, nil, nil)

			store := newLocalStore(t)
			if !testCase.empty {
				store.Add(brisket(), kg("1"), "classic")
			}

			_, err := svc.PlaceOrder(context.Background(), service.CheckoutRequest{
				SessionID:   "sid",
				PhoneNumber: testCase.phone,
				Cart:        store,
			})

			require.Error(t, err)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			}
			if !testCase.empty {
				assert.Equal(t, 1, store.Len())
			}
		})
	}
}

func TestCheckoutService_SideEffectFailuresDoNotFailOrder(t *testing.T) {
	orders := mocks.NewOrderPlacer(t)
	receipts := mocks.NewReceiptRepository(t)
	publisher := mocks.NewOrderPublisher(t)
	svc := service.NewCheckoutService(orders, receipts, publisher)
	store := filledCart(t)

	orders.On("PlaceOrder", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.OrderConfirmation{OrderID: 7, PhoneNumber: "+70000000000"}, nil).Once()
	receipts.On("SaveReceipt", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	publisher.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	confirmation, err := svc.PlaceOrder(context.Background(), service.CheckoutRequest{
		SessionID:   "sid",
		PhoneNumber: "+79991234567",
		Cart:        store,
	})

	require.NoError(t, err)
	assert.Equal(t, "+70000000000", confirmation.PhoneNumber)
	assert.Equal(t, 0, store.Len())
}

func TestCachedPricer_Quote(t *testing.T) {
	lines := []domain.QuoteLine{{ID: 1, Quantity: kg("10"), SelectedSpice: "classic"}}
	cached := domain.Quote{TotalPrice: kg("920")}

	tests := []struct {
		name      string
		setupMock func(next *mocks.Pricer, cache *mocks.QuoteCache)
		wantTotal string
		wantErr   bool
	}{
		{
			name: "cache hit",
			setupMock: func(next *mocks.Pricer, cache *mocks.QuoteCache) {
				cache.On("QuoteKey", lines).Return("k").Once()
				cache.On("Get", mock.Anything, "k").Return(cached, true, nil).Once()
			},
			wantTotal: "920",
		},
		{
			name: "cache miss stores result",
			setupMock: func(next *mocks.Pricer, cache *mocks.QuoteCache) {
				cache.On("QuoteKey", lines).Return("k").Once()
				cache.On("Get", mock.Anything, "k").Return(domain.Quote{}, false, nil).Once()
				next.On("Quote", mock.Anything, lines).Return(cached, nil).Once()
				cache.On("Set", mock.Anything, "k", cached, 5*time.Minute).Return(nil).Once()
			},
			wantTotal: "920",
		},
		{
			name: "cache errors are ignored",
			setupMock: func(next *mocks.Pricer, cache *mocks.QuoteCache) {
				cache.On("QuoteKey", lines).Return("k").Once()
				cache.On("Get", mock.Anything, "k").Return(domain.Quote{}, false, errors.New("redis down")).Once()
				next.On("Quote", mock.Anything, lines).Return(cached, nil).Once()
				cache.On("Set", mock.Anything, "k", cached, 5*time.Minute).Return(errors.New("redis down")).Once()
			},
			wantTotal: "920",
		},
		{
			name: "upstream failure is not cached",
			setupMock: func(next *mocks.Pricer, cache *mocks.QuoteCache) {
				cache.On("QuoteKey", lines).Return("k").Once()
				cache.On("Get", mock.Anything, "k").Return(domain.Quote{}, false, nil).Once()
				next.On("Quote", mock.Anything, lines).Return(domain.Quote{}, errors.New("timeout")).Once()
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			next := mocks.NewPricer(t)
			cache := mocks.NewQuoteCache(t)
			testCase.setupMock(next, cache)
			pricer := service.NewCachedPricer(next, cache, 5*time.Minute)

			quote, err := pricer.Quote(context.Background(), lines)

			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, quote.TotalPrice.Equal(kg(testCase.wantTotal)))
		})
	}
}

func TestCartService_AddProduct(t *testing.T) {
	unavailable := brisket()
	unavailable.Avail = false

	tests := []struct {
		name      string
		product   *domain.Product
		fetchErr  error
		quantity  string
		wantErr   error
		wantQty   string
		wantAdded bool
	}{
		{name: "available product", product: ptr(brisket()), quantity: "2.5", wantQty: "2.5", wantAdded: true},
		{name: "missing quantity becomes one", product: ptr(brisket()), quantity: "0", wantQty: "1", wantAdded: true},
		{name: "unavailable product", product: &unavailable, quantity: "1", wantErr: service.ErrProductUnavailable},
		{name: "catalog failure", fetchErr: &client.APIError{Status: 404, Message: "Product not found"}, quantity: "1"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			catalog := mocks.NewCatalogService(t)
			catalog.On("FetchProduct", mock.Anything, 1).Return(testCase.product, testCase.fetchErr).Once()
			svc := service.NewCartService(catalog)
			store := newLocalStore(t)

			_, err := svc.AddProduct(context.Background(), store, 1, kg(testCase.quantity), "")

			if !testCase.wantAdded {
				require.Error(t, err)
				if testCase.wantErr != nil {
					assert.ErrorIs(t, err, testCase.wantErr)
				}
				assert.Equal(t, 0, store.Len())
				return
			}
			require.NoError(t, err)
			lines := store.Lines()
			require.Len(t, lines, 1)
			assert.Equal(t, "classic", lines[0].SelectedSpice())
			assert.True(t, lines[0].Quantity.Equal(kg(testCase.wantQty)))
		})
	}
}

func TestCartService_AddProductNotFoundIsDetectable(t *testing.T) {
	catalog := mocks.NewCatalogService(t)
	catalog.On("FetchProduct", mock.Anything, 9).
		Return(nil, &client.APIError{Status: 404, Message: "Product not found"}).Once()

	_, err := service.NewCartService(catalog).AddProduct(context.Background(), newLocalStore(t), 9, kg("1"), "")

	assert.True(t, client.IsNotFound(err))
}

func TestSessions_GetReusesAndWiresSessionEnd(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewMemoryTokenStore()
	sessions := service.NewSessions(tokens, nil, time.Second)
	defer sessions.Close()

	first := sessions.Get(ctx, "sid")
	assert.Same(t, first, sessions.Get(ctx, "sid"))
	assert.Equal(t, 1, sessions.Len())

	require.NoError(t, first.Auth.Login(ctx, signToken(t, "ivan", domain.RoleClient, time.Hour)))
	first.Cart.Add(brisket(), kg("1"), "classic")
	require.NoError(t, first.Auth.Logout(ctx))

	assert.Equal(t, 0, first.Cart.Len())
}

func TestSessions_GetRestoresPersistedToken(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewMemoryTokenStore()
	require.NoError(t, tokens.Save(ctx, "sid", signToken(t, "boss", domain.RoleOwner, time.Hour), time.Hour))
	sessions := service.NewSessions(tokens, nil, time.Second)
	defer sessions.Close()

	sess := sessions.Get(ctx, "sid")

	assert.True(t, sess.Auth.IsAuthenticated())
	assert.Equal(t, domain.RoleOwner, sess.Auth.Role())
}

func TestSessions_EvictIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions := service.NewSessions(auth.NewMemoryTokenStore(), nil, time.Second,
		service.WithIdleTTL(10*time.Minute),
		service.WithClock(func() time.Time { return now }),
	)
	defer sessions.Close()

	idle := sessions.Get(ctx, "idle")
	idle.Cart.Add(brisket(), kg("1"), "classic")
	sessions.Get(ctx, "active")

	now = now.Add(8 * time.Minute)
	sessions.Get(ctx, "active")
	assert.Equal(t, 0, sessions.EvictIdle())

	now = now.Add(3 * time.Minute)
	assert.Equal(t, 1, sessions.EvictIdle())
	assert.Equal(t, 1, sessions.Len())

	fresh := sessions.Get(ctx, "idle")
	assert.NotSame(t, idle, fresh)
	assert.Equal(t, 0, fresh.Cart.Len())
}

func TestSessions_EvictIdleDisabled(t *testing.T) {
	sessions := service.NewSessions(auth.NewMemoryTokenStore(), nil, time.Second, service.WithIdleTTL(0))
	defer sessions.Close()

	sessions.Get(context.Background(), "sid")

	assert.Equal(t, 0, sessions.EvictIdle())
	assert.Equal(t, 1, sessions.Len())
}

type blockingTokenStore struct {
	*auth.MemoryTokenStore
	blockID string
	release chan struct{}
}

func (b *blockingTokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	if sessionID == b.blockID {
		<-b.release
	}
	return b.MemoryTokenStore.Load(ctx, sessionID)
}

func TestSessions_GetDoesNotBlockOnOtherSessionsRestore(t *testing.T) {
	ctx := context.Background()
	tokens := &blockingTokenStore{MemoryTokenStore: auth.NewMemoryTokenStore(), blockID: "slow", release: make(chan struct{})}
	sessions := service.NewSessions(tokens, nil, time.Second)
	defer sessions.Close()

	slow := make(chan *service.Session)
	go func() { slow <- sessions.Get(ctx, "slow") }()

	fast := make(chan *service.Session)
	go func() { fast <- sessions.Get(ctx, "fast") }()

	select {
	case sess := <-fast:
		assert.Equal(t, "fast", sess.ID)
	case <-time.After(time.Second):
		t.Fatal("Get for another session waited on a slow restore")
	}

	close(tokens.release)
	assert.Equal(t, "slow", (<-slow).ID)
	assert.Equal(t, 2, sessions.Len())
}

func ptr[T any](v T) *T {
	return &v
}
