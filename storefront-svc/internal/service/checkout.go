package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidPhone = errors.New("phone number must be in the format +79991234567")
)

var phonePattern = regexp.MustCompile(`^\+\d{11}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizePhone strips separators and checks the +XXXXXXXXXXX format.
func NormalizePhone(raw string) (string, error) {
	phone := phoneSeparators.Replace(strings.TrimSpace(raw))
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

type CheckoutRequest struct {
	SessionID   string
	Token       string
	PhoneNumber string
	Cart        CheckoutCart
}

type CheckoutService struct {
	orders    OrderPlacer
	receipts  ReceiptRepository
	publisher OrderPublisher
	now       func() time.Time
}

// NewCheckoutService wires order placement. receipts and publisher may be nil.
func NewCheckoutService(orders OrderPlacer, receipts ReceiptRepository, publisher OrderPublisher) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		receipts:  receipts,
		publisher: publisher,
		now:       time.Now,
	}
}

// PlaceOrder submits the cart. Only when the API accepts the order are the
// submitted lines taken out of the cart; lines added meanwhile stay. On any
// error the cart is left untouched so the user can retry.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*domain.OrderConfirmation, error) {
	lines := req.Cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	phone, err := NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	order := domain.OrderRequest{
		Items:       make([]domain.OrderLine, 0, len(lines)),
		PhoneNumber: phone,
	}
	totalQuantity := decimal.Zero
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderLine{
			ID:            line.Key.ProductID,
			Quantity:      line.Quantity,
			SelectedSpice: line.SelectedSpice(),
			Meat:          line.Product.Meat,
		})
		totalQuantity = totalQuantity.Add(line.Quantity)
	}

	confirmation, err := s.orders.PlaceOrder(ctx, req.Token, order)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Int("lines", len(lines)).Msg("Failed to place order")
		return nil, err
	}
	if confirmation.PhoneNumber == "" {
		confirmation.PhoneNumber = phone
	}

	req.Cart.Subtract(lines)

	log.Info().
		Int("order_id", confirmation.OrderID).
		Str("session_id", req.SessionID).
		Str("total_price", confirmation.TotalPrice.String()).
		Msg("Order placed")

	if s.receipts != nil {
		receipt := &domain.Receipt{
			SessionID:         req.SessionID,
			OrderConfirmation: *confirmation,
			RecordedAt:        s.now(),
		}
		if err := s.receipts.SaveReceipt(ctx, receipt); err != nil {
			log.Error().Err(err).Int("order_id", confirmation.OrderID).Msg("Failed to record receipt")
		}
	}

	if s.publisher != nil {
		msg := domain.OrderPlacedMessage{
			Type:          "order_placed",
			OrderID:       confirmation.OrderID,
			SessionID:     req.SessionID,
			PhoneNumber:   confirmation.PhoneNumber,
			TotalPrice:    confirmation.TotalPrice,
			TotalQuantity: totalQuantity,
			LineCount:     len(lines),
			Timestamp:     s.now(),
		}
		if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
			log.Error().Err(err).Int("order_id", confirmation.OrderID).Msg("Failed to publish order event")
		}
	}

	return confirmation, nil
}
