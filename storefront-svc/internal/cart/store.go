package cart

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Pricer interface {
	Quote(ctx context.Context, lines []domain.QuoteLine) (domain.Quote, error)
}

// SessionSignal notifies the store when the owning auth session ends.
type SessionSignal interface {
	OnSessionEnded(fn func()) (cancel func())
}

type Option func(*Store)

func WithSessionSignal(signal SessionSignal) Option {
	return func(s *Store) { s.signal = signal }
}

// WithReconcileTimeout bounds each pricing call. Zero disables the bound.
func WithReconcileTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store is the client-side cart of one browser session.
//
// Every change to the line set invalidates the authoritative quote and issues a
// new stamped reconciliation. Only the response for the latest stamp is applied,
// so a slow reply for an older line set can never overwrite a newer one.
type Store struct {
	mu       sync.Mutex
	lines    []Line
	quote    *domain.Quote
	issued   uint64
	resolved uint64
	lastErr  error
	closed   bool

	pricer      Pricer
	signal      SessionSignal
	unsubscribe func()
	timeout     time.Duration
	logger      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(pricer Pricer, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		pricer:  pricer,
		timeout: 5 * time.Second,
		logger:  log.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.signal != nil {
		s.unsubscribe = s.signal.OnSessionEnded(s.Clear)
	}
	return s
}

// Add merges quantity into the (product, spice) line or appends a new one.
// An empty spice falls back to the product's first available recipe.
// Availability is the caller's concern; non-positive quantities are ignored.
func (s *Store) Add(product domain.Product, quantity decimal.Decimal, spice string) {
	if !quantity.IsPositive() {
		return
	}
	if spice == "" {
		spice = product.Spice.Default()
	}
	key := ItemKey{ProductID: product.ID, Spice: spice}

	s.mutate(func() bool {
		if i := s.indexOf(key); i >= 0 {
			s.lines[i].Quantity = s.lines[i].Quantity.Add(quantity)
			return true
		}
		s.lines = append(s.lines, Line{Key: key, Product: product, Quantity: quantity})
		return true
	})
}

func (s *Store) Remove(key ItemKey) {
	s.mutate(func() bool {
		i := s.indexOf(key)
		if i < 0 {
			return false
		}
		s.lines = slices.Delete(s.lines, i, i+1)
		return true
	})
}

// UpdateQuantity floors the quantity at zero; a line that reaches zero is removed.
func (s *Store) UpdateQuantity(key ItemKey, quantity decimal.Decimal) {
	if quantity.IsNegative() {
		quantity = decimal.Zero
	}

	s.mutate(func() bool {
		i := s.indexOf(key)
		if i < 0 {
			return false
		}
		if quantity.IsZero() {
			s.lines = slices.Delete(s.lines, i, i+1)
			return true
		}
		if s.lines[i].Quantity.Equal(quantity) {
			return false
		}
		s.lines[i].Quantity = quantity
		return true
	})
}

// UpdateSpice moves a line to another spice of the same product. When a line
// with the target spice already exists the two are merged into it.
// Empty or unknown spices are ignored.
func (s *Store) UpdateSpice(key ItemKey, spice string) {
	if spice == "" {
		return
	}

	s.mutate(func() bool {
		i := s.indexOf(key)
		if i < 0 {
			return false
		}
		line := s.lines[i]
		if line.Key.Spice == spice || !line.Product.Spice.Offers(spice) {
			return false
		}

		target := ItemKey{ProductID: key.ProductID, Spice: spice}
		if j := s.indexOf(target); j >= 0 {
			s.lines[j].Quantity = s.lines[j].Quantity.Add(line.Quantity)
			s.lines = slices.Delete(s.lines, i, i+1)
			return true
		}
		s.lines[i].Key = target
		return true
	})
}

// Clear empties the cart and drops the quote. Replies still in flight are
// discarded because the stamp moves on.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.quote = nil
	s.lastErr = nil
	s.issued++
	s.resolved = s.issued
}

// Subtract takes the given lines' quantities back out of the cart, removing
// lines that reach zero. Lines added or grown since the snapshot survive.
func (s *Store) Subtract(lines []Line) {
	s.mutate(func() bool {
		changed := false
		for _, taken := range lines {
			i := s.indexOf(taken.Key)
			if i < 0 {
				continue
			}
			changed = true
			left := s.lines[i].Quantity.Sub(taken.Quantity)
			if !left.IsPositive() {
				s.lines = slices.Delete(s.lines, i, i+1)
				continue
			}
			s.lines[i].Quantity = left
		}
		return changed
	})
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// LocalTotal is the sum of price times quantity, without server-side discounts.
func (s *Store) LocalTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localTotalLocked()
}

func (s *Store) Total() Total {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return Total{Amount: decimal.Zero}
	}
	if s.quote != nil {
		return Total{Amount: s.quote.TotalPrice, Authoritative: true}
	}
	return Total{Amount: s.localTotalLocked(), Pending: s.resolved != s.issued}
}

func (s *Store) Quote() (domain.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quote == nil {
		return domain.Quote{}, false
	}
	return *s.quote, true
}

// LastError reports why the latest reconciliation failed, if it did.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Wait blocks until every issued reconciliation has returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close stops listening for session end and waits for in-flight pricing.
// Mutations after Close keep working on the local total only.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.cancel()
	s.wg.Wait()
}

func (s *Store) mutate(change func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if change() {
		s.scheduleLocked()
	}
}

func (s *Store) scheduleLocked() {
	s.issued++
	stamp := s.issued
	s.quote = nil
	s.lastErr = nil

	if len(s.lines) == 0 || s.pricer == nil || s.closed {
		s.resolved = stamp
		return
	}

	lines := make([]domain.QuoteLine, len(s.lines))
	for i, line := range s.lines {
		lines[i] = line.quoteLine()
	}

	s.wg.Add(1)
	go s.reconcile(stamp, lines)
}

func (s *Store) reconcile(stamp uint64, lines []domain.QuoteLine) {
	defer s.wg.Done()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	quote, err := s.pricer.Quote(ctx, lines)

	s.mu.Lock()
	defer s.mu.Unlock()

	if stamp != s.issued {
		s.logger.Debug().
			Uint64("stamp", stamp).
			Uint64("current", s.issued).
			Msg("Discarding stale price quote")
		return
	}

	s.resolved = stamp
	if err != nil {
		s.lastErr = err
		s.logger.Warn().Err(err).
			Uint64("stamp", stamp).
			Int("lines", len(lines)).
			Msg("Price reconciliation failed, falling back to local total")
		return
	}
	s.quote = &quote
}

func (s *Store) indexOf(key ItemKey) int {
	return slices.IndexFunc(s.lines, func(l Line) bool { return l.Key == key })
}

func (s *Store) localTotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}
