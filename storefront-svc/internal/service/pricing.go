package service

import (
	"context"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/cart"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/rs/zerolog/log"
)

// CachedPricer serves repeated bulk quotes for the same line set from a cache.
// Cache failures never fail a quote.
type CachedPricer struct {
	next  cart.Pricer
	cache QuoteCache
	ttl   time.Duration
}

func NewCachedPricer(next cart.Pricer, cache QuoteCache, ttl time.Duration) *CachedPricer {
	return &CachedPricer{next: next, cache: cache, ttl: ttl}
}

func (p *CachedPricer) Quote(ctx context.Context, lines []domain.QuoteLine) (domain.Quote, error) {
	key := p.cache.QuoteKey(lines)

	cached, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read quote cache")
	} else if ok {
		log.Debug().Str("key", key).Msg("Quote cache hit")
		return cached, nil
	}

	quote, err := p.next.Quote(ctx, lines)
	if err != nil {
		return domain.Quote{}, err
	}

	if err := p.cache.Set(ctx, key, quote, p.ttl); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache quote")
	}
	return quote, nil
}
