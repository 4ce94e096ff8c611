package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisTokenStore struct {
	Client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{Client: client}
}

func (s *RedisTokenStore) key(sessionID string) string {
	return "session:token:" + sessionID
}

func (s *RedisTokenStore) Load(ctx context.Context, sessionID string) (string, error) {
	token, err := s.Client.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *RedisTokenStore) Save(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return s.Client.Set(ctx, s.key(sessionID), token, ttl).Err()
}

func (s *RedisTokenStore) Delete(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, s.key(sessionID)).Err()
}

type RedisQuoteCache struct {
	Client *redis.Client
}

func NewRedisQuoteCache(client *redis.Client) *RedisQuoteCache {
	return &RedisQuoteCache{Client: client}
}

// QuoteKey follows the API's own bulk price cache layout, with exact
// quantities so distinct line sets never share a key.
func (c *RedisQuoteCache) QuoteKey(lines []domain.QuoteLine) string {
	var b strings.Builder
	b.WriteString("bulk_price:")
	for _, line := range lines {
		fmt.Fprintf(&b, "%d:%s:%s;", line.ID, line.Quantity.String(), line.SelectedSpice)
	}
	return b.String()
}

func (c *RedisQuoteCache) Get(ctx context.Context, key string) (domain.Quote, bool, error) {
	cached, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, false, nil
	}
	if err != nil {
		return domain.Quote{}, false, err
	}

	var quote domain.Quote
	if err := json.Unmarshal(cached, &quote); err != nil {
		return domain.Quote{}, false, fmt.Errorf("unmarshal cached quote: %w", err)
	}
	return quote, true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, key string, quote domain.Quote, ttl time.Duration) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, payload, ttl).Err()
}
