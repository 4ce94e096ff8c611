package storage

import (
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/auth"
	"github.com/KarabasUehal/Smoked-Meat/storefront-svc/internal/service"

	"github.com/segmentio/kafka-go"
)

var (
	_ auth.TokenStore           = (*RedisTokenStore)(nil)
	_ service.QuoteCache        = (*RedisQuoteCache)(nil)
	_ service.ReceiptRepository = (*PostgresReceiptRepository)(nil)
	_ service.OrderPublisher    = (*KafkaPublisher)(nil)
	_ MessageWriter             = (*kafka.Writer)(nil)
)
