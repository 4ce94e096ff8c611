package config

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Port             string
	UpstreamURL      string
	UpstreamTimeout  time.Duration
	ReconcileTimeout time.Duration
	QuoteCacheTTL    time.Duration
	PublicBaseURL    string
	AllowedOrigins   []string
	SessionIdleTTL   time.Duration

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string

	RedisHost string
	RedisPort string

	KafkaBroker      string
	KafkaOrdersTopic string

	LogLevel  string
	LogFormat string
}

// Load reads .env outside production, then the process environment.
func Load() Config {
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg(".env not loaded, using process environment")
		}
	}

	publicBaseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/")

	return Config{
		Port:             getEnv("PORT", "8080"),
		UpstreamURL:      strings.TrimRight(getEnv("UPSTREAM_URL", "http://localhost:8081"), "/"),
		UpstreamTimeout:  getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		ReconcileTimeout: getDuration("RECONCILE_TIMEOUT", 5*time.Second),
		QuoteCacheTTL:    getDuration("QUOTE_CACHE_TTL", 5*time.Minute),
		PublicBaseURL:    publicBaseURL,
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", publicBaseURL)),
		SessionIdleTTL:   getDuration("SESSION_IDLE_TTL", 30*time.Minute),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     os.Getenv("DB_NAME"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),

		RedisHost: os.Getenv("REDIS_HOST"),
		RedisPort: getEnv("REDIS_PORT", "6379"),

		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		KafkaOrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "orders"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

func (c Config) PostgresEnabled() bool { return c.DBHost != "" }

func (c Config) RedisEnabled() bool { return c.RedisHost != "" }

func (c Config) KafkaEnabled() bool { return c.KafkaBroker != "" }

func InitLogger(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func MustInitPostgres(cfg Config) *sql.DB {
	connStr := "host=" + cfg.DBHost + " port=" + cfg.DBPort + " user=" + cfg.DBUser +
		" password=" + cfg.DBPassword + " dbname=" + cfg.DBName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err = db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(cfg Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	return client
}

func NewKafkaWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBroker),
		Topic:    cfg.KafkaOrdersTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
