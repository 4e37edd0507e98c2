// Package config loads service configuration from the environment so main
// stays lean. Defaults match the observed client behavior: a 60 second
// submission cooldown and at most 10 pending submissions per user.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr string `env:"UDONMAP_ADDR" env-default:":8080"`

	JWTSigningKey string `env:"UDONMAP_JWT_SIGNING_KEY" env-default:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"UDONMAP_JWT_ISSUER" env-default:"udonmap"`
	JWTAudience   string `env:"UDONMAP_JWT_AUDIENCE" env-default:"udonmap-api"`

	// SubmitCooldown is the minimum interval between accepted submissions
	// from one device. Advisory only; store-side rules remain authoritative.
	SubmitCooldown time.Duration `env:"UDONMAP_SUBMIT_COOLDOWN" env-default:"60s"`

	// PendingLimit caps simultaneously pending submissions per user.
	PendingLimit int `env:"UDONMAP_PENDING_LIMIT" env-default:"10"`

	// PostgresDSN enables the postgres-backed stores when set; the service
	// falls back to in-memory stores otherwise.
	PostgresDSN string `env:"UDONMAP_POSTGRES_DSN" env-default:""`

	Redis RedisConfig

	// Kafka audit publishing; disabled when no brokers are configured.
	KafkaBrokers    string `env:"UDONMAP_KAFKA_BROKERS" env-default:""`
	KafkaAuditTopic string `env:"UDONMAP_KAFKA_AUDIT_TOPIC" env-default:"udonmap.audit"`

	// Global request throttle for the HTTP surface.
	ThrottleRPS   float64 `env:"UDONMAP_THROTTLE_RPS" env-default:"50"`
	ThrottleBurst int     `env:"UDONMAP_THROTTLE_BURST" env-default:"100"`

	// FavoriteWriteTimeout bounds a favorite toggle's remote write; on
	// expiry the optimistic local flip is rolled back like any failure.
	FavoriteWriteTimeout time.Duration `env:"UDONMAP_FAVORITE_WRITE_TIMEOUT" env-default:"5s"`

	// FavoritePollInterval drives the postgres favorites subscription.
	FavoritePollInterval time.Duration `env:"UDONMAP_FAVORITE_POLL_INTERVAL" env-default:"2s"`
}

type RedisConfig struct {
	URL          string        `env:"UDONMAP_REDIS_URL" env-default:""`
	PoolSize     int           `env:"UDONMAP_REDIS_POOL_SIZE" env-default:"10"`
	MinIdleConns int           `env:"UDONMAP_REDIS_MIN_IDLE_CONNS" env-default:"2"`
	DialTimeout  time.Duration `env:"UDONMAP_REDIS_DIAL_TIMEOUT" env-default:"5s"`
	ReadTimeout  time.Duration `env:"UDONMAP_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout time.Duration `env:"UDONMAP_REDIS_WRITE_TIMEOUT" env-default:"3s"`
}

// FromEnv reads configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
