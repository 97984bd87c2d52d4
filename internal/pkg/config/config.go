package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Telegram TelegramConfig
	Team     TeamConfig
	Throttle ThrottleConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type TelegramConfig struct {
	BotToken       string        `env:"BOT_TOKEN, required"`
	InitDataMaxAge time.Duration `env:"INIT_DATA_MAX_AGE, default=24h"`
	AdminIDs       []int64       `env:"ADMIN_IDS"`
}

type TeamConfig struct {
	// InviteTTL of zero keeps invite codes valid until redeemed.
	InviteTTL time.Duration `env:"INVITE_TTL, default=0s"`
}

type ThrottleConfig struct {
	Rate   int           `env:"THROTTLE_RATE,   default=5"`
	Period time.Duration `env:"THROTTLE_PERIOD, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=mystom"`
}

type RedisConfig struct {
	// Addr empty switches the throttle to an in-process limiter.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return errors.New("BOT_TOKEN is empty")
	}
	if c.Telegram.InitDataMaxAge <= 0 {
		return errors.New("INIT_DATA_MAX_AGE must be positive")
	}
	if c.Throttle.Rate <= 0 || c.Throttle.Period <= 0 {
		return errors.New("THROTTLE_RATE and THROTTLE_PERIOD must be positive")
	}
	if c.Team.InviteTTL < 0 {
		return errors.New("INVITE_TTL must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the service runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// MaskedBotToken is safe to log: the bot id and the last four characters.
func (c *Config) MaskedBotToken() string {
	return MaskToken(c.Telegram.BotToken)
}

func MaskToken(token string) string {
	id, secret, ok := strings.Cut(token, ":")
	if !ok || len(secret) <= 4 {
		return "****"
	}
	return id + ":****" + secret[len(secret)-4:]
}
