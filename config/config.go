package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseURL      string `env:"DB_URL,required"`
	RedisAddr        string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RateLimitBackend string `env:"RATE_LIMIT_BACKEND" envDefault:"postgres"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	RateLimit RateLimitConfig
	Mail      MailConfig
}

// RateLimitConfig is shared by every protected endpoint; the window and
// threshold apply per (ip, login, endpoint) key, not globally.
type RateLimitConfig struct {
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10s"`
	MaxAttempts int           `env:"RATE_LIMIT_MAX_ATTEMPTS" envDefault:"5"`
}

type MailConfig struct {
	Enabled     bool   `env:"SMTP_ENABLED" envDefault:"false"`
	Host        string `env:"SMTP_HOST"`
	Port        int    `env:"SMTP_PORT" envDefault:"587"`
	Username    string `env:"SMTP_USERNAME"`
	Password    string `env:"SMTP_PASSWORD"`
	FromAddress string `env:"SMTP_FROM"`
	BaseURL     string `env:"CONFIRMATION_BASE_URL" envDefault:"http://localhost:8080"`
}

// Load reads an optional .env file and the process environment into an
// immutable Config. Services receive it once at construction; there are no
// ambient lookups after startup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
