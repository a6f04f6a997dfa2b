package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	ListenAddr         string        `env:"LISTEN_ADDR" envDefault:":8080"`
	Debug              bool          `env:"DEBUG" envDefault:"false"`
	APIBaseURL         string        `env:"API_BASE_URL,required"`
	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`

	RedisAddr     string        `env:"REDIS_ADDR,required"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"24h"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,required"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"2m"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	OperatorChatID int64  `env:"OPERATOR_CHAT_ID"`

	PollInterval       time.Duration `env:"POLL_INTERVAL" envDefault:"3s"`
	InitialLoadingDamp time.Duration `env:"INITIAL_LOADING_DAMP" envDefault:"2s"`
	AuthRedirectDelay  time.Duration `env:"AUTH_REDIRECT_DELAY" envDefault:"2s"`

	SignInRoute       string `env:"SIGN_IN_ROUTE" envDefault:"/signin"`
	OrderConfirmRoute string `env:"ORDER_CONFIRM_ROUTE" envDefault:"/order-confirmation/%s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}

	return &cfg, nil
}
