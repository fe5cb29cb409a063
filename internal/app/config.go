package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "storefront"

// Config описывает настройки приложения. Значения читаются из переменных
// окружения с префиксом STOREFRONT_ (например STOREFRONT_HTTP_ADDR).
type Config struct {
	HTTPAddr    string `split_words:"true" default:":8080"`
	MetricsAddr string `split_words:"true" default:":9090"`

	// MongoURI пустой — заказы живут в памяти (режим разработки).
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `split_words:"true" default:"storefront"`

	// PostgresDSN пустой — состояние лимитера локально для инстанса.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// KafkaBrokers пустой — события жизненного цикла не публикуются.
	KafkaBrokers []string `split_words:"true"`

	// AdminToken пустой — админские ручки недоступны.
	AdminToken string `split_words:"true"`

	RateLimitWindow        time.Duration `split_words:"true" default:"1m"`
	RateLimitMaxPerWindow  int           `split_words:"true" default:"10"`
	RateLimitBlockDuration time.Duration `split_words:"true" default:"24h"`

	OutboxPollInterval time.Duration `split_words:"true" default:"2s"`
}

// ReadConfig читает конфигурацию из окружения.
func ReadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (без окружения).
func DefaultConfig() Config {
	return Config{
		HTTPAddr:               ":8080",
		MetricsAddr:            ":9090",
		MongoDatabase:          "storefront",
		RateLimitWindow:        time.Minute,
		RateLimitMaxPerWindow:  10,
		RateLimitBlockDuration: 24 * time.Hour,
		OutboxPollInterval:     2 * time.Second,
	}
}
