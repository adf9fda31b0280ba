package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderBrapi = "brapi"
	ProviderYahoo = "yahoo"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3001"`

	Provider     string `envconfig:"QUOTE_PROVIDER" default:"brapi"`
	BrapiToken   string `envconfig:"BRAPI_TOKEN"`
	BrapiBaseURL string `envconfig:"BRAPI_BASE_URL" default:"https://brapi.dev/api"`
	YahooBaseURL string `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	IndexSymbol  string `envconfig:"INDEX_SYMBOL" default:"^BVSP"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"2"`

	StaticDir  string `envconfig:"STATIC_DIR" default:"static"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`
	TraceStdout bool   `envconfig:"TRACE_STDOUT" default:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.BrapiToken = strings.TrimSpace(cfg.BrapiToken)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderBrapi, ProviderYahoo:
	default:
		return fmt.Errorf("config: unknown QUOTE_PROVIDER %q", c.Provider)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: MAX_RETRIES must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}
