// Package config loads service settings from a YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env       string    `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel  string    `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTP      HTTP      `yaml:"http"`
	Postgres  Postgres  `yaml:"postgres"`
	Auth      Auth      `yaml:"auth"`
	Catalog   Catalog   `yaml:"catalog"`
	Redis     Redis     `yaml:"redis"`
	Kafka     Kafka     `yaml:"kafka"`
	Telemetry Telemetry `yaml:"telemetry"`
	Store     Store     `yaml:"store"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type Postgres struct {
	URL      string `yaml:"url" env:"DB_URL" env-required:"true"`
	MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	MinConns int32  `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"2"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
}

// Catalog points product lookups at a remote catalog service instead of the products table.
type Catalog struct {
	URL     string        `yaml:"url" env:"CATALOG_URL"`
	Timeout time.Duration `yaml:"timeout" env:"CATALOG_TIMEOUT" env-default:"2s"`
}

// Redis enables the product lookup cache when Addr is set.
type Redis struct {
	Addr string        `yaml:"addr" env:"REDIS_ADDR"`
	TTL  time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"5m"`
}

// Kafka enables order event publishing when Brokers is not empty.
type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"storefront.orders"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
}

type Store struct {
	Currency string `yaml:"currency" env:"STORE_CURRENCY" env-default:"USD"`
}

// CurrencyUnit parses Store.Currency.
func (s Store) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(s.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", s.Currency, err)
	}
	return unit, nil
}

// Load reads an optional .env file, then the YAML file at CONFIG_PATH
// (./config/local.yaml by default). Environment variables win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	return LoadFile(configPath)
}

func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file[%s]: %w", path, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cleanenv.ReadConfig: %w", err)
	}

	if _, err := cfg.Store.CurrencyUnit(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
