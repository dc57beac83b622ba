package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	App       AppConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
	Printer   PrinterConfig
	Sales     SalesConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

// StoreConfig selects where the sales document lives
type StoreConfig struct {
	Driver   string // "file" or "postgres"
	Path     string // JSON file for the file driver
	Document string // row name for the postgres driver
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// AuthConfig holds the shared secret used to verify bearer tokens issued by
// the identity provider. Verification is off when Secret is empty.
type AuthConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// CatalogConfig points at the CMS owning products. Product checks are
// skipped when URL is empty.
type CatalogConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	Width     int
	StoreName string
}

type SalesConfig struct {
	VerifyTotals          bool
	StrictFilterOperators bool
}

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "salesbook-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("STORE_DRIVER", StoreDriverFile)
	v.SetDefault("STORE_PATH", "./db.json")
	v.SetDefault("STORE_DOCUMENT", "sales")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "salesbook")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_ISSUER", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("CATALOG_URL", "")
	v.SetDefault("CATALOG_TOKEN", "")
	v.SetDefault("CATALOG_TIMEOUT_SECONDS", 5)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_WIDTH", 32)
	v.SetDefault("PRINTER_STORE_NAME", "Salesbook Store")
	v.SetDefault("SALES_VERIFY_TOTALS", true)
	v.SetDefault("QUERY_STRICT_OPERATORS", false)
}

// Load reads .env (when present) and the environment
func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		zap.L().Warn(".env file not found, using environment variables", zap.Error(err))
	}

	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Store: StoreConfig{
			Driver:   v.GetString("STORE_DRIVER"),
			Path:     v.GetString("STORE_PATH"),
			Document: v.GetString("STORE_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		Auth: AuthConfig{
			Secret: v.GetString("AUTH_JWT_SECRET"),
			Issuer: v.GetString("AUTH_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Catalog: CatalogConfig{
			URL:     v.GetString("CATALOG_URL"),
			Token:   v.GetString("CATALOG_TOKEN"),
			Timeout: time.Duration(v.GetInt("CATALOG_TIMEOUT_SECONDS")) * time.Second,
		},
		Printer: PrinterConfig{
			Type:      v.GetString("PRINTER_TYPE"),
			USBPath:   v.GetString("PRINTER_USB_PATH"),
			Address:   v.GetString("PRINTER_ADDRESS"),
			Width:     v.GetInt("PRINTER_WIDTH"),
			StoreName: v.GetString("PRINTER_STORE_NAME"),
		},
		Sales: SalesConfig{
			VerifyTotals:          v.GetBool("SALES_VERIFY_TOTALS"),
			StrictFilterOperators: v.GetBool("QUERY_STRICT_OPERATORS"),
		},
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required for the %s store", StoreDriverFile)
		}
	case StoreDriverPostgres:
		if c.Store.Document == "" {
			return fmt.Errorf("STORE_DOCUMENT is required for the %s store", StoreDriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (use %s or %s)", c.Store.Driver, StoreDriverFile, StoreDriverPostgres)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Duration <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_DURATION must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
