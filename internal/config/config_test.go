package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "./db.json", cfg.Store.Path)
	assert.True(t, cfg.Sales.VerifyTotals)
	assert.False(t, cfg.Sales.StrictFilterOperators)
	assert.Equal(t, 32, cfg.Printer.Width)
	assert.Equal(t, "5s", cfg.Catalog.Timeout.String())
	require.NoError(t, cfg.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("STORE_DOCUMENT", "shop-1")
	t.Setenv("QUERY_STRICT_OPERATORS", "true")
	t.Setenv("SALES_VERIFY_TOTALS", "false")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "shop-1", cfg.Store.Document)
	assert.True(t, cfg.Sales.StrictFilterOperators)
	assert.False(t, cfg.Sales.VerifyTotals)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:     StoreConfig{Driver: StoreDriverFile, Path: "db.json", Document: "sales"},
			RateLimit: RateLimitConfig{Requests: 10, Duration: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: "unknown STORE_DRIVER"},
		{name: "file without path", mutate: func(c *Config) { c.Store.Path = "" }, wantErr: "STORE_PATH"},
		{name: "postgres without document", mutate: func(c *Config) {
			c.Store.Driver = StoreDriverPostgres
			c.Store.Document = ""
		}, wantErr: "STORE_DOCUMENT"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.Requests = 0 }, wantErr: "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", Name: "sales", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=sales port=5432 sslmode=disable TimeZone=UTC", db.DSN())
}
