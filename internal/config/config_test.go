package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 8*time.Second, cfg.ExternalTimeout)
	assert.Equal(t, "online_orders:changes", cfg.OrderChannel)
	assert.True(t, cfg.PricesIncludeTax)

	settings, err := cfg.Pricing()
	require.NoError(t, err)
	assert.Equal(t, "0.18", settings.TaxRate.String())
}

func TestLoadFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TAX_RATE", "0.10")
	t.Setenv("PRICES_INCLUDE_TAX", "false")
	t.Setenv("STORE_TIMEOUT", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	settings, err := cfg.Pricing()
	require.NoError(t, err)
	assert.Equal(t, "0.1", settings.TaxRate.String())
	assert.False(t, settings.PricesIncludeTax)
}

func TestPricing_BadRate(t *testing.T) {
	_, err := (&Config{TaxRate: "abc"}).Pricing()
	assert.Error(t, err)
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://a.test ,,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
	assert.Empty(t, (&Config{}).AllowedOrigins())
}
