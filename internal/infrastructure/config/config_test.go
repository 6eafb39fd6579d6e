package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads; viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"GREETINGSMITH_APP_ENV", "GREETINGSMITH_APP_PORT",
		"GREETINGSMITH_UNLOCK_SECRET", "UNLOCK_JWT_SECRET",
		"GREETINGSMITH_UNLOCK_TTL", "GREETINGSMITH_UNLOCK_TTL_SECONDS", "UNLOCK_JWT_TTL_SECONDS",
		"GREETINGSMITH_STRIPE_SECRET_KEY", "STRIPE_SECRET_KEY",
		"GREETINGSMITH_STRIPE_PRICE_ID", "STRIPE_PRICE_ID_CARD",
		"GREETINGSMITH_STRIPE_UNIT_AMOUNT", "GREETINGSMITH_STRIPE_CURRENCY", "CURRENCY",
		"GREETINGSMITH_STRIPE_SUCCESS_URL", "STRIPE_SUCCESS_URL",
		"GREETINGSMITH_STRIPE_CANCEL_URL", "STRIPE_CANCEL_URL",
		"GREETINGSMITH_AI_PROVIDER", "GREETINGSMITH_AI_API_KEY", "GOOGLE_GEMINI_API_KEY",
		"GREETINGSMITH_UPLOAD_MAX_SIZE_MB", "MAX_UPLOAD_MB",
		"GREETINGSMITH_PDF_ENGINE", "GREETINGSMITH_HTTP_CORS_ALLOW_ORIGINS",
		"GREETINGSMITH_TELEMETRY_SAMPLING_RATIO", "GREETINGSMITH_TELEMETRY_LOGS_ENABLED",
		"GREETINGSMITH_PROFILING_ENABLED", "GREETINGSMITH_PROFILING_SERVER_ADDRESS",
		"GREETINGSMITH_PROFILING_PROFILE_TYPES",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "greetingsmith", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, DevelopmentUnlockSecret, cfg.Unlock.Secret)
	assert.Equal(t, 15*time.Minute, cfg.Unlock.TTL)
	assert.Equal(t, "greetingsmith_unlock", cfg.Unlock.Product)
	assert.Equal(t, "price_placeholder", cfg.Stripe.PriceID)
	assert.Equal(t, "DKK", cfg.Stripe.Currency)
	assert.Equal(t, 30*time.Minute, cfg.Stripe.SessionTTL)
	assert.Equal(t, 24*time.Hour, cfg.Stripe.MaxSessionAge)
	assert.True(t, cfg.Stripe.UnitAmount.IsZero())
	assert.Equal(t, "auto", cfg.AI.Provider)
	assert.Equal(t, 10, cfg.Upload.MaxSizeMB)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxUploadBytes())
	assert.ElementsMatch(t, []string{"jpeg", "jpg", "png", "webp"}, cfg.Upload.AllowedFormats)
	assert.Equal(t, "fpdf", cfg.PDF.Engine)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowOrigins)
	assert.Greater(t, cfg.HTTP.MaxBodySize, cfg.Upload.MaxUploadBytes())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.False(t, cfg.Telemetry.LogsEnabled)
	assert.False(t, cfg.Profiling.Enabled)
	assert.Equal(t, "greetingsmith", cfg.Profiling.ApplicationName)
	assert.Equal(t, []string{"cpu", "alloc_space", "inuse_space", "goroutines"}, cfg.Profiling.ProfileTypes)
}

func TestLoad_PrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GREETINGSMITH_APP_PORT", "9090")
	t.Setenv("GREETINGSMITH_UNLOCK_TTL", "5m")
	t.Setenv("GREETINGSMITH_STRIPE_UNIT_AMOUNT", "49.95")
	t.Setenv("GREETINGSMITH_PDF_ENGINE", "chromium")
	t.Setenv("GREETINGSMITH_AI_PROVIDER", "mock")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 5*time.Minute, cfg.Unlock.TTL)
	assert.True(t, decimal.RequireFromString("49.95").Equal(cfg.Stripe.UnitAmount))
	assert.Equal(t, "chromium", cfg.PDF.Engine)
	assert.Equal(t, "mock", cfg.AI.Provider)
}

func TestLoad_LegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_legacy")
	t.Setenv("STRIPE_PRICE_ID_CARD", "price_123")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "gm-key")
	t.Setenv("UNLOCK_JWT_SECRET", "legacy-secret")
	t.Setenv("UNLOCK_JWT_TTL_SECONDS", "120")
	t.Setenv("MAX_UPLOAD_MB", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk_test_legacy", cfg.Stripe.SecretKey)
	assert.Equal(t, "price_123", cfg.Stripe.PriceID)
	assert.Equal(t, "gm-key", cfg.AI.APIKey)
	assert.Equal(t, "legacy-secret", cfg.Unlock.Secret)
	assert.Equal(t, 2*time.Minute, cfg.Unlock.TTL)
	assert.Equal(t, 4, cfg.Upload.MaxSizeMB)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad unit amount", map[string]string{"GREETINGSMITH_STRIPE_UNIT_AMOUNT": "abc"}},
		{"unknown pdf engine", map[string]string{"GREETINGSMITH_PDF_ENGINE": "wkhtmltopdf"}},
		{"unknown ai provider", map[string]string{"GREETINGSMITH_AI_PROVIDER": "openai"}},
		{"gemini without key", map[string]string{"GREETINGSMITH_AI_PROVIDER": "gemini"}},
		{"sampling ratio out of range", map[string]string{"GREETINGSMITH_TELEMETRY_SAMPLING_RATIO": "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		cfg.Unlock.Secret = "0123456789abcdef0123456789abcdef"
		cfg.HTTP.CORSAllowOrigins = []string{"https://cards.example.com"}
		cfg.Stripe.SuccessURL = "https://cards.example.com/thanks?session_id={CHECKOUT_SESSION_ID}"
		cfg.Stripe.CancelURL = "https://cards.example.com/cancelled"
		applyDefaults(cfg)
		return cfg
	}

	require.NoError(t, base().validate())

	cfg := base()
	cfg.Unlock.Secret = DevelopmentUnlockSecret
	assert.ErrorContains(t, cfg.validate(), "unlock.secret")

	cfg = base()
	cfg.Unlock.Secret = "short"
	assert.ErrorContains(t, cfg.validate(), "32 characters")

	cfg = base()
	cfg.HTTP.CORSAllowOrigins = []string{"*"}
	assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")

	cfg = base()
	cfg.Stripe.CancelURL = "http://cards.example.com/cancelled"
	assert.ErrorContains(t, cfg.validate(), "stripe.cancel_url")
}

func TestApplyDefaults_ProductionKeepsCORSEmpty(t *testing.T) {
	cfg := &Config{App: AppConfig{Env: "production"}}
	applyDefaults(cfg)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestValidate_Profiling(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Profiling.Enabled = true
	assert.ErrorContains(t, cfg.validate(), "profiling.server_address")

	cfg.Profiling.ServerAddress = "http://pyroscope:4040"
	assert.NoError(t, cfg.validate())
}
