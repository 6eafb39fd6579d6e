package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DevelopmentUnlockSecret is the signing secret used when none is configured.
// Production configuration rejects it.
const DevelopmentUnlockSecret = "fallback-secret-for-dev"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
	Profiling ProfilingConfig
	Unlock    UnlockConfig
	Stripe    StripeConfig
	AI        AIConfig
	Upload    UploadConfig
	PDF       PDFConfig
	Redis     RedisConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RequestTimeout    time.Duration // upper bound for outbound AI/payment calls per request
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// Generation endpoints call paid model APIs and get a tighter budget.
	GenerationRateLimitRequests int
	CORSAllowOrigins            []string
	CORSAllowMethods            []string
	CORSAllowHeaders            []string
	TrustedProxies              []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// TelemetryConfig holds OpenTelemetry tracing configuration. LogsEnabled
// additionally ships zap entries to the same collector.
type TelemetryConfig struct {
	Enabled           bool
	LogsEnabled       bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// MetricsConfig holds OpenTelemetry metrics configuration
type MetricsConfig struct {
	Enabled        bool
	ExportInterval time.Duration
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string // cpu, alloc_space, inuse_space, goroutines, ...
	// SpanProfiles links CPU samples to trace spans; needs tracing enabled.
	SpanProfiles bool
}

// UnlockConfig holds unlock token settings
type UnlockConfig struct {
	Secret  string
	TTL     time.Duration
	Product string
}

// StripeConfig holds hosted checkout settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	// UnitAmount is used for inline price data when no PriceID is configured.
	UnitAmount    decimal.Decimal
	Currency      string
	ProductName   string
	SuccessURL    string
	CancelURL     string
	SessionTTL    time.Duration
	MaxSessionAge time.Duration
}

// AIConfig holds generation backend settings
type AIConfig struct {
	Provider    string // auto, gemini, mock
	APIKey      string
	TextModel   string
	ImageModel  string
	Temperature float64
}

// UploadConfig holds photo upload limits
type UploadConfig struct {
	MaxSizeMB      int
	AllowedFormats []string
}

// PDFConfig selects and tunes the PDF engine
type PDFConfig struct {
	Engine          string // fpdf, chromium
	ChromeRemoteURL string
	ChromeTimeout   time.Duration
	ChromeNoSandbox bool
}

// RedisConfig holds Redis connection settings for shared rate-limit counters
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MaxUploadBytes returns the upload limit in bytes
func (u UploadConfig) MaxUploadBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with GREETINGSMITH_ prefix (e.g., GREETINGSMITH_STRIPE_SECRET_KEY)
// 2. Legacy unprefixed variables (STRIPE_SECRET_KEY, GOOGLE_GEMINI_API_KEY, ...)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/greetingsmith")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("GREETINGSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("http.rate_limit_enabled", true)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	unitAmount, err := parseDecimal(v.GetString("stripe.unit_amount"))
	if err != nil {
		return nil, fmt.Errorf("stripe.unit_amount: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:                 v.GetDuration("http.read_timeout"),
			WriteTimeout:                v.GetDuration("http.write_timeout"),
			IdleTimeout:                 v.GetDuration("http.idle_timeout"),
			RequestTimeout:              v.GetDuration("http.request_timeout"),
			MaxHeaderBytes:              v.GetInt("http.max_header_bytes"),
			MaxBodySize:                 v.GetInt64("http.max_body_size"),
			RateLimitEnabled:            v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:           v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:             v.GetDuration("http.rate_limit_window"),
			GenerationRateLimitRequests: v.GetInt("http.generation_rate_limit_requests"),
			CORSAllowOrigins:            v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:            v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:            v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:              v.GetStringSlice("http.trusted_proxies"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Metrics: MetricsConfig{
			Enabled:        v.GetBool("metrics.enabled"),
			ExportInterval: v.GetDuration("metrics.export_interval"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			ApplicationName:   v.GetString("profiling.application_name"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
			ProfileTypes:      v.GetStringSlice("profiling.profile_types"),
			SpanProfiles:      v.GetBool("profiling.span_profiles"),
		},
		Unlock: UnlockConfig{
			Secret:  v.GetString("unlock.secret"),
			TTL:     v.GetDuration("unlock.ttl"),
			Product: v.GetString("unlock.product"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			PriceID:       v.GetString("stripe.price_id"),
			UnitAmount:    unitAmount,
			Currency:      v.GetString("stripe.currency"),
			ProductName:   v.GetString("stripe.product_name"),
			SuccessURL:    v.GetString("stripe.success_url"),
			CancelURL:     v.GetString("stripe.cancel_url"),
			SessionTTL:    v.GetDuration("stripe.session_ttl"),
			MaxSessionAge: v.GetDuration("stripe.max_session_age"),
		},
		AI: AIConfig{
			Provider:    v.GetString("ai.provider"),
			APIKey:      v.GetString("ai.api_key"),
			TextModel:   v.GetString("ai.text_model"),
			ImageModel:  v.GetString("ai.image_model"),
			Temperature: v.GetFloat64("ai.temperature"),
		},
		Upload: UploadConfig{
			MaxSizeMB:      v.GetInt("upload.max_size_mb"),
			AllowedFormats: v.GetStringSlice("upload.allowed_formats"),
		},
		PDF: PDFConfig{
			Engine:          v.GetString("pdf.engine"),
			ChromeRemoteURL: v.GetString("pdf.chrome_remote_url"),
			ChromeTimeout:   v.GetDuration("pdf.chrome_timeout"),
			ChromeNoSandbox: v.GetBool("pdf.chrome_no_sandbox"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	// UNLOCK_JWT_TTL_SECONDS is an integer number of seconds, not a duration string.
	if cfg.Unlock.TTL == 0 {
		if secs := v.GetInt("unlock.ttl_seconds"); secs > 0 {
			cfg.Unlock.TTL = time.Duration(secs) * time.Second
		}
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindLegacyEnv keeps the unprefixed variable names of earlier deployments working.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string][]string{
		"ai.api_key":            {"GREETINGSMITH_AI_API_KEY", "GOOGLE_GEMINI_API_KEY"},
		"stripe.secret_key":     {"GREETINGSMITH_STRIPE_SECRET_KEY", "STRIPE_SECRET_KEY"},
		"stripe.webhook_secret": {"GREETINGSMITH_STRIPE_WEBHOOK_SECRET", "STRIPE_WEBHOOK_SECRET"},
		"stripe.price_id":       {"GREETINGSMITH_STRIPE_PRICE_ID", "STRIPE_PRICE_ID_CARD"},
		"stripe.success_url":    {"GREETINGSMITH_STRIPE_SUCCESS_URL", "STRIPE_SUCCESS_URL"},
		"stripe.cancel_url":     {"GREETINGSMITH_STRIPE_CANCEL_URL", "STRIPE_CANCEL_URL"},
		"stripe.currency":       {"GREETINGSMITH_STRIPE_CURRENCY", "CURRENCY"},
		"unlock.secret":         {"GREETINGSMITH_UNLOCK_SECRET", "UNLOCK_JWT_SECRET"},
		"unlock.ttl_seconds":    {"GREETINGSMITH_UNLOCK_TTL_SECONDS", "UNLOCK_JWT_TTL_SECONDS"},
		"upload.max_size_mb":    {"GREETINGSMITH_UPLOAD_MAX_SIZE_MB", "MAX_UPLOAD_MB"},
	}
	for key, names := range legacy {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(s))
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "greetingsmith"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		// Headroom above the upload limit so oversized photos get a 400 from
		// the handler instead of a bare 413.
		cfg.HTTP.MaxBodySize = 32 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 120
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.GenerationRateLimitRequests == 0 {
		cfg.HTTP.GenerationRateLimitRequests = 20
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 && cfg.App.Env != "production" {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Metrics.ExportInterval == 0 {
		cfg.Metrics.ExportInterval = 60 * time.Second
	}
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.App.Name
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}

	if cfg.Unlock.Secret == "" {
		cfg.Unlock.Secret = DevelopmentUnlockSecret
	}
	if cfg.Unlock.TTL == 0 {
		cfg.Unlock.TTL = 15 * time.Minute
	}
	if cfg.Unlock.Product == "" {
		cfg.Unlock.Product = "greetingsmith_unlock"
	}

	if cfg.Stripe.PriceID == "" {
		cfg.Stripe.PriceID = "price_placeholder"
	}
	if cfg.Stripe.Currency == "" {
		cfg.Stripe.Currency = "DKK"
	}
	if cfg.Stripe.ProductName == "" {
		cfg.Stripe.ProductName = "Greeting card PDF"
	}
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = "http://localhost:3000/thanks?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = "http://localhost:3000/cancelled"
	}
	if cfg.Stripe.SessionTTL == 0 {
		cfg.Stripe.SessionTTL = 30 * time.Minute
	}
	if cfg.Stripe.MaxSessionAge == 0 {
		cfg.Stripe.MaxSessionAge = 24 * time.Hour
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "auto"
	}
	if cfg.AI.TextModel == "" {
		cfg.AI.TextModel = "gemini-2.0-flash"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "gemini-2.0-flash-preview-image-generation"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.8
	}

	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = 10
	}
	if len(cfg.Upload.AllowedFormats) == 0 {
		cfg.Upload.AllowedFormats = []string{"jpeg", "jpg", "png", "webp"}
	}

	if cfg.PDF.Engine == "" {
		cfg.PDF.Engine = "fpdf"
	}
	if cfg.PDF.ChromeTimeout == 0 {
		cfg.PDF.ChromeTimeout = 30 * time.Second
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}
	if c.Unlock.TTL < 0 {
		return fmt.Errorf("unlock.ttl must be positive")
	}
	if c.Upload.MaxSizeMB < 0 {
		return fmt.Errorf("upload.max_size_mb must be positive")
	}
	if c.Stripe.UnitAmount.IsNegative() {
		return fmt.Errorf("stripe.unit_amount cannot be negative")
	}
	switch c.PDF.Engine {
	case "fpdf", "chromium":
	default:
		return fmt.Errorf("pdf.engine must be fpdf or chromium, got %q", c.PDF.Engine)
	}
	switch c.AI.Provider {
	case "auto", "gemini", "mock":
	default:
		return fmt.Errorf("ai.provider must be auto, gemini or mock, got %q", c.AI.Provider)
	}
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.provider is gemini")
	}

	if c.App.Env == "production" {
		if c.Unlock.Secret == DevelopmentUnlockSecret {
			return fmt.Errorf("unlock.secret must be set in production")
		}
		if len(c.Unlock.Secret) < 32 {
			return fmt.Errorf("unlock.secret must be at least 32 characters in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		for name, raw := range map[string]string{
			"stripe.success_url": c.Stripe.SuccessURL,
			"stripe.cancel_url":  c.Stripe.CancelURL,
		} {
			u, err := url.Parse(raw)
			if err != nil || u.Scheme != "https" {
				return fmt.Errorf("%s must be an https URL in production", name)
			}
		}
	}

	return nil
}
