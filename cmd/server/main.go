package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cardapp "github.com/greetingsmith/backend/internal/application/card"
	paymentapp "github.com/greetingsmith/backend/internal/application/payment"
	"github.com/greetingsmith/backend/internal/infrastructure/ai"
	"github.com/greetingsmith/backend/internal/infrastructure/auth"
	"github.com/greetingsmith/backend/internal/infrastructure/cache"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"github.com/greetingsmith/backend/internal/infrastructure/logger"
	"github.com/greetingsmith/backend/internal/infrastructure/payment"
	"github.com/greetingsmith/backend/internal/infrastructure/printing"
	"github.com/greetingsmith/backend/internal/infrastructure/telemetry"
	"github.com/greetingsmith/backend/internal/interfaces/http/handler"
	"github.com/greetingsmith/backend/internal/interfaces/http/middleware"
	"github.com/greetingsmith/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: cfg.App.Name,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Bridge zap entries to the OTLP collector when log export is on
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		logCfg.Cores = []zapcore.Core{telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          log.Level(),
		})}
		if log, err = logger.New(logCfg); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Greetingsmith backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize profiling", zap.Error(err))
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Metrics.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Metrics.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	cardMetrics, err := telemetry.NewCardMetrics(telemetry.CardMetricsConfig{
		Meter:  meterProvider.Meter(telemetry.TracerName),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create card metrics", zap.Error(err))
	}

	// Infrastructure
	store := cache.NewStore(cfg.Redis, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache store", zap.Error(err))
		}
	}()

	generator, err := ai.NewGenerator(ctx, cfg.AI, log)
	if err != nil {
		log.Fatal("Failed to initialize generator", zap.Error(err))
	}

	renderer, err := printing.NewRenderer(cfg.PDF, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	gateway := payment.NewStripeGateway(cfg.Stripe, log)
	tokens := auth.NewUnlockTokenService(cfg.Unlock)

	// Application services
	generationService := cardapp.NewGenerationService(cardapp.GenerationServiceConfig{
		Generator: generator,
		Upload: cardapp.UploadPolicy{
			MaxSizeMB:      cfg.Upload.MaxSizeMB,
			AllowedFormats: cfg.Upload.AllowedFormats,
		},
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Metrics:        cardMetrics,
		Logger:         log,
	})
	exportService := cardapp.NewExportService(cardapp.ExportServiceConfig{
		Verifier: tokens,
		Renderer: renderer,
		Product:  cfg.Unlock.Product,
		Metrics:  cardMetrics,
		Logger:   log,
	})
	checkoutService := paymentapp.NewCheckoutService(paymentapp.CheckoutServiceConfig{
		Gateway:    gateway,
		Product:    cfg.Unlock.Product,
		SessionTTL: cfg.Stripe.SessionTTL,
		Metrics:    cardMetrics,
		Logger:     log,
	})
	verificationService := paymentapp.NewVerificationService(paymentapp.VerificationServiceConfig{
		Gateway:       gateway,
		Signer:        tokens,
		Product:       cfg.Unlock.Product,
		MaxSessionAge: cfg.Stripe.MaxSessionAge,
		Metrics:       cardMetrics,
		Logger:        log,
	})
	webhookService := paymentapp.NewWebhookService(paymentapp.WebhookServiceConfig{
		Gateway: gateway,
		Product: cfg.Unlock.Product,
		Dedup:   store,
		Metrics: cardMetrics,
		Logger:  log,
	})

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server span, request id attribute, error status
	// 5. Metrics - HTTP server instruments
	// 6. Profiling - pprof labels per route
	// 7. Security - Add security headers
	// 8. CORS - Handle cross-origin requests
	// 9. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Metrics.Enabled,
	}))
	profilingConfig := middleware.DefaultProfilingConfig()
	profilingConfig.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingConfig))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside the API prefix)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion,
		generationService.GeneratorName, exportService.EngineName)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	var generationLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Store:  store,
			Limit:  cfg.HTTP.RateLimitRequests,
			Window: cfg.HTTP.RateLimitWindow,
			Scope:  "api",
			Logger: log,
		}))
		generationLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Store:  store,
			Limit:  cfg.HTTP.GenerationRateLimitRequests,
			Window: cfg.HTTP.RateLimitWindow,
			Scope:  "generation",
			Logger: log,
		})
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Int("generation_requests", cfg.HTTP.GenerationRateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.RegisterAPI(r, router.Handlers{
		Card:    handler.NewCardHandler(generationService),
		Export:  handler.NewExportHandler(exportService),
		Payment: handler.NewPaymentHandler(checkoutService, verificationService),
		Webhook: handler.NewStripeWebhookHandler(webhookService),
	}, generationLimit)
	r.Setup()

	log.Info("Backends selected",
		zap.String("generator", generationService.GeneratorName()),
		zap.String("pdf_engine", exportService.EngineName()),
		zap.Bool("payments_configured", gateway.Configured()),
	)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}
}

