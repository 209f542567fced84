package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bibbank/rwa-lending/internal/application/usecase"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/internal/domain/service"
	"github.com/bibbank/rwa-lending/internal/infrastructure/adapter"
	"github.com/bibbank/rwa-lending/internal/infrastructure/cache"
	"github.com/bibbank/rwa-lending/internal/infrastructure/config"
	"github.com/bibbank/rwa-lending/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/rwa-lending/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/rwa-lending/internal/presentation/grpc"
	"github.com/bibbank/rwa-lending/internal/presentation/rest"
	"github.com/bibbank/rwa-lending/pkg/auth"
	pkgkafka "github.com/bibbank/rwa-lending/pkg/kafka"
	"github.com/bibbank/rwa-lending/pkg/money"
	"github.com/bibbank/rwa-lending/pkg/observability"
	pkgpostgres "github.com/bibbank/rwa-lending/pkg/postgres"
	"github.com/bibbank/rwa-lending/pkg/tlsutil"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("rwa-pricing-service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("rwa-pricing-service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("starting rwa-pricing-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Telemetry.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	quoteMetrics, err := observability.NewQuoteMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("init quote metrics: %w", err)
	}

	// Database.
	pool, err := openDatabase(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Redis: quote cache and idempotency store, both optional.
	var (
		rdb        *redis.Client
		quoteCache port.QuoteCache
	)
	if cfg.Redis.Addr != "" {
		rdb, err = cache.OpenRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis unavailable, quote cache and idempotency disabled", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
			quoteCache = cache.NewRedisQuoteCache(rdb, cfg.Redis.TTL)
		}
	}

	// Kafka.
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
		SASLEnabled:   cfg.Kafka.SASLUsername != "",
		TLS:           cfg.Kafka.TLS,
	}
	producer, err := pkgkafka.NewProducer(kafkaCfg)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()
	publisher := kafka.NewQuoteEventPublisher(producer, cfg.Kafka.Topic, logger)

	// Collateral and credit adapters.
	currency, err := money.NewCurrency(cfg.Quote.Currency)
	if err != nil {
		return fmt.Errorf("QUOTE_CURRENCY: %w", err)
	}
	catalog := adapter.NewStaticAssetCatalog(adapter.NewStubAssetCatalog(currency))
	if cfg.Kafka.AssetTopic != "" {
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.AssetTopic,
			kafka.NewAssetValuationHandler(catalog, logger), logger)
		if err != nil {
			return fmt.Errorf("create asset valuation consumer: %w", err)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("asset valuation consumer stopped", "error", err)
			}
		}()
	}

	bureauCfg := adapter.DefaultCreditBureauConfig()
	bureauCfg.MaxRetries = cfg.CreditBureau.MaxRetries
	var bureauClient adapter.HTTPClient
	if cfg.CreditBureau.BaseURL != "" {
		bureauClient = adapter.NewBureauHTTPClient(cfg.CreditBureau.BaseURL, cfg.CreditBureau.APIKey, cfg.CreditBureau.Timeout, nil)
	} else {
		logger.Warn("CREDIT_BUREAU_URL not set, using simulated credit scores")
	}
	credit := adapter.NewCreditBureauAdapter(bureauCfg, bureauClient)

	// Use cases.
	quoteRepo := pgRepo.NewQuoteRepo(pool)
	engine := service.NewEngine()
	useCases := usecase.Set{
		RequestQuote: usecase.NewRequestQuoteUseCase(
			quoteRepo, publisher, catalog, credit, engine,
			quoteCache, quoteMetrics, logger, cfg.Quote.Validity,
		),
		GetQuote:      usecase.NewGetQuoteUseCase(quoteRepo, publisher, logger),
		ListQuotes:    usecase.NewListQuotesUseCase(quoteRepo),
		AcceptQuote:   usecase.NewAcceptQuoteUseCase(quoteRepo, publisher, logger),
		PriceCoverage: usecase.NewPriceCoverageUseCase(engine),
	}

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	var tlsCfg *tls.Config
	if cfg.TLSCertFile != "" {
		if tlsCfg, err = tlsutil.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil {
			return err
		}
	}

	// gRPC server.
	grpcServer := grpcPresentation.NewServer(grpcPresentation.ServerConfig{
		ServiceName: cfg.ServiceName,
		Reflection:  cfg.GRPCReflection,
		TLS:         tlsCfg,
	}, grpcPresentation.NewPricingHandler(useCases, logger), jwtSvc, logger)

	// HTTP server.
	checks := map[string]rest.Checker{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}
	routerCfg := rest.RouterConfig{
		Quotes:  rest.NewQuoteHandler(useCases, logger),
		JWT:     jwtSvc,
		Metrics: metricsHandler,
		Logger:  logger,
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		routerCfg.Idempotency = rdb
		routerCfg.IdempotencyTTL = cfg.Redis.IdempotencyTTL
	}
	routerCfg.Health = rest.NewHealthHandler(cfg.ServiceName, checks)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.NewRouter(routerCfg),
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server starting", "addr", httpServer.Addr, "tls", tlsCfg != nil)
		var err error
		if tlsCfg != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	return serveErr
}

func openDatabase(ctx context.Context, db config.DBConfig) (*pgxpool.Pool, error) {
	pgCfg := pkgpostgres.Config{
		Host:     db.Host,
		Port:     db.Port,
		User:     db.User,
		Password: db.Password,
		Database: db.Name,
		SSLMode:  db.SSLMode,
		MaxConns: db.MaxConns,
		MinConns: db.MinConns,
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return pool, nil
}

// newJWTService builds a validation-only JWT service, preferring the
// gateway's public key over a shared secret.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer, Leeway: 30 * time.Second}
	switch {
	case cfg.PublicKeyPEM != "":
		jwtCfg.PublicKeyPEM = cfg.PublicKeyPEM
	case cfg.PublicKeyFile != "":
		key, err := auth.LoadKeyFromFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = key
	default:
		jwtCfg.Secret = cfg.Secret
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("init JWT service: %w", err)
	}
	return svc, nil
}
