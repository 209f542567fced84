package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/bibbank/rwa-lending/pkg/auth"
)

// RouterConfig wires the HTTP surface. Idempotency and Metrics are optional.
type RouterConfig struct {
	Quotes         *QuoteHandler
	Health         *HealthHandler
	JWT            *auth.JWTService
	Idempotency    redis.Cmdable
	IdempotencyTTL time.Duration
	Metrics        http.Handler
	Logger         *slog.Logger
}

// NewRouter builds the Echo instance serving probes, metrics and /v1.
func NewRouter(cfg RouterConfig) *echo.Echo {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz" || c.Path() == "/readyz" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}))

	e.GET("/healthz", cfg.Health.Liveness)
	e.GET("/readyz", cfg.Health.Readiness)
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}

	v1 := e.Group("/v1", auth.EchoMiddleware(cfg.JWT), middleware.BodyLimit("64K"))
	if cfg.Idempotency != nil {
		v1.Use(Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, logger))
	}
	v1.POST("/quotes", cfg.Quotes.RequestQuote)
	v1.GET("/quotes", cfg.Quotes.ListQuotes)
	v1.GET("/quotes/:id", cfg.Quotes.GetQuote)
	v1.POST("/quotes/:id/accept", cfg.Quotes.AcceptQuote)
	v1.POST("/coverage/price", cfg.Quotes.PriceCoverage)

	return e
}

// errorHandler renders every error as {"error": message}.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := http.StatusInternalServerError, "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else {
			logger.ErrorContext(c.Request().Context(), "unhandled http error", "error", err)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
