package rest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bibbank/rwa-lending/pkg/auth"
)

const (
	// HeaderIdempotencyKey carries the client's retry key on POST requests.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay marks a response served from the store.
	HeaderIdempotentReplay = "Idempotent-Replayed"

	idempotencyPrefix = "rwa:idem:v1:"
	// Held while the first request runs; a crash frees the key after this.
	provisionalLockTTL = 60 * time.Second
	maxKeyLength       = 128
)

type idempotencyEntry struct {
	InProgress bool   `json:"in_progress"`
	Code       int    `json:"code,omitempty"`
	Body       []byte `json:"body,omitempty"`
	BodySHA256 string `json:"body_sha256"`
}

// bodyRecorder tees the response so it can be stored for replay.
type bodyRecorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key the same caller already used with the same body. Reusing a
// key with a different body, or while the first request is still running,
// is a 409. Requests without the header pass through. Server errors are not
// stored so the client can retry.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodPost {
				return next(c)
			}
			idemKey := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				return next(c)
			}
			if len(idemKey) > maxKeyLength {
				return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key is too long")
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			bodyHash := hex.EncodeToString(sum[:])

			key := idempotencyKey(c, idemKey)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			acquired, err := storeEntry(ctx, rdb, key, idempotencyEntry{InProgress: true, BodySHA256: bodyHash}, provisionalLockTTL, true)
			if err != nil {
				logger.WarnContext(ctx, "idempotency store unavailable", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !acquired {
				return replay(ctx, c, rdb, key, bodyHash)
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// The request context may be done by now.
			saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(req.Context()), 2*time.Second)
			defer saveCancel()
			if rec.code >= http.StatusInternalServerError {
				if err := rdb.Del(saveCtx, key).Err(); err != nil {
					logger.WarnContext(saveCtx, "failed to release idempotency key", "error", err)
				}
				return nil
			}
			final := idempotencyEntry{Code: rec.code, Body: rec.buf.Bytes(), BodySHA256: bodyHash}
			if _, err := storeEntry(saveCtx, rdb, key, final, ttl, false); err != nil {
				logger.WarnContext(saveCtx, "failed to store idempotent response", "error", err)
			}
			return nil
		}
	}
}

// idempotencyKey scopes the client key to the caller and route.
func idempotencyKey(c echo.Context, clientKey string) string {
	caller := "anonymous"
	if claims, ok := auth.ClaimsFromContext(c.Request().Context()); ok {
		caller = claims.TenantID.String() + ":" + claims.Subject
	}
	return idempotencyPrefix + caller + ":" + c.Path() + ":" + c.Param("id") + ":" + clientKey
}

func replay(ctx context.Context, c echo.Context, rdb redis.Cmdable, key, bodyHash string) error {
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return echo.NewHTTPError(http.StatusConflict, "request is already in progress")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "idempotency store unavailable")
	}
	var cur idempotencyEntry
	if err := json.Unmarshal(raw, &cur); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "idempotency store unavailable")
	}
	if cur.BodySHA256 != bodyHash {
		return echo.NewHTTPError(http.StatusConflict, "Idempotency-Key reused with a different body")
	}
	if cur.InProgress {
		return echo.NewHTTPError(http.StatusConflict, "request is already in progress")
	}
	c.Response().Header().Set(HeaderIdempotentReplay, "true")
	return c.Blob(cur.Code, echo.MIMEApplicationJSONCharsetUTF8, cur.Body)
}

// storeEntry writes the entry, only if absent when nx is set.
func storeEntry(ctx context.Context, rdb redis.Cmdable, key string, e idempotencyEntry, ttl time.Duration, nx bool) (bool, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	if nx {
		return rdb.SetNX(ctx, key, payload, ttl).Result()
	}
	return true, rdb.Set(ctx, key, payload, ttl).Err()
}
