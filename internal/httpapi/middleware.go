package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/metrics"
	"github.com/Rinde17/investerra-app/internal/ratelimit"
	"github.com/Rinde17/investerra-app/internal/service"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderOwnerID   = "X-Owner-ID"

	ctxRequestID = "request_id"
	ctxOwnerID   = "owner_id"

	surface = "http"
)

// requestID keeps a caller supplied id when it parses as a UUID.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in http handler",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(ctxRequestID)),
				)
				abortError(c, http.StatusInternalServerError, "internal", "internal server error")
			}
		}()
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics" {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString(ctxRequestID)),
		}
		if owner, ok := c.Get(ctxOwnerID); ok {
			fields = append(fields, zap.Int64("owner_id", owner.(int64)))
		}

		switch {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

func instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.IncRequestsInFlight()
		start := time.Now()
		c.Next()
		m.DecRequestsInFlight()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(surface, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// ownerAuth resolves X-Owner-ID to an existing user. There is no
// authentication beyond this: the API is meant to sit behind a gateway.
func ownerAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(HeaderOwnerID), 10, 64)
		if err != nil || id <= 0 {
			abortError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid "+HeaderOwnerID+" header")
			return
		}

		if users != nil {
			if _, err := users.Get(c.Request.Context(), id); err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					abortError(c, http.StatusUnauthorized, "unauthorized", "unknown owner")
					return
				}
				abortError(c, http.StatusInternalServerError, "internal", "internal server error")
				return
			}
		}

		c.Set(ctxOwnerID, id)
		c.Next()
	}
}

func throttle(limiter *ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		owner := ownerID(c)
		if !limiter.Allow(owner) {
			m.RecordRateLimitHit(surface)
			reset := limiter.ResetTime(owner)
			retry := int(time.Until(reset).Seconds()) + 1
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			abortError(c, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		c.Next()
	}
}

func ownerID(c *gin.Context) int64 {
	return c.GetInt64(ctxOwnerID)
}
