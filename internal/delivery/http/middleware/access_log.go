package middleware

import (
	"time"

	"jobmatch/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

type AccessLogMiddleware struct {
	logger *zap.Logger
}

func NewAccessLogMiddleware(log *zap.Logger) *AccessLogMiddleware {
	return &AccessLogMiddleware{logger: logger.Named(log, "http")}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)

		err := c.Next()

		m.logger.Info("http access",
			zap.String("request_id", rid),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", len(c.Response().Body())),
			zap.String("ua", c.Get("User-Agent")),
		)

		return err
	}
}
