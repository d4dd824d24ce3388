package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const CtxRequestIDKey = "request_id"

type AccessLogMiddleware struct {
	logger *logrus.Logger
}

func NewAccessLogMiddleware(logger *logrus.Logger) *AccessLogMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AccessLogMiddleware{logger: logger}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = normalizeError(err)
		}

		entry := m.logger.WithFields(logrus.Fields{
			"rid":        rid,
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.OriginalURL(),
			"status":     status,
			"latency":    time.Since(start).String(),
			"req_bytes":  c.Request().Header.ContentLength(),
			"resp_bytes": len(c.Response().Body()),
			"ua":         c.Get("User-Agent"),
		})
		switch {
		case status >= 500:
			entry.Error("http access")
		case status >= 400:
			entry.Warn("http access")
		default:
			entry.Info("http access")
		}

		return err
	}
}
