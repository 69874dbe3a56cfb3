package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Context keys handlers use to attach assessment outcomes to the request
// log line, so escalations can be traced from access logs alone.
const (
	AssessmentIDKey    = "assessment_id"
	EscalationLevelKey = "escalation_level"
)

// Logger emits one structured line per request. Assessment handlers set
// AssessmentIDKey and EscalationLevelKey on the context and the fields are
// folded into the line when present.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if id, ok := c.Get(AssessmentIDKey).(string); ok && id != "" {
				evt = evt.Str(AssessmentIDKey, id)
			}
			if level, ok := c.Get(EscalationLevelKey).(string); ok && level != "" {
				evt = evt.Str(EscalationLevelKey, level)
			}
			evt.Msg("request")

			return err
		}
	}
}
