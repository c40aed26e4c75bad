package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header a caller may use to supply its own request
// identifier; otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that binds a request identifier to the echo
// context and echoes it back in the response headers. The logger and audit
// middlewares pick it up from the context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
