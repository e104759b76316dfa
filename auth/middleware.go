package auth

import (
	"net/http"

	perrors "github.com/jmgilman/go/errors"
	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/discogstools/observe"
)

// Middleware rejects requests that a does not authenticate with 401 and a
// JSON error body. Authenticated callers are stored in the request context.
func Middleware(a Authenticator, logger observe.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := a.Authenticate(req.Context(), req.Header)
			if err == nil && id.Expired() {
				err = ErrTokenExpired
			}
			if err != nil {
				logger.Warn(req.Context(), "request rejected",
					observe.Field{Key: "path", Value: req.URL.Path},
					observe.Field{Key: "remote", Value: c.RealIP()},
					observe.Err(err),
				)
				return c.JSON(http.StatusUnauthorized, perrors.ToJSON(
					perrors.Wrap(err, perrors.CodeUnauthorized, "authentication required"),
				))
			}

			c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}
