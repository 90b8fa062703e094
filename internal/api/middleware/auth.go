package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/codeplatform/auth-service/internal/api/metrics"
	"github.com/codeplatform/auth-service/internal/core/ports"
)

// Auth verifies the bearer token through the token service and injects its
// claims into the request context. All rejection paths return the same 401.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

			c.Set("identity_id", claims.IdentityID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}
