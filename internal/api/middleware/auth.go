package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/token"
)

// principalKey is the echo context key under which the authenticated user is
// stored. Absence of the key means the request is anonymous.
const principalKey = "principal"

// Authenticate resolves the request's principal and attaches it to the echo
// context, exactly once, before any handler runs. It never rejects a request
// itself: a missing header, a non-bearer scheme, a bad token, or a vanished
// user all leave the request anonymous, and the access policy one layer up
// decides whether anonymous is acceptable for the matched route.
func Authenticate(verifier *token.Issuer, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return next(c)
			}

			subject, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenRejectionsTotal.Inc()
				return next(c)
			}

			user, err := users.FindByID(c.Request().Context(), subject)
			if err != nil {
				return next(c)
			}

			SetPrincipal(c, user)
			return next(c)
		}
	}
}

// SetPrincipal attaches user to the request context. Called once per request
// by Authenticate; exported for handler tests.
func SetPrincipal(c echo.Context, user *domain.User) {
	c.Set(principalKey, user)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other scheme is treated as if the header were absent.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Principal returns the authenticated user attached by Authenticate, or
// (nil, false) for an anonymous request.
func Principal(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(principalKey).(*domain.User)
	return user, ok && user != nil
}
