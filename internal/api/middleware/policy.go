package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Access classifies what a route requires of the caller.
type Access int

const (
	// Public routes accept anonymous requests.
	Public Access = iota
	// RequirePrincipal routes demand an authenticated user.
	RequirePrincipal
)

// Rule binds a path pattern to an access requirement. A pattern is either an
// exact path or a prefix ending in "/*". Roles, when non-empty, further
// restricts the rule to users holding one of the listed roles.
type Rule struct {
	Pattern string
	Access  Access
	Roles   []string
}

// AccessPolicy is the explicit, ordered route authorization table. Every
// route's requirement is enumerated here and evaluated deterministically;
// there are no implicit framework defaults. The first matching rule wins,
// and a path matching no rule is denied.
type AccessPolicy struct {
	Rules []Rule
}

// match reports whether path satisfies pattern.
func match(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// Evaluate returns the first rule matching path, or (Rule{}, false) when no
// rule matches.
func (p AccessPolicy) Evaluate(path string) (Rule, bool) {
	for _, r := range p.Rules {
		if match(r.Pattern, path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Authorize enforces the policy. The rejection status is always 403, for a
// missing credential as much as for an expired or forged one, so the
// response never reveals why a protected route refused the caller.
func Authorize(policy AccessPolicy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rule, ok := policy.Evaluate(c.Request().URL.Path)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			if rule.Access == Public {
				return next(c)
			}

			principal, ok := Principal(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			if len(rule.Roles) > 0 && !hasRole(rule.Roles, principal.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

func hasRole(allowed []string, role string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
