package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/api/metrics"
	"github.com/brokerdesk/backoffice-api/internal/core/domain"
	"github.com/brokerdesk/backoffice-api/internal/pkg/token"
)

// TokenVerifier checks a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Auth validates the bearer access token and attaches the caller's principal
// to the echo context and the request context.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, reason := authenticate(c, verifier)
			if reason != "" {
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, rejectionMessage(reason))
			}
			SetPrincipal(c, p)
			return next(c)
		}
	}
}

// OptionalAuth lets requests without an Authorization header through
// anonymously. A header that is present must carry a valid access token.
func OptionalAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, reason := authenticate(c, verifier)
			switch reason {
			case "":
				SetPrincipal(c, p)
			case "missing":
			default:
				metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, rejectionMessage(reason))
			}
			return next(c)
		}
	}
}

// authenticate returns the principal, or a non-empty rejection reason.
func authenticate(c echo.Context, verifier TokenVerifier) (domain.Principal, string) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return domain.Principal{}, "missing"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return domain.Principal{}, "malformed"
	}

	claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Principal{}, "invalid"
	}
	if claims.Use != token.UseAccess {
		return domain.Principal{}, "wrong_use"
	}

	return domain.Principal{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     domain.Role(claims.Role),
	}, ""
}

func rejectionMessage(reason string) string {
	switch reason {
	case "missing":
		return "missing authorization header"
	case "malformed":
		return "invalid authorization header"
	case "wrong_use":
		return "refresh token cannot be used as an access token"
	default:
		return "invalid token"
	}
}
