package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/complaint-service/internal/domain"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// RequireRole gates a route group on an exact role match. There is no
// hierarchy between roles: a director gets no admin privileges and vice
// versa. On mismatch the request terminates before the handler runs.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role() != required {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireVerified gates complaint routes on completed email verification.
func RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Verified() {
			return apperrors.NewForbidden("email not verified")
		}
		return c.Next()
	}
}
