package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/complaint-service/internal/domain"
	"github.com/campus-kit/complaint-service/internal/repository"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the account plus its
// resolved primary role assignment.
type Principal struct {
	User       *domain.User
	Assignment *domain.RoleAssignment
}

// Role returns the resolved role tag.
func (p *Principal) Role() domain.Role {
	if p == nil || p.Assignment == nil {
		return ""
	}
	return p.Assignment.Role
}

// Middleware validates bearer tokens and loads principals.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	roles  repository.RoleAssignmentRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, roles repository.RoleAssignmentRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users, roles: roles}
}

// Handle enforces authentication for protected routes and resolves the
// caller's primary role. An account with zero role rows is rejected with a
// typed ROLE_MISSING failure rather than faulting downstream.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return apperrors.NewUnauthorized("account disabled")
	}

	assignment, err := m.roles.PrimaryForUser(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewRoleMissing(user.ID)
		}
		return apperrors.MapError(err)
	}

	StorePrincipal(c, &Principal{User: user, Assignment: assignment})
	return c.Next()
}

// StorePrincipal attaches the principal to the request context.
func StorePrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
