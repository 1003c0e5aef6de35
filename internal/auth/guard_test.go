package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/complaint-service/internal/domain"
	apperrors "github.com/campus-kit/complaint-service/pkg/util"
)

// guardApp builds a fiber app that injects the principal, runs the guard and
// records whether the protected handler executed.
func guardApp(principal *Principal, guard fiber.Handler, handlerRan *bool) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		}
		return nil
	})
	app.Get("/probe", func(c *fiber.Ctx) error {
		if principal != nil {
			StorePrincipal(c, principal)
		}
		return c.Next()
	}, guard, func(c *fiber.Ctx) error {
		*handlerRan = true
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func principalWithRole(role domain.Role) *Principal {
	return &Principal{
		User:       &domain.User{ID: "user-1", Status: domain.UserStatusActive},
		Assignment: &domain.RoleAssignment{UserID: "user-1", Role: role},
	}
}

func TestRequireRoleExactMatch(t *testing.T) {
	var handlerRan bool
	app := guardApp(principalWithRole(domain.RoleAdmin), RequireRole(domain.RoleAdmin), &handlerRan)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, handlerRan)
}

func TestRequireRoleNoHierarchy(t *testing.T) {
	// A director holds no admin privileges and vice versa.
	for _, role := range []domain.Role{domain.RoleDirector, domain.RoleVP, domain.RoleComplainer} {
		var handlerRan bool
		app := guardApp(principalWithRole(role), RequireRole(domain.RoleAdmin), &handlerRan)

		resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "role %s", role)
		assert.False(t, handlerRan, "handler must not run for role %s", role)
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	var handlerRan bool
	app := guardApp(nil, RequireRole(domain.RoleAdmin), &handlerRan)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, handlerRan)
}

func TestRequireVerified(t *testing.T) {
	unverified := principalWithRole(domain.RoleComplainer)
	var handlerRan bool
	app := guardApp(unverified, RequireVerified(), &handlerRan)

	resp, err := app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.False(t, handlerRan)

	verified := principalWithRole(domain.RoleComplainer)
	now := time.Now()
	verified.User.EmailVerifiedAt = &now
	app = guardApp(verified, RequireVerified(), &handlerRan)

	resp, err = app.Test(httptest.NewRequest("GET", "/probe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, handlerRan)
}
