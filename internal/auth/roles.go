package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.WorkerRole) fiber.Handler {
	allowedSet := make(map[domain.WorkerRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireLineman ensures the caller is a field worker.
func RequireLineman() fiber.Handler {
	return RequireRole(domain.WorkerRoleLineman)
}

// RequireAdmin ensures the caller is a dispatcher/admin.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.WorkerRoleAdmin)
}
