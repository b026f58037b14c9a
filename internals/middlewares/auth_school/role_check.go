// file: internals/middlewares/auth_school/role_check.go
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"sekolahku_backend/internals/constants"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// RequireRoles menolak request jika role di token tidak termasuk allowed.
func RequireRoles(feature string, allowed ...string) fiber.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role := helperAuth.GetRole(c)
		if _, ok := set[role]; !ok {
			return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorTeacher(feature))
		}
		return c.Next()
	}
}

// RequireAdmin shortcut untuk fitur khusus admin/owner.
func RequireAdmin(feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := helperAuth.GetRole(c)
		for _, r := range constants.AdminAndAbove {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorAdmin(feature))
	}
}
