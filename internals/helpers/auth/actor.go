// file: internals/helpers/auth/actor.go
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* =========================
   Locals keys (diisi oleh middleware AuthJWT)
   ========================= */

const (
	LocUserID    = "user_id"
	LocRole      = "role"
	LocSchoolID  = "school_id"
	LocTeacherID = "teacher_id"
)

func strLocal(c *fiber.Ctx, key string) string {
	if v := c.Locals(key); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// GetUserID mengambil user_id dari locals (hasil parse JWT).
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	s := strLocal(c, LocUserID)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user_id tidak ditemukan")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - user_id tidak valid")
	}
	return id, nil
}

// GetRole mengambil role aktif dari locals.
func GetRole(c *fiber.Ctx) string {
	return strLocal(c, LocRole)
}

// GetSchoolID mengambil tenant (school_id) dari locals.
func GetSchoolID(c *fiber.Ctx) (uuid.UUID, error) {
	s := strLocal(c, LocSchoolID)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - school_id tidak ditemukan")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - school_id tidak valid")
	}
	return id, nil
}

// GetTeacherID mengambil teacher_id dari locals (hanya ada pada token guru).
func GetTeacherID(c *fiber.Ctx) (uuid.UUID, error) {
	s := strLocal(c, LocTeacherID)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "Token tidak membawa teacher_id")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - teacher_id tidak valid")
	}
	return id, nil
}
