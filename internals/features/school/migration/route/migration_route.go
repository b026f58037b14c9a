// file: internals/features/school/migration/route/migration_route.go
package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	migCtl "sekolahku_backend/internals/features/school/migration/controller"
)

// =========================
// ADMIN routes (orkestrasi migrasi)
// =========================
func MigrationAdminRoutes(r fiber.Router, db *gorm.DB) {
	v := validator.New()
	ctl := migCtl.NewMigrationController(db, v)

	grp := r.Group("/migration")
	grp.Get("/status", ctl.Status)
	grp.Post("/run", ctl.Run)
	grp.Post("/validate", ctl.ValidateOnly)
	grp.Post("/rollback", ctl.Rollback)
}
