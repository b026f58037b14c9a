// file: internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/constants"
	middleware "sekolahku_backend/internals/middlewares/auth_school"

	attRoutes "sekolahku_backend/internals/features/school/attendance/route"
	bulkRoutes "sekolahku_backend/internals/features/school/bulk_management/route"
	migRoutes "sekolahku_backend/internals/features/school/migration/route"
)

/* =========================================================
   Grup route sekolah:
   /api/a → admin/owner (bulk management, migrasi)
   /api/u → user terautentikasi (guru ke atas)
========================================================= */

func SchoolRoutes(app *fiber.App, db *gorm.DB) {
	jwt := middleware.AuthJWT(middleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	})

	// ---- /api/a : khusus admin ----
	admin := app.Group("/api/a", jwt, middleware.RequireAdmin("school-admin"))
	bulkRoutes.BulkAdminRoutes(admin, db)
	migRoutes.MigrationAdminRoutes(admin, db)

	// ---- /api/u : guru ke atas ----
	user := app.Group("/api/u", jwt)

	write := user.Group("", middleware.RequireRoles("attendance", constants.TeacherAndAbove...))
	attRoutes.AttendanceTeacherRoutes(write, db)

	attRoutes.AttendanceSummaryRoutes(user, db)
}
