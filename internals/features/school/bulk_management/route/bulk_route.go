// file: internals/features/school/bulk_management/route/bulk_route.go
package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	bulkCtl "sekolahku_backend/internals/features/school/bulk_management/controller"
)

// =========================
// ADMIN routes (operasi bulk)
// =========================
func BulkAdminRoutes(r fiber.Router, db *gorm.DB) {
	v := validator.New()
	ctl := bulkCtl.NewBulkController(db, v)

	grp := r.Group("/bulk")
	grp.Post("/assign", ctl.AssignByPattern)
	grp.Post("/transfer", ctl.Transfer)
	grp.Post("/teachers/:teacherId/reassign", ctl.ReassignTeacher)
}
