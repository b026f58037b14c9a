// file: internals/features/school/attendance/route/attendance_route.go
package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	attCtl "sekolahku_backend/internals/features/school/attendance/controller"
)

// =========================
// TEACHER routes (tulis ledger)
// =========================
func AttendanceTeacherRoutes(r fiber.Router, db *gorm.DB) {
	v := validator.New()
	ctl := attCtl.NewAttendanceController(db, v)

	grp := r.Group("/attendance")
	grp.Post("/", ctl.Mark)
	grp.Post("/bulk", ctl.BulkMark)
	grp.Delete("/:id", ctl.Delete)
}

// =========================
// READ routes (summary & alerts)
// =========================
func AttendanceSummaryRoutes(r fiber.Router, db *gorm.DB) {
	ctl := attCtl.NewSummaryController(db)

	grp := r.Group("/attendance")
	grp.Get("/summary/students/:studentId", ctl.GetStudentSummary)
	grp.Get("/summary/classes/:classId/subjects/:subjectId", ctl.GetClassSubjectSummary)
	grp.Get("/alerts/classes/:classId", ctl.GetLowAttendanceAlerts)
}
