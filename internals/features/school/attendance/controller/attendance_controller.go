// file: internals/features/school/attendance/controller/attendance_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"

	d "sekolahku_backend/internals/features/school/attendance/dto"
	m "sekolahku_backend/internals/features/school/attendance/model"
	svc "sekolahku_backend/internals/features/school/attendance/service"
)

/* =========================
   Controller & Constructor
   ========================= */

type AttendanceController struct {
	DB         *gorm.DB
	Validate   *validator.Validate
	Attendance *svc.AttendanceService
}

func NewAttendanceController(db *gorm.DB, v *validator.Validate) *AttendanceController {
	return &AttendanceController{
		DB:         db,
		Validate:   v,
		Attendance: svc.NewAttendanceService(),
	}
}

/* =========================
   Small helpers
   ========================= */

// actorFromCtx: tagged union {kind, id} dari token.
func actorFromCtx(c *fiber.Ctx) (m.ActorRef, error) {
	id, err := helperAuth.GetUserID(c)
	if err != nil {
		return m.ActorRef{}, err
	}
	kind := m.ActorTeacher
	switch helperAuth.GetRole(c) {
	case constants.RoleAdmin, constants.RoleOwner:
		kind = m.ActorAdmin
	case constants.RoleSystem:
		kind = m.ActorSystem
	}
	return m.ActorRef{Kind: kind, ID: id}, nil
}

// mapServiceError: error validasi service → status HTTP.
func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, svc.ErrTeacherNotAssigned):
		return helper.Error(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, svc.ErrClassNotFound),
		errors.Is(err, svc.ErrSubjectNotFound),
		errors.Is(err, svc.ErrStudentNotFound),
		errors.Is(err, svc.ErrEventNotFound):
		return helper.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, svc.ErrInvalidStatus),
		errors.Is(err, svc.ErrInvalidSession),
		errors.Is(err, svc.ErrSessionNotAllowed),
		errors.Is(err, svc.ErrDateOutsideTerm),
		errors.Is(err, svc.ErrStudentNotEnrolled):
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
}

/* =========================
   POST /attendance  (mark satu siswa)
   ========================= */

func (ctl *AttendanceController) Mark(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	teacherID, err := helperAuth.GetTeacherID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req d.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	date, ok := d.ParseDateYYYYMMDD(req.Date)
	if !ok {
		return helper.Error(c, fiber.StatusBadRequest, "Format tanggal harus YYYY-MM-DD")
	}

	res, err := ctl.Attendance.MarkAttendance(ctl.DB, req.ToServiceRequest(schoolID, teacherID, date), actor, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}

	code := fiber.StatusOK
	if res.Action == svc.MarkActionCreate {
		code = fiber.StatusCreated
	}
	return helper.SuccessWithCode(c, code, "Absensi tercatat", res)
}

/* =========================
   POST /attendance/bulk  (banyak siswa, satu sesi)
   ========================= */

func (ctl *AttendanceController) BulkMark(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	teacherID, err := helperAuth.GetTeacherID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req d.BulkMarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	date, ok := d.ParseDateYYYYMMDD(req.Date)
	if !ok {
		return helper.Error(c, fiber.StatusBadRequest, "Format tanggal harus YYYY-MM-DD")
	}

	res, err := ctl.Attendance.BulkMarkAttendance(ctl.DB,
		req.ToServiceContext(schoolID, teacherID, date), req.ToServiceItems(), actor, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}

	// caller harus bisa membedakan sukses penuh / parsial / gagal total
	msg := "Bulk mark selesai"
	if res.FailureCount > 0 && res.SuccessCount > 0 {
		msg = "Bulk mark selesai sebagian"
	} else if res.SuccessCount == 0 && res.FailureCount > 0 {
		msg = "Bulk mark gagal untuk semua item"
	}
	return helper.Success(c, msg, res)
}

/* =========================
   DELETE /attendance/:id
   ========================= */

func (ctl *AttendanceController) Delete(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "id tidak valid")
	}

	var req d.DeleteAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Attendance.DeleteAttendance(ctl.DB, schoolID, eventID, actor, req.Reason)
	if err != nil {
		return mapServiceError(c, err)
	}
	return helper.Success(c, "Absensi dihapus", res)
}
