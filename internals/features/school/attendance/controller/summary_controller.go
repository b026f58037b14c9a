// file: internals/features/school/attendance/controller/summary_controller.go
package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"

	d "sekolahku_backend/internals/features/school/attendance/dto"
	svc "sekolahku_backend/internals/features/school/attendance/service"
)

type SummaryController struct {
	DB      *gorm.DB
	Summary *svc.SummaryService
}

func NewSummaryController(db *gorm.DB) *SummaryController {
	return &SummaryController{DB: db, Summary: svc.NewSummaryService()}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Params(name)))
}

func optionalUUIDQuery(c *fiber.Ctx, name string) *uuid.UUID {
	s := strings.TrimSpace(c.Query(name))
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

/* =========================
   GET /attendance/summary/students/:studentId
   ?subject_id=&class_id=
   ========================= */

func (ctl *SummaryController) GetStudentSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	studentID, err := parseUUIDParam(c, "studentId")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "studentId tidak valid")
	}

	rows, err := ctl.Summary.GetStudentSummaries(ctl.DB, schoolID, studentID, svc.SummaryFilter{
		SubjectID: optionalUUIDQuery(c, "subject_id"),
		ClassID:   optionalUUIDQuery(c, "class_id"),
	})
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", d.NewSummaryResponses(rows))
}

/* =========================
   GET /attendance/summary/classes/:classId/subjects/:subjectId
   ========================= */

func (ctl *SummaryController) GetClassSubjectSummary(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	classID, err := parseUUIDParam(c, "classId")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "classId tidak valid")
	}
	subjectID, err := parseUUIDParam(c, "subjectId")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "subjectId tidak valid")
	}

	rows, stats, err := ctl.Summary.GetClassSubjectSummaries(ctl.DB, schoolID, classID, subjectID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", d.ClassSubjectSummaryResponse{
		PerStudent:      d.NewSummaryResponses(rows),
		ClassStatistics: stats,
	})
}

/* =========================
   GET /attendance/alerts/classes/:classId
   ?subject_id=&threshold=75
   ========================= */

func (ctl *SummaryController) GetLowAttendanceAlerts(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	classID, err := parseUUIDParam(c, "classId")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "classId tidak valid")
	}

	threshold := svc.DefaultAlertThreshold
	if s := strings.TrimSpace(c.Query("threshold")); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 && v <= 100 {
			threshold = v
		}
	}

	alerts, err := ctl.Summary.GetLowAttendanceAlerts(ctl.DB, schoolID, classID, optionalUUIDQuery(c, "subject_id"), threshold)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "OK", d.NewLowAttendanceAlertResponses(alerts))
}
