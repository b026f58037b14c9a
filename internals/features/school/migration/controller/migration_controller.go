// file: internals/features/school/migration/controller/migration_controller.go
package controller

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"

	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	legacy "sekolahku_backend/internals/features/school/migration/model"
	svc "sekolahku_backend/internals/features/school/migration/service"
)

type MigrationController struct {
	DB           *gorm.DB
	Validate     *validator.Validate
	Orchestrator *svc.MigrationOrchestrator
}

func NewMigrationController(db *gorm.DB, v *validator.Validate) *MigrationController {
	return &MigrationController{DB: db, Validate: v, Orchestrator: svc.NewMigrationOrchestrator()}
}

/* =========================
   GET /migration/status
   ========================= */

func (ctl *MigrationController) Status(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}

	var legacyN, eventN, summaryN int64
	if err := ctl.DB.Model(&legacy.LegacyStudentAttendanceModel{}).
		Where("legacy_student_attendance_school_id = ?", schoolID).Count(&legacyN).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	if err := ctl.DB.Model(&attmodel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ?", schoolID).Count(&eventN).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	if err := ctl.DB.Model(&attmodel.AttendanceSummaryModel{}).
		Where("attendance_summary_school_id = ?", schoolID).Count(&summaryN).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.Success(c, "OK", fiber.Map{
		"legacy_rows": legacyN,
		"events":      eventN,
		"summaries":   summaryN,
		"backups":     listBackups(svc.DefaultBackupDir),
	})
}

func listBackups(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "backup_*.json"))
	if err != nil {
		return []string{}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches
}

/* =========================
   POST /migration/run  ?auto_fix=true
   ========================= */

func (ctl *MigrationController) Run(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}

	res := ctl.Orchestrator.Run(ctl.DB, schoolID, svc.RunOptions{
		AutoFix: c.QueryBool("auto_fix", false),
	})
	switch res.Status {
	case svc.MigrationDone:
		msg := "Migrasi selesai"
		if res.HasWarnings() {
			msg = "Migrasi selesai dengan warning"
		}
		return helper.Success(c, msg, res)
	case svc.MigrationRolledBack:
		return helper.ErrorWithDetails(c, fiber.StatusUnprocessableEntity, "Migrasi gagal dan di-rollback", res)
	default:
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Migrasi gagal", res)
	}
}

/* =========================
   POST /migration/validate  (tanpa mutasi)
   ========================= */

func (ctl *MigrationController) ValidateOnly(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}

	res, rep, err := ctl.Orchestrator.ValidateOnly(ctl.DB, schoolID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.Success(c, "Validasi selesai", fiber.Map{
		"result": res,
		"report": rep,
	})
}

/* =========================
   POST /migration/rollback  {backup_file}
   ========================= */

type rollbackRequest struct {
	BackupFile string `json:"backup_file" validate:"required"`
}

func (ctl *MigrationController) Rollback(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}

	var req rollbackRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	// file backup hanya boleh dari direktori backup server
	if filepath.Dir(filepath.Clean(req.BackupFile)) != filepath.Clean(svc.DefaultBackupDir) {
		return helper.Error(c, fiber.StatusBadRequest, "backup_file di luar direktori backup")
	}
	if _, err := os.Stat(req.BackupFile); err != nil {
		return helper.Error(c, fiber.StatusNotFound, "File backup tidak ditemukan")
	}

	snap, err := svc.LoadBackup(req.BackupFile)
	if err != nil {
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	if snap.SchoolID != schoolID {
		return helper.Error(c, fiber.StatusForbidden, "Backup milik tenant lain")
	}

	res, err := ctl.Orchestrator.RollbackFromFile(ctl.DB, req.BackupFile)
	if err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Rollback gagal", res)
	}
	return helper.Success(c, "Rollback selesai", res)
}
