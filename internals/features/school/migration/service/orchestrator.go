// file: internals/features/school/migration/service/orchestrator.go
package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	attsvc "sekolahku_backend/internals/features/school/attendance/service"
	legacy "sekolahku_backend/internals/features/school/migration/model"
)

/* =========================================================
   MigrationOrchestrator: pipeline backup → transform →
   validate dengan rollback otomatis. Dijalankan di
   maintenance window; tidak ada locking terhadap penulis
   konkuren.
========================================================= */

type MigrationOrchestrator struct {
	Consistency *attsvc.ConsistencyService
	Audit       *attsvc.AuditService
	BackupDir   string
}

func NewMigrationOrchestrator() *MigrationOrchestrator {
	return &MigrationOrchestrator{
		Consistency: attsvc.NewConsistencyService(),
		Audit:       attsvc.NewAuditService(),
	}
}

// RunOptions: knob operator (CLI / endpoint admin).
type RunOptions struct {
	AutoFix bool
}

// CheckPrerequisites: DB harus bisa dihubungi dan tabel dasar ada.
// Data hasil migrasi sebelumnya hanya warning, bukan kegagalan.
func (o *MigrationOrchestrator) CheckPrerequisites(db *gorm.DB, res *MigrationResult) error {
	for _, table := range []string{"students", "subjects", "classes", "teacher_assignments", "legacy_student_attendances", "attendance_events", "attendance_summaries"} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("prasyarat: tabel %s tidak ada", table)
		}
	}

	var existing int64
	if err := db.Model(&attmodel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ?", res.SchoolID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("prasyarat: %w", err)
	}
	if existing > 0 {
		res.Warnf("prasyarat: %d event sudah ada di skema baru (kemungkinan run sebelumnya)", existing)
	}

	var legacyN int64
	if err := db.Model(&legacy.LegacyStudentAttendanceModel{}).
		Where("legacy_student_attendance_school_id = ?", res.SchoolID).
		Count(&legacyN).Error; err != nil {
		return fmt.Errorf("prasyarat: %w", err)
	}
	res.Logf("prasyarat OK: %d baris legacy, %d event existing", legacyN, existing)
	return nil
}

// Run menjalankan pipeline penuh untuk satu tenant. Kegagalan setelah
// backup memicu rollback otomatis; kegagalan rollback itu sendiri membuat
// run FAILED_UNRECOVERABLE dengan kedua error dipertahankan.
func (o *MigrationOrchestrator) Run(db *gorm.DB, schoolID uuid.UUID, opts RunOptions) *MigrationResult {
	res := NewMigrationResult(schoolID)

	if err := o.CheckPrerequisites(db, res); err != nil {
		res.Errorf("prasyarat gagal: %v", err)
		res.finish(MigrationFailedUnrecoverable)
		o.writeReport(res)
		return res
	}

	snap, err := o.Backup(db, res)
	if err != nil {
		// belum ada mutasi; berhenti tanpa rollback
		res.Errorf("backup gagal: %v", err)
		res.finish(MigrationFailedUnrecoverable)
		o.writeReport(res)
		return res
	}
	res.Status = MigrationBackedUp

	if err := o.Transform(db, res); err != nil {
		res.Errorf("transform gagal: %v", err)
		o.rollbackOrDie(db, snap, res)
		o.writeReport(res)
		return res
	}
	res.Status = MigrationTransformed

	rep, err := o.Validate(db, res)
	if err != nil {
		res.Errorf("validate gagal: %v", err)
		o.rollbackOrDie(db, snap, res)
		o.writeReport(res)
		return res
	}
	if rep.ErrorCount > 0 && opts.AutoFix {
		if err := o.AutoFix(db, res, rep); err != nil {
			res.Errorf("autofix gagal: %v", err)
			o.rollbackOrDie(db, snap, res)
			o.writeReport(res)
			return res
		}
		if rep, err = o.Validate(db, res); err != nil {
			res.Errorf("revalidate gagal: %v", err)
			o.rollbackOrDie(db, snap, res)
			o.writeReport(res)
			return res
		}
	}
	if rep.ErrorCount > 0 {
		res.Errorf("validate menemukan %d error yang tidak terselesaikan", rep.ErrorCount)
		o.rollbackOrDie(db, snap, res)
		o.writeReport(res)
		return res
	}
	res.Status = MigrationValidated

	o.Audit.LogWithRetry(db, schoolID, nil, attmodel.AuditMigration,
		nil, map[string]any{"run_id": res.RunID, "stats": res.Stats},
		attmodel.SystemActor(), "migrasi legacy selesai")
	res.finish(MigrationDone)
	o.writeReport(res)
	return res
}

// RollbackFromFile: jalur operator manual (-rollback -backup-file).
func (o *MigrationOrchestrator) RollbackFromFile(db *gorm.DB, path string) (*MigrationResult, error) {
	snap, err := LoadBackup(path)
	if err != nil {
		return nil, err
	}
	res := NewMigrationResult(snap.SchoolID)
	res.BackupFile = path
	if err := o.Rollback(db, snap, res); err != nil {
		res.Errorf("rollback gagal: %v", err)
		res.finish(MigrationFailedUnrecoverable)
		o.writeReport(res)
		return res, err
	}
	res.finish(MigrationRolledBack)
	o.writeReport(res)
	return res, nil
}

// ValidateOnly: lintasan validasi tanpa mutasi (-validate-only).
func (o *MigrationOrchestrator) ValidateOnly(db *gorm.DB, schoolID uuid.UUID) (*MigrationResult, *ValidationReport, error) {
	res := NewMigrationResult(schoolID)
	if err := o.CheckPrerequisites(db, res); err != nil {
		return res, nil, err
	}
	rep, err := o.Validate(db, res)
	if err != nil {
		return res, nil, err
	}
	if rep.ErrorCount > 0 {
		res.finish(MigrationFailedUnrecoverable)
	} else {
		res.finish(MigrationValidated)
	}
	o.writeReport(res)
	return res, rep, nil
}

func (o *MigrationOrchestrator) rollbackOrDie(db *gorm.DB, snap *Snapshot, res *MigrationResult) {
	if err := o.Rollback(db, snap, res); err != nil {
		// kedua error (penyebab + kegagalan rollback) dipertahankan
		res.Errorf("rollback gagal: %v", err)
		res.finish(MigrationFailedUnrecoverable)
		return
	}
	res.finish(MigrationRolledBack)
}

// writeReport: laporan JSON per run di samping file backup. Kegagalan
// menulis laporan tidak mengubah hasil run.
func (o *MigrationOrchestrator) writeReport(res *MigrationResult) {
	dir := o.backupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Warnf("tulis laporan: %v", err)
		return
	}
	path := filepath.Join(dir, fmt.Sprintf("report_%s.json", res.RunID))
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		res.Warnf("tulis laporan: %v", err)
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		res.Warnf("tulis laporan: %v", err)
		return
	}
	res.ReportFile = path
}
