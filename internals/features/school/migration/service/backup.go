// file: internals/features/school/migration/service/backup.go
package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	legacy "sekolahku_backend/internals/features/school/migration/model"
)

// BackupDir bisa dioverride via env MIGRATION_BACKUP_DIR.
const DefaultBackupDir = "backups"

/* =========================================================
   Snapshot: isi tenant sebelum transform — legacy + kedua
   tabel skema baru. Sumber kebenaran untuk rollback.
========================================================= */

type Snapshot struct {
	SchoolID uuid.UUID `json:"school_id"`
	TakenAt  time.Time `json:"taken_at"`

	Legacy    []legacy.LegacyStudentAttendanceModel `json:"legacy_student_attendances"`
	Events    []attmodel.AttendanceEventModel       `json:"attendance_events"`
	Summaries []attmodel.AttendanceSummaryModel     `json:"attendance_summaries"`

	// edge enrollment ikut dipulihkan (Transform bisa menambah baris);
	// audit disertakan untuk inspeksi tapi TIDAK di-restore — append-only
	Enrollments []academics.StudentEnrollmentModel `json:"student_enrollments"`
	AuditLogs   []attmodel.AttendanceAuditLogModel `json:"attendance_audit_logs"`
}

func (s *Snapshot) Counts() (legacyN, eventN, summaryN int) {
	return len(s.Legacy), len(s.Events), len(s.Summaries)
}

// Backup memotret legacy + tabel target in-process DAN ke file JSON
// write-once. Gagal di sini menghentikan run sebelum ada mutasi.
func (o *MigrationOrchestrator) Backup(db *gorm.DB, res *MigrationResult) (*Snapshot, error) {
	snap := &Snapshot{SchoolID: res.SchoolID, TakenAt: time.Now().UTC()}

	if err := db.Where("legacy_student_attendance_school_id = ?", res.SchoolID).
		Find(&snap.Legacy).Error; err != nil {
		return nil, fmt.Errorf("backup legacy: %w", err)
	}
	if err := db.Where("attendance_event_school_id = ?", res.SchoolID).
		Find(&snap.Events).Error; err != nil {
		return nil, fmt.Errorf("backup events: %w", err)
	}
	if err := db.Where("attendance_summary_school_id = ?", res.SchoolID).
		Find(&snap.Summaries).Error; err != nil {
		return nil, fmt.Errorf("backup summaries: %w", err)
	}
	if err := db.Where("student_enrollment_school_id = ?", res.SchoolID).
		Find(&snap.Enrollments).Error; err != nil {
		return nil, fmt.Errorf("backup enrollments: %w", err)
	}
	if err := db.Where("attendance_audit_log_school_id = ?", res.SchoolID).
		Find(&snap.AuditLogs).Error; err != nil {
		return nil, fmt.Errorf("backup audit: %w", err)
	}

	path, err := o.writeBackupFile(snap)
	if err != nil {
		return nil, err
	}
	res.BackupFile = path
	res.Logf("backup: %d legacy, %d event, %d summary → %s",
		len(snap.Legacy), len(snap.Events), len(snap.Summaries), path)
	return snap, nil
}

func (o *MigrationOrchestrator) backupDir() string {
	if o.BackupDir != "" {
		return o.BackupDir
	}
	return DefaultBackupDir
}

func (o *MigrationOrchestrator) writeBackupFile(snap *Snapshot) (string, error) {
	dir := o.backupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("backup_%s.json", snap.TakenAt.Format("20060102T150405Z")))

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup marshal: %w", err)
	}
	// O_EXCL: file backup write-once, tidak pernah ditimpa
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("backup write: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return "", fmt.Errorf("backup write: %w", err)
	}
	return path, nil
}

// LoadBackup membaca snapshot dari file untuk rollback manual (-backup-file).
func LoadBackup(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("baca backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if snap.SchoolID == uuid.Nil {
		return nil, fmt.Errorf("backup tidak valid: school_id kosong")
	}
	return &snap, nil
}

/* =========================================================
   Rollback: kosongkan tabel skema baru milik tenant, lalu
   pulihkan isi persis dari snapshot. Verifikasi jumlah baris
   pasca-restore; mismatch = FAILED_UNRECOVERABLE di caller.
========================================================= */

func (o *MigrationOrchestrator) Rollback(db *gorm.DB, snap *Snapshot, res *MigrationResult) error {
	if err := db.Delete(&attmodel.AttendanceEventModel{}, "attendance_event_school_id = ?", snap.SchoolID).Error; err != nil {
		return fmt.Errorf("rollback hapus events: %w", err)
	}
	if err := db.Delete(&attmodel.AttendanceSummaryModel{}, "attendance_summary_school_id = ?", snap.SchoolID).Error; err != nil {
		return fmt.Errorf("rollback hapus summaries: %w", err)
	}
	if err := db.Delete(&legacy.LegacyStudentAttendanceModel{}, "legacy_student_attendance_school_id = ?", snap.SchoolID).Error; err != nil {
		return fmt.Errorf("rollback hapus legacy: %w", err)
	}
	if err := db.Delete(&academics.StudentEnrollmentModel{}, "student_enrollment_school_id = ?", snap.SchoolID).Error; err != nil {
		return fmt.Errorf("rollback hapus enrollments: %w", err)
	}

	for i := range snap.Enrollments {
		if err := db.Create(&snap.Enrollments[i]).Error; err != nil {
			return fmt.Errorf("rollback restore enrollments: %w", err)
		}
	}
	for i := range snap.Legacy {
		if err := db.Create(&snap.Legacy[i]).Error; err != nil {
			return fmt.Errorf("rollback restore legacy: %w", err)
		}
	}
	for i := range snap.Events {
		if err := db.Create(&snap.Events[i]).Error; err != nil {
			return fmt.Errorf("rollback restore events: %w", err)
		}
	}
	for i := range snap.Summaries {
		if err := db.Create(&snap.Summaries[i]).Error; err != nil {
			return fmt.Errorf("rollback restore summaries: %w", err)
		}
	}

	// verifikasi: jumlah baris pasca-restore == jumlah di snapshot
	wantLegacy, wantEvent, wantSummary := snap.Counts()
	checks := []struct {
		model any
		where string
		want  int
	}{
		{&legacy.LegacyStudentAttendanceModel{}, "legacy_student_attendance_school_id = ?", wantLegacy},
		{&attmodel.AttendanceEventModel{}, "attendance_event_school_id = ?", wantEvent},
		{&attmodel.AttendanceSummaryModel{}, "attendance_summary_school_id = ?", wantSummary},
	}
	for _, chk := range checks {
		var got int64
		if err := db.Model(chk.model).Where(chk.where, snap.SchoolID).Count(&got).Error; err != nil {
			return fmt.Errorf("rollback verifikasi: %w", err)
		}
		if int(got) != chk.want {
			return fmt.Errorf("rollback verifikasi: jumlah baris %T = %d, snapshot %d", chk.model, got, chk.want)
		}
	}

	res.Logf("rollback: restore %d legacy, %d event, %d summary", wantLegacy, wantEvent, wantSummary)
	o.Audit.LogWithRetry(db, snap.SchoolID, nil, attmodel.AuditRollback,
		nil, map[string]any{"backup_file": res.BackupFile, "run_id": res.RunID},
		attmodel.SystemActor(), "rollback migrasi")
	return nil
}
