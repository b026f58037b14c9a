// file: internals/features/school/migration/service/validate.go
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	attsvc "sekolahku_backend/internals/features/school/attendance/service"
)

// batas sampel pengecekan aritmetika agregat-vs-ledger
const validateSampleLimit = 50

// ValidationReport: temuan satu lintasan validasi.
type ValidationReport struct {
	OrphanEventIDs  []uuid.UUID `json:"orphan_event_ids"`
	InvalidEnumIDs  []uuid.UUID `json:"invalid_enum_ids"`
	DuplicateKeys   int         `json:"duplicate_keys"`
	ArithmeticDrift int         `json:"arithmetic_drift"`
	ErrorCount      int         `json:"error_count"`
	WarningCount    int         `json:"warning_count"`
}

/* =========================================================
   Validate: empat kelas pengecekan —
   1. referensi yatim (event menunjuk siswa/subject/kelas hilang)
   2. nilai enum di luar domain
   3. kunci ledger duplikat (harusnya mustahil, index unik)
   4. agregat vs hitung-ulang ledger pada sampel terbatas
========================================================= */

func (o *MigrationOrchestrator) Validate(db *gorm.DB, res *MigrationResult) (*ValidationReport, error) {
	rep := &ValidationReport{}

	orphanQueries := []struct {
		label string
		sql   string
	}{
		{"siswa", `attendance_event_student_id NOT IN (SELECT student_id FROM students)`},
		{"subject", `attendance_event_subject_id NOT IN (SELECT subject_id FROM subjects)`},
		{"kelas", `attendance_event_class_id NOT IN (SELECT class_id FROM classes)`},
	}
	for _, q := range orphanQueries {
		var ids []uuid.UUID
		err := db.Model(&attmodel.AttendanceEventModel{}).
			Where("attendance_event_school_id = ?", res.SchoolID).
			Where(q.sql).
			Pluck("attendance_event_id", &ids).Error
		if err != nil {
			return nil, fmt.Errorf("validate orphan %s: %w", q.label, err)
		}
		if len(ids) > 0 {
			rep.OrphanEventIDs = append(rep.OrphanEventIDs, ids...)
			rep.ErrorCount += len(ids)
			res.Errorf("validate: %d event menunjuk %s yang tidak ada", len(ids), q.label)
		}
	}

	var badEnum []uuid.UUID
	err := db.Model(&attmodel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ?", res.SchoolID).
		Where("attendance_event_status NOT IN ?", []string{"present", "absent", "late", "excused"}).
		Pluck("attendance_event_id", &badEnum).Error
	if err != nil {
		return nil, fmt.Errorf("validate enum: %w", err)
	}
	if len(badEnum) > 0 {
		rep.InvalidEnumIDs = badEnum
		rep.ErrorCount += len(badEnum)
		res.Errorf("validate: %d event dengan status di luar domain", len(badEnum))
	}

	type dupRow struct {
		Cnt int64 `gorm:"column:cnt"`
	}
	var dups []dupRow
	err = db.Table("attendance_events").
		Select("COUNT(*) AS cnt").
		Where("attendance_event_school_id = ?", res.SchoolID).
		Group("attendance_event_student_id, attendance_event_class_id, attendance_event_subject_id, attendance_event_date, attendance_event_session").
		Having("COUNT(*) > 1").
		Find(&dups).Error
	if err != nil {
		return nil, fmt.Errorf("validate duplikat: %w", err)
	}
	if len(dups) > 0 {
		rep.DuplicateKeys = len(dups)
		rep.ErrorCount += len(dups)
		res.Errorf("validate: %d kunci ledger duplikat", len(dups))
	}

	// sampel: hitung ulang beberapa summary langsung dari ledger
	var sums []attmodel.AttendanceSummaryModel
	err = db.Where("attendance_summary_school_id = ?", res.SchoolID).
		Limit(validateSampleLimit).
		Find(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("validate sampel: %w", err)
	}
	for _, sum := range sums {
		counts, cerr := o.countKey(db, sum.AttendanceSummaryStudentID, sum.AttendanceSummarySubjectID, sum.AttendanceSummaryClassID)
		if cerr != nil {
			return nil, fmt.Errorf("validate sampel: %w", cerr)
		}
		if counts.Total() != sum.AttendanceSummaryTotal ||
			counts.Present != sum.AttendanceSummaryPresent ||
			counts.Absent != sum.AttendanceSummaryAbsent ||
			counts.Late != sum.AttendanceSummaryLate ||
			counts.Excused != sum.AttendanceSummaryExcused {
			rep.ArithmeticDrift++
			rep.ErrorCount++
			res.Errorf("validate: agregat (%s,%s,%s) tidak cocok dengan ledger",
				sum.AttendanceSummaryStudentID, sum.AttendanceSummarySubjectID, sum.AttendanceSummaryClassID)
		}
	}

	rep.WarningCount = len(res.Warnings)
	res.Stats.ValidationErrors = rep.ErrorCount
	res.Stats.ValidationWarns = rep.WarningCount
	res.Logf("validate: %d error, %d warning (sampel agregat %d baris)", rep.ErrorCount, rep.WarningCount, len(sums))
	return rep, nil
}

func (o *MigrationOrchestrator) countKey(db *gorm.DB, studentID, subjectID, classID uuid.UUID) (attsvc.StatusCounts, error) {
	var c attsvc.StatusCounts
	type row struct {
		Status string `gorm:"column:attendance_event_status"`
		Cnt    int64  `gorm:"column:cnt"`
	}
	var rows []row
	err := db.Table("attendance_events").
		Select("attendance_event_status, COUNT(*) AS cnt").
		Where("attendance_event_student_id = ?", studentID).
		Where("attendance_event_subject_id = ?", subjectID).
		Where("attendance_event_class_id = ?", classID).
		Group("attendance_event_status").
		Find(&rows).Error
	if err != nil {
		return c, err
	}
	for _, r := range rows {
		switch attmodel.AttendanceStatus(r.Status) {
		case attmodel.AttendancePresent:
			c.Present = int(r.Cnt)
		case attmodel.AttendanceAbsent:
			c.Absent = int(r.Cnt)
		case attmodel.AttendanceLate:
			c.Late = int(r.Cnt)
		case attmodel.AttendanceExcused:
			c.Excused = int(r.Cnt)
		}
	}
	return c, nil
}

/* =========================================================
   AutoFix: hapus orphan (diaudit), dedupe dengan baris yang
   terakhir di-mark menang, lalu recompute penuh. Caller
   wajib revalidate setelahnya.
========================================================= */

func (o *MigrationOrchestrator) AutoFix(db *gorm.DB, res *MigrationResult, rep *ValidationReport) error {
	for _, id := range rep.OrphanEventIDs {
		if err := o.deleteEventWithSummary(db, res, id, "autofix: referensi yatim"); err != nil {
			return err
		}
	}
	for _, id := range rep.InvalidEnumIDs {
		if err := o.deleteEventWithSummary(db, res, id, "autofix: status di luar domain"); err != nil {
			return err
		}
	}

	if rep.DuplicateKeys > 0 {
		if err := o.dedupeLedger(db, res); err != nil {
			return err
		}
	}

	ok, issues, err := o.Consistency.BulkRecompute(db, res.SchoolID)
	if err != nil {
		return fmt.Errorf("autofix recompute: %w", err)
	}
	for _, is := range issues {
		res.Warnf("autofix recompute gagal (%s,%s,%s): %s", is.StudentID, is.SubjectID, is.ClassID, is.Reason)
	}
	res.Logf("autofix: %d perbaikan, %d agregat dihitung ulang", res.Stats.AutoFixed, ok)
	return nil
}

// deleteEventWithSummary menghapus satu event bermasalah beserta baris
// agregat kuncinya (kalau kunci masih punya event lain, BulkRecompute
// membuatnya ulang). Penghapusan diaudit sebagai aksi system.
func (o *MigrationOrchestrator) deleteEventWithSummary(db *gorm.DB, res *MigrationResult, id uuid.UUID, reason string) error {
	var ev attmodel.AttendanceEventModel
	if err := db.Where("attendance_event_id = ?", id).Take(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// sudah hilang (mis. terhapus fix sebelumnya), bukan kegagalan
			return nil
		}
		return fmt.Errorf("autofix baca event: %w", err)
	}
	if err := db.Delete(&attmodel.AttendanceEventModel{}, "attendance_event_id = ?", id).Error; err != nil {
		return fmt.Errorf("autofix hapus event: %w", err)
	}
	if err := db.Delete(&attmodel.AttendanceSummaryModel{},
		"attendance_summary_student_id = ? AND attendance_summary_subject_id = ? AND attendance_summary_class_id = ?",
		ev.AttendanceEventStudentID, ev.AttendanceEventSubjectID, ev.AttendanceEventClassID).Error; err != nil {
		return fmt.Errorf("autofix hapus agregat: %w", err)
	}
	o.Audit.LogWithRetry(db, res.SchoolID, &id, attmodel.AuditDelete,
		ev, nil, attmodel.SystemActor(), reason)
	res.Stats.AutoFixed++
	return nil
}

// dedupeLedger: untuk tiap kunci duplikat, pertahankan baris dengan
// marked_at terbaru, sisanya dihapus + diaudit.
func (o *MigrationOrchestrator) dedupeLedger(db *gorm.DB, res *MigrationResult) error {
	var events []attmodel.AttendanceEventModel
	err := db.Where("attendance_event_school_id = ?", res.SchoolID).
		Order("attendance_event_marked_at DESC").
		Find(&events).Error
	if err != nil {
		return fmt.Errorf("autofix dedupe: %w", err)
	}

	type key struct {
		Student, Class, Subject uuid.UUID
		Date                    string
		Session                 string
	}
	seen := make(map[key]struct{}, len(events))
	for _, ev := range events {
		k := key{
			Student: ev.AttendanceEventStudentID,
			Class:   ev.AttendanceEventClassID,
			Subject: ev.AttendanceEventSubjectID,
			Date:    ev.AttendanceEventDate.Format("2006-01-02"),
			Session: string(ev.AttendanceEventSession),
		}
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			continue
		}
		if err := db.Delete(&attmodel.AttendanceEventModel{}, "attendance_event_id = ?", ev.AttendanceEventID).Error; err != nil {
			return fmt.Errorf("autofix dedupe hapus: %w", err)
		}
		id := ev.AttendanceEventID
		o.Audit.LogWithRetry(db, res.SchoolID, &id, attmodel.AuditDelete,
			ev, nil, attmodel.SystemActor(), "autofix: dedupe kunci ledger")
		res.Stats.AutoFixed++
	}
	return nil
}
