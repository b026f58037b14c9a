// file: internals/features/school/attendance/service/consistency_service.go
package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "sekolahku_backend/internals/features/school/attendance/model"
)

/* =========================================================
   ConsistencyService: satu-satunya penulis attendance_summaries.
   Selalu recompute-from-source (hitung ulang dari ledger),
   tidak pernah patch delta — menghindari drift.
========================================================= */

type ConsistencyService struct{}

func NewConsistencyService() *ConsistencyService { return &ConsistencyService{} }

// RecomputeIssue: error per kunci pada operasi maintenance, dikumpulkan
// tanpa menghentikan batch.
type RecomputeIssue struct {
	StudentID uuid.UUID `json:"student_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	ClassID   uuid.UUID `json:"class_id"`
	Reason    string    `json:"reason"`
}

func (s *ConsistencyService) countLedger(tx *gorm.DB, studentID, subjectID, classID uuid.UUID) (StatusCounts, error) {
	type row struct {
		Status string `gorm:"column:attendance_event_status"`
		Cnt    int64  `gorm:"column:cnt"`
	}
	var rows []row
	err := tx.Table("attendance_events").
		Select("attendance_event_status, COUNT(*) AS cnt").
		Where("attendance_event_student_id = ?", studentID).
		Where("attendance_event_subject_id = ?", subjectID).
		Where("attendance_event_class_id = ?", classID).
		Group("attendance_event_status").
		Find(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var c StatusCounts
	for _, r := range rows {
		switch model.AttendanceStatus(r.Status) {
		case model.AttendancePresent:
			c.Present = int(r.Cnt)
		case model.AttendanceAbsent:
			c.Absent = int(r.Cnt)
		case model.AttendanceLate:
			c.Late = int(r.Cnt)
		case model.AttendanceExcused:
			c.Excused = int(r.Cnt)
		}
	}
	return c, nil
}

var summaryUpsertColumns = []string{
	"attendance_summary_total",
	"attendance_summary_present",
	"attendance_summary_absent",
	"attendance_summary_late",
	"attendance_summary_excused",
	"attendance_summary_percentage",
	"attendance_summary_calculated_at",
}

// Recompute menghitung ulang satu baris agregat murni dari ledger saat ini
// (baca → turunkan → tulis dalam satu lintasan), lalu upsert baris tunggal
// untuk kunci (student, subject, class). Idempoten.
func (s *ConsistencyService) Recompute(tx *gorm.DB, schoolID, studentID, subjectID, classID uuid.UUID) (model.AttendanceSummaryModel, error) {
	counts, err := s.countLedger(tx, studentID, subjectID, classID)
	if err != nil {
		return model.AttendanceSummaryModel{}, err
	}

	rec := DeriveSummary(schoolID, studentID, subjectID, classID, counts, time.Now().UTC())
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "attendance_summary_student_id"},
			{Name: "attendance_summary_subject_id"},
			{Name: "attendance_summary_class_id"},
		},
		DoUpdates: clause.AssignmentColumns(summaryUpsertColumns),
	}).Create(&rec).Error; err != nil {
		return model.AttendanceSummaryModel{}, err
	}

	var out model.AttendanceSummaryModel
	err = tx.Where("attendance_summary_student_id = ?", studentID).
		Where("attendance_summary_subject_id = ?", subjectID).
		Where("attendance_summary_class_id = ?", classID).
		Take(&out).Error
	return out, err
}

// Initialize membuat agregat nol kalau belum ada; baris existing tidak
// disentuh (idempoten). Dipakai saat siswa baru di-enroll, sebelum ada event.
func (s *ConsistencyService) Initialize(tx *gorm.DB, schoolID, studentID, subjectID, classID uuid.UUID) (model.AttendanceSummaryModel, error) {
	rec := DeriveSummary(schoolID, studentID, subjectID, classID, StatusCounts{}, time.Now().UTC())
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "attendance_summary_student_id"},
			{Name: "attendance_summary_subject_id"},
			{Name: "attendance_summary_class_id"},
		},
		DoNothing: true,
	}).Create(&rec).Error; err != nil {
		return model.AttendanceSummaryModel{}, err
	}

	var out model.AttendanceSummaryModel
	err := tx.Where("attendance_summary_student_id = ?", studentID).
		Where("attendance_summary_subject_id = ?", subjectID).
		Where("attendance_summary_class_id = ?", classID).
		Take(&out).Error
	return out, err
}

type summaryKey struct {
	StudentID uuid.UUID `gorm:"column:attendance_event_student_id"`
	SubjectID uuid.UUID `gorm:"column:attendance_event_subject_id"`
	ClassID   uuid.UUID `gorm:"column:attendance_event_class_id"`
	SchoolID  uuid.UUID `gorm:"column:attendance_event_school_id"`
}

func (s *ConsistencyService) recomputeKeys(tx *gorm.DB, keys []summaryKey) (int, []RecomputeIssue) {
	ok := 0
	var issues []RecomputeIssue
	for _, k := range keys {
		if _, err := s.Recompute(tx, k.SchoolID, k.StudentID, k.SubjectID, k.ClassID); err != nil {
			issues = append(issues, RecomputeIssue{
				StudentID: k.StudentID,
				SubjectID: k.SubjectID,
				ClassID:   k.ClassID,
				Reason:    err.Error(),
			})
			continue
		}
		ok++
	}
	return ok, issues
}

// RecomputeForClassSubject: maintenance untuk satu (class, subject) —
// semua kunci yang punya minimal satu event dihitung ulang.
func (s *ConsistencyService) RecomputeForClassSubject(tx *gorm.DB, classID, subjectID uuid.UUID) (int, []RecomputeIssue, error) {
	var keys []summaryKey
	err := tx.Table("attendance_events").
		Distinct("attendance_event_student_id", "attendance_event_subject_id", "attendance_event_class_id", "attendance_event_school_id").
		Where("attendance_event_class_id = ?", classID).
		Where("attendance_event_subject_id = ?", subjectID).
		Find(&keys).Error
	if err != nil {
		return 0, nil, err
	}
	ok, issues := s.recomputeKeys(tx, keys)
	return ok, issues, nil
}

// BulkRecompute: maintenance satu tenant penuh; dipakai Migration
// Orchestrator dan remediasi manual.
func (s *ConsistencyService) BulkRecompute(tx *gorm.DB, schoolID uuid.UUID) (int, []RecomputeIssue, error) {
	var keys []summaryKey
	err := tx.Table("attendance_events").
		Distinct("attendance_event_student_id", "attendance_event_subject_id", "attendance_event_class_id", "attendance_event_school_id").
		Where("attendance_event_school_id = ?", schoolID).
		Find(&keys).Error
	if err != nil {
		return 0, nil, err
	}
	ok, issues := s.recomputeKeys(tx, keys)
	return ok, issues, nil
}
