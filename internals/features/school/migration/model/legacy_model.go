// file: internals/features/school/migration/model/legacy_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================================================
   MODEL: legacy_student_attendances (skema lama)
   Satu baris per (student, subject) dengan array record
   embedded di JSONB; input stage Transform, tidak dipakai
   jalur runtime lain.
========================================================= */

type LegacyStudentAttendanceModel struct {
	LegacyStudentAttendanceID       uuid.UUID `gorm:"type:uuid;primaryKey;column:legacy_student_attendance_id" json:"legacy_student_attendance_id"`
	LegacyStudentAttendanceSchoolID uuid.UUID `gorm:"type:uuid;not null;column:legacy_student_attendance_school_id;index:idx_legacy_attendance_school" json:"legacy_student_attendance_school_id"`

	LegacyStudentAttendanceStudentID uuid.UUID `gorm:"type:uuid;not null;column:legacy_student_attendance_student_id" json:"legacy_student_attendance_student_id"`
	LegacyStudentAttendanceSubjectID uuid.UUID `gorm:"type:uuid;not null;column:legacy_student_attendance_subject_id" json:"legacy_student_attendance_subject_id"`

	// array dari {date, session, status}
	LegacyStudentAttendanceRecords datatypes.JSON `gorm:"type:jsonb;column:legacy_student_attendance_records" json:"legacy_student_attendance_records"`

	LegacyStudentAttendanceCreatedAt time.Time `gorm:"column:legacy_student_attendance_created_at;autoCreateTime" json:"legacy_student_attendance_created_at"`
}

func (LegacyStudentAttendanceModel) TableName() string { return "legacy_student_attendances" }

func (m *LegacyStudentAttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.LegacyStudentAttendanceID == uuid.Nil {
		m.LegacyStudentAttendanceID = uuid.New()
	}
	return nil
}

// LegacyRecord: satu entri embedded di kolom records.
type LegacyRecord struct {
	Date    string `json:"date"`    // YYYY-MM-DD
	Session string `json:"session"` // label sesi lama, mis. "lecture_1"
	Status  string `json:"status"`  // present|absent|late|excused
}
