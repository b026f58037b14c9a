// file: internals/features/school/attendance/model/attendance_event_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
)

/* =========================================================
   ENUMS: status kehadiran
========================================================= */

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

/* =========================================================
   MODEL: attendance_events (ledger)
   Satu baris per (student, class, subject, date, session) —
   unik via uq_attendance_event_key; ini kunci idempotensi
   semua operasi marking.
========================================================= */

type AttendanceEventModel struct {
	AttendanceEventID       uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_event_id" json:"attendance_event_id"`
	AttendanceEventSchoolID uuid.UUID `gorm:"type:uuid;not null;column:attendance_event_school_id;index:idx_attendance_event_school" json:"attendance_event_school_id"`

	AttendanceEventStudentID uuid.UUID `gorm:"type:uuid;not null;column:attendance_event_student_id;uniqueIndex:uq_attendance_event_key" json:"attendance_event_student_id"`
	AttendanceEventClassID   uuid.UUID `gorm:"type:uuid;not null;column:attendance_event_class_id;uniqueIndex:uq_attendance_event_key" json:"attendance_event_class_id"`
	AttendanceEventSubjectID uuid.UUID `gorm:"type:uuid;not null;column:attendance_event_subject_id;uniqueIndex:uq_attendance_event_key" json:"attendance_event_subject_id"`
	AttendanceEventDate      time.Time `gorm:"type:date;not null;column:attendance_event_date;uniqueIndex:uq_attendance_event_key" json:"attendance_event_date"`

	AttendanceEventSession academics.SessionLabel `gorm:"type:varchar(24);not null;column:attendance_event_session;uniqueIndex:uq_attendance_event_key" json:"attendance_event_session"`

	AttendanceEventTeacherID uuid.UUID        `gorm:"type:uuid;not null;column:attendance_event_teacher_id" json:"attendance_event_teacher_id"`
	AttendanceEventStatus    AttendanceStatus `gorm:"type:varchar(16);not null;column:attendance_event_status" json:"attendance_event_status"`

	// siapa mencatat & kapan; updated_* hanya terisi saat re-mark
	AttendanceEventMarkedBy  uuid.UUID  `gorm:"type:uuid;not null;column:attendance_event_marked_by" json:"attendance_event_marked_by"`
	AttendanceEventMarkedAt  time.Time  `gorm:"column:attendance_event_marked_at;autoCreateTime" json:"attendance_event_marked_at"`
	AttendanceEventUpdatedBy *uuid.UUID `gorm:"type:uuid;column:attendance_event_updated_by" json:"attendance_event_updated_by,omitempty"`
	AttendanceEventUpdatedAt *time.Time `gorm:"column:attendance_event_updated_at" json:"attendance_event_updated_at,omitempty"`
}

func (AttendanceEventModel) TableName() string { return "attendance_events" }

func (m *AttendanceEventModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceEventID == uuid.Nil {
		m.AttendanceEventID = uuid.New()
	}
	return nil
}

// NormalizeDate: tanggal event selalu midnight UTC supaya kunci unik deterministik.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
