// file: internals/features/school/attendance/model/attendance_summary_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   MODEL: attendance_summaries (agregat terderivasi)
   Satu baris per (student, subject, class); hanya ditulis
   oleh ConsistencyService, selalu bisa diturunkan ulang dari
   attendance_events.
========================================================= */

type AttendanceSummaryModel struct {
	AttendanceSummaryID       uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_summary_id" json:"attendance_summary_id"`
	AttendanceSummarySchoolID uuid.UUID `gorm:"type:uuid;not null;column:attendance_summary_school_id;index:idx_attendance_summary_school" json:"attendance_summary_school_id"`

	AttendanceSummaryStudentID uuid.UUID `gorm:"type:uuid;not null;column:attendance_summary_student_id;uniqueIndex:uq_attendance_summary_key" json:"attendance_summary_student_id"`
	AttendanceSummarySubjectID uuid.UUID `gorm:"type:uuid;not null;column:attendance_summary_subject_id;uniqueIndex:uq_attendance_summary_key" json:"attendance_summary_subject_id"`
	AttendanceSummaryClassID   uuid.UUID `gorm:"type:uuid;not null;column:attendance_summary_class_id;uniqueIndex:uq_attendance_summary_key" json:"attendance_summary_class_id"`

	AttendanceSummaryTotal   int `gorm:"not null;default:0;column:attendance_summary_total" json:"attendance_summary_total"`
	AttendanceSummaryPresent int `gorm:"not null;default:0;column:attendance_summary_present" json:"attendance_summary_present"`
	AttendanceSummaryAbsent  int `gorm:"not null;default:0;column:attendance_summary_absent" json:"attendance_summary_absent"`
	AttendanceSummaryLate    int `gorm:"not null;default:0;column:attendance_summary_late" json:"attendance_summary_late"`
	AttendanceSummaryExcused int `gorm:"not null;default:0;column:attendance_summary_excused" json:"attendance_summary_excused"`

	// persentase kebijakan default (standard), 2 desimal, 0..100
	AttendanceSummaryPercentage float64 `gorm:"type:numeric(5,2);not null;default:0;column:attendance_summary_percentage" json:"attendance_summary_percentage"`

	AttendanceSummaryCalculatedAt time.Time `gorm:"column:attendance_summary_calculated_at" json:"attendance_summary_calculated_at"`

	AttendanceSummaryCreatedAt time.Time `gorm:"column:attendance_summary_created_at;autoCreateTime" json:"attendance_summary_created_at"`
	AttendanceSummaryUpdatedAt time.Time `gorm:"column:attendance_summary_updated_at;autoUpdateTime" json:"attendance_summary_updated_at"`
}

func (AttendanceSummaryModel) TableName() string { return "attendance_summaries" }

func (m *AttendanceSummaryModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceSummaryID == uuid.Nil {
		m.AttendanceSummaryID = uuid.New()
	}
	return nil
}
