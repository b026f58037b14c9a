// file: internals/features/school/academics/model/student_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   MODEL: students
   student_code = identitas manusiawi (mis. "CSE2021001"),
   target pencocokan pola pada bulk assignment.
========================================================= */

type StudentModel struct {
	StudentID       uuid.UUID `gorm:"type:uuid;primaryKey;column:student_id" json:"student_id"`
	StudentSchoolID uuid.UUID `gorm:"type:uuid;not null;column:student_school_id;uniqueIndex:uq_student_school_code" json:"student_school_id"`

	StudentCode string `gorm:"type:varchar(40);not null;column:student_code;uniqueIndex:uq_student_school_code" json:"student_code"`
	StudentName string `gorm:"type:varchar(160);not null;column:student_name" json:"student_name"`

	StudentClassID *uuid.UUID `gorm:"type:uuid;column:student_class_id;index:idx_student_class" json:"student_class_id,omitempty"`

	StudentCreatedAt time.Time `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
}

func (StudentModel) TableName() string { return "students" }

func (m *StudentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentID == uuid.Nil {
		m.StudentID = uuid.New()
	}
	return nil
}

/* =========================================================
   MODEL: student_enrollments (edge student × subject)
   Input otorisasi: event hanya valid jika siswa terdaftar
   pada subject terkait.
========================================================= */

type StudentEnrollmentModel struct {
	StudentEnrollmentID       uuid.UUID `gorm:"type:uuid;primaryKey;column:student_enrollment_id" json:"student_enrollment_id"`
	StudentEnrollmentSchoolID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollment_school_id" json:"student_enrollment_school_id"`

	StudentEnrollmentStudentID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollment_student_id;uniqueIndex:uq_enrollment_student_subject" json:"student_enrollment_student_id"`
	StudentEnrollmentSubjectID uuid.UUID `gorm:"type:uuid;not null;column:student_enrollment_subject_id;uniqueIndex:uq_enrollment_student_subject" json:"student_enrollment_subject_id"`

	StudentEnrollmentCreatedAt time.Time `gorm:"column:student_enrollment_created_at;autoCreateTime" json:"student_enrollment_created_at"`
}

func (StudentEnrollmentModel) TableName() string { return "student_enrollments" }

func (m *StudentEnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.StudentEnrollmentID == uuid.Nil {
		m.StudentEnrollmentID = uuid.New()
	}
	return nil
}
