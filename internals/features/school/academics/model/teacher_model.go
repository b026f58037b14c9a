// file: internals/features/school/academics/model/teacher_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   MODEL: teachers
========================================================= */

type TeacherModel struct {
	TeacherID       uuid.UUID `gorm:"type:uuid;primaryKey;column:teacher_id" json:"teacher_id"`
	TeacherSchoolID uuid.UUID `gorm:"type:uuid;not null;column:teacher_school_id;uniqueIndex:uq_teacher_school_code" json:"teacher_school_id"`

	TeacherCode string `gorm:"type:varchar(40);not null;column:teacher_code;uniqueIndex:uq_teacher_school_code" json:"teacher_code"`
	TeacherName string `gorm:"type:varchar(160);not null;column:teacher_name" json:"teacher_name"`

	TeacherCreatedAt time.Time `gorm:"column:teacher_created_at;autoCreateTime" json:"teacher_created_at"`
	TeacherUpdatedAt time.Time `gorm:"column:teacher_updated_at;autoUpdateTime" json:"teacher_updated_at"`
}

func (TeacherModel) TableName() string { return "teachers" }

func (m *TeacherModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeacherID == uuid.Nil {
		m.TeacherID = uuid.New()
	}
	return nil
}

/* =========================================================
   MODEL: teacher_assignments (edge teacher × subject × class)
   Input otorisasi: guru hanya boleh menulis event untuk
   (subject, class) yang di-assign kepadanya.
========================================================= */

type TeacherAssignmentModel struct {
	TeacherAssignmentID       uuid.UUID `gorm:"type:uuid;primaryKey;column:teacher_assignment_id" json:"teacher_assignment_id"`
	TeacherAssignmentSchoolID uuid.UUID `gorm:"type:uuid;not null;column:teacher_assignment_school_id" json:"teacher_assignment_school_id"`

	TeacherAssignmentTeacherID uuid.UUID `gorm:"type:uuid;not null;column:teacher_assignment_teacher_id;uniqueIndex:uq_assignment_triple" json:"teacher_assignment_teacher_id"`
	TeacherAssignmentSubjectID uuid.UUID `gorm:"type:uuid;not null;column:teacher_assignment_subject_id;uniqueIndex:uq_assignment_triple" json:"teacher_assignment_subject_id"`
	TeacherAssignmentClassID   uuid.UUID `gorm:"type:uuid;not null;column:teacher_assignment_class_id;uniqueIndex:uq_assignment_triple" json:"teacher_assignment_class_id"`

	TeacherAssignmentCreatedAt time.Time `gorm:"column:teacher_assignment_created_at;autoCreateTime" json:"teacher_assignment_created_at"`
}

func (TeacherAssignmentModel) TableName() string { return "teacher_assignments" }

func (m *TeacherAssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.TeacherAssignmentID == uuid.Nil {
		m.TeacherAssignmentID = uuid.New()
	}
	return nil
}
