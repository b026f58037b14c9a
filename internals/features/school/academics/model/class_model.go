// file: internals/features/school/academics/model/class_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================================================
   MODEL: classes
   Jendela term (start..end) membatasi tanggal absensi.
========================================================= */

type ClassModel struct {
	ClassID       uuid.UUID `gorm:"type:uuid;primaryKey;column:class_id" json:"class_id"`
	ClassSchoolID uuid.UUID `gorm:"type:uuid;not null;column:class_school_id;uniqueIndex:uq_class_school_name" json:"class_school_id"`

	ClassName string `gorm:"type:varchar(120);not null;column:class_name;uniqueIndex:uq_class_school_name" json:"class_name"`

	ClassTermStart time.Time `gorm:"type:date;not null;column:class_term_start" json:"class_term_start"`
	ClassTermEnd   time.Time `gorm:"type:date;not null;column:class_term_end" json:"class_term_end"`

	ClassCreatedAt time.Time `gorm:"column:class_created_at;autoCreateTime" json:"class_created_at"`
	ClassUpdatedAt time.Time `gorm:"column:class_updated_at;autoUpdateTime" json:"class_updated_at"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	return nil
}

// InTermWindow: true jika tanggal (sudah dinormalisasi ke midnight UTC) masuk jendela term.
func (m ClassModel) InTermWindow(date time.Time) bool {
	return !date.Before(m.ClassTermStart) && !date.After(m.ClassTermEnd)
}
