// file: internals/features/school/academics/model/subject_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================================================
   ENUMS: session label
   Label sesi pertemuan (CHECK di DB).
========================================================= */

type SessionLabel string

const (
	SessionLecture1 SessionLabel = "lecture_1"
	SessionLecture2 SessionLabel = "lecture_2"
	SessionLecture3 SessionLabel = "lecture_3"
	SessionLecture4 SessionLabel = "lecture_4"
	SessionLab      SessionLabel = "lab"
	SessionTutorial SessionLabel = "tutorial"
)

func (s SessionLabel) Valid() bool {
	switch s {
	case SessionLecture1, SessionLecture2, SessionLecture3, SessionLecture4, SessionLab, SessionTutorial:
		return true
	default:
		return false
	}
}

/* =========================================================
   MODEL: subjects
   subject_session_labels = array JSON label yang diizinkan;
   kosong/null artinya semua label valid boleh dipakai.
========================================================= */

type SubjectModel struct {
	SubjectID       uuid.UUID `gorm:"type:uuid;primaryKey;column:subject_id" json:"subject_id"`
	SubjectSchoolID uuid.UUID `gorm:"type:uuid;not null;column:subject_school_id;uniqueIndex:uq_subject_school_code" json:"subject_school_id"`

	SubjectCode string `gorm:"type:varchar(40);not null;column:subject_code;uniqueIndex:uq_subject_school_code" json:"subject_code"`
	SubjectName string `gorm:"type:varchar(160);not null;column:subject_name" json:"subject_name"`

	SubjectSessionLabels datatypes.JSON `gorm:"column:subject_session_labels" json:"subject_session_labels,omitempty"`

	SubjectCreatedAt time.Time `gorm:"column:subject_created_at;autoCreateTime" json:"subject_created_at"`
	SubjectUpdatedAt time.Time `gorm:"column:subject_updated_at;autoUpdateTime" json:"subject_updated_at"`
}

func (SubjectModel) TableName() string { return "subjects" }

func (m *SubjectModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubjectID == uuid.Nil {
		m.SubjectID = uuid.New()
	}
	return nil
}

// AllowsSession: cek konfigurasi sesi subject.
func (m SubjectModel) AllowsSession(label SessionLabel) bool {
	if !label.Valid() {
		return false
	}
	if len(m.SubjectSessionLabels) == 0 {
		return true // tidak dikonfigurasi → semua label valid
	}
	var allowed []SessionLabel
	if err := json.Unmarshal(m.SubjectSessionLabels, &allowed); err != nil {
		return true
	}
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == label {
			return true
		}
	}
	return false
}
