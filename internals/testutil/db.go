// file: internals/testutil/db.go
//
// Helper test: DB sqlite in-memory dengan skema penuh + seeding master
// data minimal. Dipakai oleh suite service di seluruh fitur.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	database "sekolahku_backend/internals/databases"
	academics "sekolahku_backend/internals/features/school/academics/model"
)

// OpenTestDB membuka sqlite in-memory privat per test dan menjalankan
// migrasi skema penuh.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Fixture: satu tenant lengkap — kelas dengan term window aktif, subject,
// guru ter-assign, dan siswa ter-enroll.
type Fixture struct {
	SchoolID  uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	TeacherID uuid.UUID
	StudentID uuid.UUID

	TermStart time.Time
	TermEnd   time.Time
}

func SeedFixture(t *testing.T, db *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		SchoolID:  uuid.New(),
		TermStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TermEnd:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	class := academics.ClassModel{
		ClassSchoolID:  f.SchoolID,
		ClassName:      "X-A",
		ClassTermStart: f.TermStart,
		ClassTermEnd:   f.TermEnd,
	}
	require.NoError(t, db.Create(&class).Error)
	f.ClassID = class.ClassID

	subject := academics.SubjectModel{
		SubjectSchoolID: f.SchoolID,
		SubjectCode:     "MATH",
		SubjectName:     "Matematika",
	}
	require.NoError(t, db.Create(&subject).Error)
	f.SubjectID = subject.SubjectID

	teacher := academics.TeacherModel{
		TeacherSchoolID: f.SchoolID,
		TeacherCode:     "T001",
		TeacherName:     "Bu Sari",
	}
	require.NoError(t, db.Create(&teacher).Error)
	f.TeacherID = teacher.TeacherID

	require.NoError(t, db.Create(&academics.TeacherAssignmentModel{
		TeacherAssignmentSchoolID:  f.SchoolID,
		TeacherAssignmentTeacherID: f.TeacherID,
		TeacherAssignmentSubjectID: f.SubjectID,
		TeacherAssignmentClassID:   f.ClassID,
	}).Error)

	f.StudentID = SeedStudent(t, db, f.SchoolID, f.ClassID, f.SubjectID, "CSE2021001")
	return f
}

// SeedStudent membuat siswa di kelas tertentu dan meng-enroll ke subject.
func SeedStudent(t *testing.T, db *gorm.DB, schoolID, classID, subjectID uuid.UUID, code string) uuid.UUID {
	t.Helper()

	student := academics.StudentModel{
		StudentSchoolID: schoolID,
		StudentCode:     code,
		StudentName:     "Siswa " + code,
		StudentClassID:  &classID,
	}
	require.NoError(t, db.Create(&student).Error)

	require.NoError(t, db.Create(&academics.StudentEnrollmentModel{
		StudentEnrollmentSchoolID:  schoolID,
		StudentEnrollmentStudentID: student.StudentID,
		StudentEnrollmentSubjectID: subjectID,
	}).Error)
	return student.StudentID
}
