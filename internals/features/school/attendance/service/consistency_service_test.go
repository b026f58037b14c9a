// file: internals/features/school/attendance/service/consistency_service_test.go
package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	model "sekolahku_backend/internals/features/school/attendance/model"
	"sekolahku_backend/internals/testutil"
)

func seedEvent(t *testing.T, db *gorm.DB, f testutil.Fixture, day int, session academics.SessionLabel, status model.AttendanceStatus) {
	t.Helper()
	require.NoError(t, db.Create(&model.AttendanceEventModel{
		AttendanceEventSchoolID:  f.SchoolID,
		AttendanceEventStudentID: f.StudentID,
		AttendanceEventClassID:   f.ClassID,
		AttendanceEventSubjectID: f.SubjectID,
		AttendanceEventDate:      time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		AttendanceEventSession:   session,
		AttendanceEventTeacherID: f.TeacherID,
		AttendanceEventStatus:    status,
		AttendanceEventMarkedBy:  f.TeacherID,
	}).Error)
}

func TestRecomputeMatchesLedger(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewConsistencyService()

	seedEvent(t, db, f, 1, academics.SessionLecture1, model.AttendancePresent)
	seedEvent(t, db, f, 2, academics.SessionLecture1, model.AttendancePresent)
	seedEvent(t, db, f, 3, academics.SessionLecture1, model.AttendanceAbsent)
	seedEvent(t, db, f, 4, academics.SessionLecture1, model.AttendanceLate)

	sum, err := svc.Recompute(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)

	assert.Equal(t, 4, sum.AttendanceSummaryTotal)
	assert.Equal(t, 2, sum.AttendanceSummaryPresent)
	assert.Equal(t, 1, sum.AttendanceSummaryAbsent)
	assert.Equal(t, 1, sum.AttendanceSummaryLate)
	assert.Equal(t, 0, sum.AttendanceSummaryExcused)
	assert.Equal(t, 62.5, sum.AttendanceSummaryPercentage)
}

func TestRecomputeIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewConsistencyService()

	seedEvent(t, db, f, 1, academics.SessionLecture1, model.AttendancePresent)

	first, err := svc.Recompute(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)
	second, err := svc.Recompute(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)

	assert.Equal(t, first.AttendanceSummaryID, second.AttendanceSummaryID)
	assert.Equal(t, first.AttendanceSummaryTotal, second.AttendanceSummaryTotal)
	assert.Equal(t, first.AttendanceSummaryPercentage, second.AttendanceSummaryPercentage)

	var n int64
	require.NoError(t, db.Model(&model.AttendanceSummaryModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "recompute berulang tidak boleh menambah baris")
}

func TestRecomputeEmptyLedgerCreatesZeroRow(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewConsistencyService()

	sum, err := svc.Recompute(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.AttendanceSummaryTotal)
	assert.Equal(t, 0.0, sum.AttendanceSummaryPercentage)
}

func TestInitializeDoesNotTouchExisting(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewConsistencyService()

	seedEvent(t, db, f, 1, academics.SessionLecture1, model.AttendancePresent)
	existing, err := svc.Recompute(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)
	require.Equal(t, 1, existing.AttendanceSummaryTotal)

	got, err := svc.Initialize(db, f.SchoolID, f.StudentID, f.SubjectID, f.ClassID)
	require.NoError(t, err)
	assert.Equal(t, existing.AttendanceSummaryID, got.AttendanceSummaryID)
	assert.Equal(t, 1, got.AttendanceSummaryTotal, "Initialize tidak boleh menimpa baris existing")
}

func TestBulkRecomputeCoversAllKeys(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewConsistencyService()

	other := testutil.SeedStudent(t, db, f.SchoolID, f.ClassID, f.SubjectID, "CSE2021002")
	seedEvent(t, db, f, 1, academics.SessionLecture1, model.AttendancePresent)
	require.NoError(t, db.Create(&model.AttendanceEventModel{
		AttendanceEventSchoolID:  f.SchoolID,
		AttendanceEventStudentID: other,
		AttendanceEventClassID:   f.ClassID,
		AttendanceEventSubjectID: f.SubjectID,
		AttendanceEventDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		AttendanceEventSession:   academics.SessionLecture1,
		AttendanceEventTeacherID: f.TeacherID,
		AttendanceEventStatus:    model.AttendanceAbsent,
		AttendanceEventMarkedBy:  f.TeacherID,
	}).Error)

	ok, issues, err := svc.BulkRecompute(db, f.SchoolID)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, 2, ok)

	var n int64
	require.NoError(t, db.Model(&model.AttendanceSummaryModel{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
