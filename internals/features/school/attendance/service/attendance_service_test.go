// file: internals/features/school/attendance/service/attendance_service_test.go
package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	model "sekolahku_backend/internals/features/school/attendance/model"
	"sekolahku_backend/internals/testutil"
)

func markReq(f testutil.Fixture, status model.AttendanceStatus) MarkRequest {
	return MarkRequest{
		SchoolID:  f.SchoolID,
		ClassID:   f.ClassID,
		SubjectID: f.SubjectID,
		TeacherID: f.TeacherID,
		StudentID: f.StudentID,
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Session:   academics.SessionLecture1,
		Status:    status,
	}
}

func teacherActor(f testutil.Fixture) model.ActorRef {
	return model.ActorRef{Kind: model.ActorTeacher, ID: f.TeacherID}
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestMarkAttendanceCreate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	res, err := svc.MarkAttendance(db, markReq(f, model.AttendancePresent), teacherActor(f), "sesi pagi")
	require.NoError(t, err)
	assert.Equal(t, MarkActionCreate, res.Action)
	assert.False(t, res.AuditWarning)
	assert.Equal(t, model.AttendancePresent, res.Event.AttendanceEventStatus)

	// agregat langsung konsisten
	var sum model.AttendanceSummaryModel
	require.NoError(t, db.Take(&sum).Error)
	assert.Equal(t, 1, sum.AttendanceSummaryTotal)
	assert.Equal(t, 100.0, sum.AttendanceSummaryPercentage)
}

func TestReMarkSameKeyUpdatesInPlace(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()
	actor := teacherActor(f)

	first, err := svc.MarkAttendance(db, markReq(f, model.AttendanceAbsent), actor, "")
	require.NoError(t, err)
	second, err := svc.MarkAttendance(db, markReq(f, model.AttendancePresent), actor, "koreksi")
	require.NoError(t, err)

	assert.Equal(t, MarkActionCreate, first.Action)
	assert.Equal(t, MarkActionUpdate, second.Action)
	assert.Equal(t, first.Event.AttendanceEventID, second.Event.AttendanceEventID)
	require.NotNil(t, second.Event.AttendanceEventUpdatedBy)
	assert.Equal(t, actor.ID, *second.Event.AttendanceEventUpdatedBy)

	// satu event, dua entri audit (create + update)
	assert.EqualValues(t, 1, countRows(t, db, &model.AttendanceEventModel{}))

	var actions []string
	require.NoError(t, db.Model(&model.AttendanceAuditLogModel{}).
		Order("attendance_audit_log_created_at ASC").
		Pluck("attendance_audit_log_action", &actions).Error)
	assert.Equal(t, []string{"create", "update"}, actions)

	// agregat mengikuti status terakhir
	var sum model.AttendanceSummaryModel
	require.NoError(t, db.Take(&sum).Error)
	assert.Equal(t, 1, sum.AttendanceSummaryTotal)
	assert.Equal(t, 1, sum.AttendanceSummaryPresent)
	assert.Equal(t, 0, sum.AttendanceSummaryAbsent)
}

func TestMarkRejectedWhenTeacherNotAssigned(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	req := markReq(f, model.AttendancePresent)
	req.TeacherID = uuid.New() // guru lain tanpa assignment

	_, err := svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.ErrorIs(t, err, ErrTeacherNotAssigned)

	// ditolak sebelum mutasi apa pun
	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceEventModel{}))
	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceAuditLogModel{}))
	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceSummaryModel{}))
}

func TestMarkRejectedOutsideTermWindow(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	req := markReq(f, model.AttendancePresent)
	req.Date = f.TermEnd.AddDate(0, 1, 0)

	_, err := svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.ErrorIs(t, err, ErrDateOutsideTerm)
}

func TestMarkRejectedInvalidSession(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	req := markReq(f, model.AttendancePresent)
	req.Session = "lecture_9"

	_, err := svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestMarkRejectedNotEnrolled(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	outsider := academics.StudentModel{
		StudentSchoolID: f.SchoolID,
		StudentCode:     "CSE2021099",
		StudentName:     "Siswa Luar",
		StudentClassID:  &f.ClassID,
	}
	require.NoError(t, db.Create(&outsider).Error)

	req := markReq(f, model.AttendancePresent)
	req.StudentID = outsider.StudentID

	_, err := svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.ErrorIs(t, err, ErrStudentNotEnrolled)
}

func TestBulkMarkPartialSuccess(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	enrolled := testutil.SeedStudent(t, db, f.SchoolID, f.ClassID, f.SubjectID, "CSE2021002")
	notEnrolled := uuid.New()

	res, err := svc.BulkMarkAttendance(db, BulkMarkContext{
		SchoolID:  f.SchoolID,
		ClassID:   f.ClassID,
		SubjectID: f.SubjectID,
		TeacherID: f.TeacherID,
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Session:   academics.SessionLecture1,
	}, []BulkMarkItem{
		{StudentID: f.StudentID, Status: model.AttendancePresent},
		{StudentID: enrolled, Status: model.AttendanceLate},
		{StudentID: notEnrolled, Status: model.AttendancePresent},
	}, teacherActor(f), "")
	require.NoError(t, err)

	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, notEnrolled, res.Failed[0].StudentID)
	assert.Equal(t, ErrStudentNotEnrolled.Error(), res.Failed[0].Reason)

	// hanya kunci tersentuh yang punya agregat
	assert.EqualValues(t, 2, countRows(t, db, &model.AttendanceSummaryModel{}))
}

func TestBulkMarkRejectsSharedContextBeforeItems(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	_, err := svc.BulkMarkAttendance(db, BulkMarkContext{
		SchoolID:  f.SchoolID,
		ClassID:   f.ClassID,
		SubjectID: f.SubjectID,
		TeacherID: uuid.New(),
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Session:   academics.SessionLecture1,
	}, []BulkMarkItem{{StudentID: f.StudentID, Status: model.AttendancePresent}}, teacherActor(f), "")

	assert.ErrorIs(t, err, ErrTeacherNotAssigned)
	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceEventModel{}))
}

func TestDeleteAttendanceRecomputes(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()
	actor := teacherActor(f)

	res, err := svc.MarkAttendance(db, markReq(f, model.AttendancePresent), actor, "")
	require.NoError(t, err)

	del, err := svc.DeleteAttendance(db, f.SchoolID, res.Event.AttendanceEventID, actor, "salah input")
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.False(t, del.AuditWarning)

	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceEventModel{}))

	var sum model.AttendanceSummaryModel
	require.NoError(t, db.Take(&sum).Error)
	assert.Equal(t, 0, sum.AttendanceSummaryTotal)
	assert.Equal(t, 0.0, sum.AttendanceSummaryPercentage)

	var actions []string
	require.NoError(t, db.Model(&model.AttendanceAuditLogModel{}).
		Pluck("attendance_audit_log_action", &actions).Error)
	assert.Contains(t, actions, "delete")
}

func TestDeleteAttendanceNotFound(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	del, err := svc.DeleteAttendance(db, f.SchoolID, uuid.New(), teacherActor(f), "")
	assert.False(t, del.Deleted)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteSurfacesRecomputeFailure(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()
	actor := teacherActor(f)

	marked, err := svc.MarkAttendance(db, markReq(f, model.AttendancePresent), actor, "")
	require.NoError(t, err)

	// agregat tidak bisa dihitung ulang → delete tetap terjadi,
	// tapi error recompute harus naik ke caller
	require.NoError(t, db.Migrator().DropTable(&model.AttendanceSummaryModel{}))

	del, err := svc.DeleteAttendance(db, f.SchoolID, marked.Event.AttendanceEventID, actor, "")
	require.Error(t, err)
	assert.True(t, del.Deleted)
	assert.EqualValues(t, 0, countRows(t, db, &model.AttendanceEventModel{}))
}

func TestDeleteSurfacesAuditWarning(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()
	actor := teacherActor(f)

	marked, err := svc.MarkAttendance(db, markReq(f, model.AttendancePresent), actor, "")
	require.NoError(t, err)

	// audit mati total → delete & recompute jalan, warning dilaporkan
	require.NoError(t, db.Migrator().DropTable(&model.AttendanceAuditLogModel{}))

	del, err := svc.DeleteAttendance(db, f.SchoolID, marked.Event.AttendanceEventID, actor, "")
	require.NoError(t, err)
	assert.True(t, del.Deleted)
	assert.True(t, del.AuditWarning)
}

func TestMarkSessionNotAllowedBySubjectConfig(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	svc := NewAttendanceService()

	// batasi subject hanya ke lab
	require.NoError(t, db.Model(&academics.SubjectModel{}).
		Where("subject_id = ?", f.SubjectID).
		Update("subject_session_labels", []byte(`["lab"]`)).Error)

	req := markReq(f, model.AttendancePresent)
	req.Session = academics.SessionLecture1

	_, err := svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.ErrorIs(t, err, ErrSessionNotAllowed)

	req.Session = academics.SessionLab
	_, err = svc.MarkAttendance(db, req, teacherActor(f), "")
	assert.NoError(t, err)
}
