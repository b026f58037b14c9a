// file: internals/features/school/migration/service/orchestrator_test.go
package service

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	legacy "sekolahku_backend/internals/features/school/migration/model"
	"sekolahku_backend/internals/testutil"
)

func newOrchestrator(t *testing.T) *MigrationOrchestrator {
	t.Helper()
	o := NewMigrationOrchestrator()
	o.BackupDir = t.TempDir()
	return o
}

func seedLegacy(t *testing.T, db *gorm.DB, f testutil.Fixture, records string) {
	t.Helper()
	require.NoError(t, db.Create(&legacy.LegacyStudentAttendanceModel{
		LegacyStudentAttendanceSchoolID:  f.SchoolID,
		LegacyStudentAttendanceStudentID: f.StudentID,
		LegacyStudentAttendanceSubjectID: f.SubjectID,
		LegacyStudentAttendanceRecords:   datatypes.JSON(records),
	}).Error)
}

func TestRunFullPipeline(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	seedLegacy(t, db, f, `[
		{"date":"2026-03-02","session":"lecture_1","status":"present"},
		{"date":"2026-03-03","session":"lecture_1","status":"present"},
		{"date":"2026-03-04","session":"lecture_1","status":"absent"},
		{"date":"2026-03-05","session":"lecture_1","status":"late"}
	]`)

	res := o.Run(db, f.SchoolID, RunOptions{})
	require.Equal(t, MigrationDone, res.Status)
	assert.Equal(t, 1, res.Stats.LegacyRows)
	assert.Equal(t, 4, res.Stats.EventsCreated)
	assert.Equal(t, 0, res.Stats.EventsSkipped)
	assert.NotEmpty(t, res.BackupFile)
	assert.NotEmpty(t, res.ReportFile)
	assert.FileExists(t, res.BackupFile)
	assert.FileExists(t, res.ReportFile)

	// guru di-infer dari assignment (subject, kelas siswa)
	var ev attmodel.AttendanceEventModel
	require.NoError(t, db.Where("attendance_event_school_id = ?", f.SchoolID).First(&ev).Error)
	assert.Equal(t, f.TeacherID, ev.AttendanceEventTeacherID)

	// agregat diturunkan dari ledger hasil transform
	var sum attmodel.AttendanceSummaryModel
	require.NoError(t, db.Where("attendance_summary_school_id = ?", f.SchoolID).Take(&sum).Error)
	assert.Equal(t, 4, sum.AttendanceSummaryTotal)
	assert.Equal(t, 62.5, sum.AttendanceSummaryPercentage)

	// run tercatat di audit
	var auditN int64
	require.NoError(t, db.Model(&attmodel.AttendanceAuditLogModel{}).
		Where("attendance_audit_log_action = ?", attmodel.AuditMigration).Count(&auditN).Error)
	assert.EqualValues(t, 1, auditN)
}

func TestTransformSkipsUnattributableRecords(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	// subject tanpa assignment guru → semua record baris ini di-skip
	orphanSubject := uuid.New()
	require.NoError(t, db.Create(&legacy.LegacyStudentAttendanceModel{
		LegacyStudentAttendanceSchoolID:  f.SchoolID,
		LegacyStudentAttendanceStudentID: f.StudentID,
		LegacyStudentAttendanceSubjectID: orphanSubject,
		LegacyStudentAttendanceRecords:   datatypes.JSON(`[{"date":"2026-03-02","session":"lecture_1","status":"present"}]`),
	}).Error)

	// record dengan status/sesi/tanggal rusak di-skip satuan
	seedLegacy(t, db, f, `[
		{"date":"2026-03-02","session":"lecture_1","status":"present"},
		{"date":"2026-03-03","session":"lecture_1","status":"hadir"},
		{"date":"2026-03-04","session":"sore","status":"present"},
		{"date":"03/05/2026","session":"lecture_1","status":"present"}
	]`)

	// kolom records bukan JSON → baris masuk hitungan rows_skipped
	seedLegacy(t, db, f, `bukan-json`)

	res := o.Run(db, f.SchoolID, RunOptions{})
	require.Equal(t, MigrationDone, res.Status)
	assert.Equal(t, 1, res.Stats.EventsCreated)
	assert.Equal(t, 4, res.Stats.EventsSkipped)
	assert.Equal(t, 2, res.Stats.RowsSkipped) // baris orphan-subject + baris JSON rusak
	assert.True(t, res.HasWarnings())
}

func TestTransformDeduplicatesLegacyRecords(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	seedLegacy(t, db, f, `[
		{"date":"2026-03-02","session":"lecture_1","status":"present"},
		{"date":"2026-03-02","session":"lecture_1","status":"absent"}
	]`)

	res := o.Run(db, f.SchoolID, RunOptions{})
	require.Equal(t, MigrationDone, res.Status)
	assert.Equal(t, 1, res.Stats.EventsCreated)
	assert.Equal(t, 1, res.Stats.EventsSkipped)

	// baris pertama menang
	var ev attmodel.AttendanceEventModel
	require.NoError(t, db.Where("attendance_event_school_id = ?", f.SchoolID).Take(&ev).Error)
	assert.Equal(t, attmodel.AttendancePresent, ev.AttendanceEventStatus)
}

func TestRollbackRestoresExactCounts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	seedLegacy(t, db, f, `[{"date":"2026-03-02","session":"lecture_1","status":"present"}]`)

	res := NewMigrationResult(f.SchoolID)
	snap, err := o.Backup(db, res)
	require.NoError(t, err)
	require.NoError(t, o.Transform(db, res))

	// transform sudah mengisi skema baru
	var eventN int64
	require.NoError(t, db.Model(&attmodel.AttendanceEventModel{}).Count(&eventN).Error)
	require.EqualValues(t, 1, eventN)

	require.NoError(t, o.Rollback(db, snap, res))

	// skema baru kosong lagi, legacy utuh
	require.NoError(t, db.Model(&attmodel.AttendanceEventModel{}).Count(&eventN).Error)
	assert.EqualValues(t, 0, eventN)

	var summaryN int64
	require.NoError(t, db.Model(&attmodel.AttendanceSummaryModel{}).Count(&summaryN).Error)
	assert.EqualValues(t, 0, summaryN)

	var legacyN int64
	require.NoError(t, db.Model(&legacy.LegacyStudentAttendanceModel{}).Count(&legacyN).Error)
	assert.EqualValues(t, 1, legacyN)
}

func TestRollbackFromFile(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	seedLegacy(t, db, f, `[{"date":"2026-03-02","session":"lecture_1","status":"present"}]`)

	run := o.Run(db, f.SchoolID, RunOptions{})
	require.Equal(t, MigrationDone, run.Status)
	require.FileExists(t, run.BackupFile)

	res, err := o.RollbackFromFile(db, run.BackupFile)
	require.NoError(t, err)
	assert.Equal(t, MigrationRolledBack, res.Status)

	var eventN int64
	require.NoError(t, db.Model(&attmodel.AttendanceEventModel{}).
		Where("attendance_event_school_id = ?", f.SchoolID).Count(&eventN).Error)
	assert.EqualValues(t, 0, eventN)
}

func TestValidateOnlyCleanTenant(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	res, rep, err := o.ValidateOnly(db, f.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, MigrationValidated, res.Status)
	assert.Equal(t, 0, rep.ErrorCount)
}

func TestValidateDetectsOrphanAndDrift(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	// event yatim: siswa tidak ada
	require.NoError(t, db.Create(&attmodel.AttendanceEventModel{
		AttendanceEventSchoolID:  f.SchoolID,
		AttendanceEventStudentID: uuid.New(),
		AttendanceEventClassID:   f.ClassID,
		AttendanceEventSubjectID: f.SubjectID,
		AttendanceEventDate:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		AttendanceEventSession:   "lecture_1",
		AttendanceEventTeacherID: f.TeacherID,
		AttendanceEventStatus:    attmodel.AttendancePresent,
		AttendanceEventMarkedBy:  f.TeacherID,
	}).Error)

	// agregat yang tidak cocok dengan ledger
	require.NoError(t, db.Create(&attmodel.AttendanceSummaryModel{
		AttendanceSummarySchoolID:     f.SchoolID,
		AttendanceSummaryStudentID:    f.StudentID,
		AttendanceSummarySubjectID:    f.SubjectID,
		AttendanceSummaryClassID:      f.ClassID,
		AttendanceSummaryTotal:        9,
		AttendanceSummaryPresent:      9,
		AttendanceSummaryPercentage:   100,
		AttendanceSummaryCalculatedAt: time.Now().UTC(),
	}).Error)

	res := NewMigrationResult(f.SchoolID)
	rep, err := o.Validate(db, res)
	require.NoError(t, err)
	assert.Len(t, rep.OrphanEventIDs, 1)
	assert.Equal(t, 1, rep.ArithmeticDrift)
	assert.GreaterOrEqual(t, rep.ErrorCount, 2)
}

func TestAutoFixResolvesOrphans(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	seedLegacy(t, db, f, `[{"date":"2026-03-02","session":"lecture_1","status":"present"}]`)

	// kotoran pra-migrasi: event yatim yang akan membuat validasi gagal
	require.NoError(t, db.Create(&attmodel.AttendanceEventModel{
		AttendanceEventSchoolID:  f.SchoolID,
		AttendanceEventStudentID: uuid.New(),
		AttendanceEventClassID:   f.ClassID,
		AttendanceEventSubjectID: f.SubjectID,
		AttendanceEventDate:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		AttendanceEventSession:   "lecture_1",
		AttendanceEventTeacherID: f.TeacherID,
		AttendanceEventStatus:    attmodel.AttendancePresent,
		AttendanceEventMarkedBy:  f.TeacherID,
	}).Error)

	res := o.Run(db, f.SchoolID, RunOptions{AutoFix: true})
	require.Equal(t, MigrationDone, res.Status)
	assert.GreaterOrEqual(t, res.Stats.AutoFixed, 1)
	assert.True(t, res.HasWarnings()) // warning data existing pra-run

	// tanpa autofix, run yang sama berakhir rollback
	db2 := testutil.OpenTestDB(t)
	f2 := testutil.SeedFixture(t, db2)
	o2 := newOrchestrator(t)
	seedLegacy(t, db2, f2, `[{"date":"2026-03-02","session":"lecture_1","status":"present"}]`)
	require.NoError(t, db2.Create(&attmodel.AttendanceEventModel{
		AttendanceEventSchoolID:  f2.SchoolID,
		AttendanceEventStudentID: uuid.New(),
		AttendanceEventClassID:   f2.ClassID,
		AttendanceEventSubjectID: f2.SubjectID,
		AttendanceEventDate:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		AttendanceEventSession:   "lecture_1",
		AttendanceEventTeacherID: f2.TeacherID,
		AttendanceEventStatus:    attmodel.AttendancePresent,
		AttendanceEventMarkedBy:  f2.TeacherID,
	}).Error)

	res2 := o2.Run(db2, f2.SchoolID, RunOptions{})
	assert.Equal(t, MigrationRolledBack, res2.Status)
}

func TestAutoFixDeleteDistinguishesMissingFromFailure(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)
	res := NewMigrationResult(f.SchoolID)

	// event sudah tidak ada → no-op, bukan error
	require.NoError(t, o.deleteEventWithSummary(db, res, uuid.New(), "autofix: referensi yatim"))
	assert.Equal(t, 0, res.Stats.AutoFixed)

	// kegagalan DB sungguhan harus naik, bukan ditelan
	require.NoError(t, db.Migrator().DropTable(&attmodel.AttendanceEventModel{}))
	assert.Error(t, o.deleteEventWithSummary(db, res, uuid.New(), "autofix: referensi yatim"))
}

func TestBackupFileIsWriteOnce(t *testing.T) {
	db := testutil.OpenTestDB(t)
	f := testutil.SeedFixture(t, db)
	o := newOrchestrator(t)

	res := NewMigrationResult(f.SchoolID)
	snap, err := o.Backup(db, res)
	require.NoError(t, err)

	// menulis ulang snapshot yang sama harus ditolak (O_EXCL)
	_, err = o.writeBackupFile(snap)
	assert.Error(t, err)

	info, err := os.Stat(res.BackupFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
