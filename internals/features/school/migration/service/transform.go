// file: internals/features/school/migration/service/transform.go
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	academics "sekolahku_backend/internals/features/school/academics/model"
	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	legacy "sekolahku_backend/internals/features/school/migration/model"
)

/* =========================================================
   Transform: ledakkan records embedded per baris legacy
   menjadi baris attendance_events. Guru di-infer dari
   assignment (subject, kelas siswa); record yang tidak bisa
   diatribusikan di-skip + warning, stage jalan terus.
========================================================= */

func (o *MigrationOrchestrator) Transform(db *gorm.DB, res *MigrationResult) error {
	var rows []legacy.LegacyStudentAttendanceModel
	if err := db.Where("legacy_student_attendance_school_id = ?", res.SchoolID).
		Find(&rows).Error; err != nil {
		return fmt.Errorf("transform baca legacy: %w", err)
	}
	res.Stats.LegacyRows = len(rows)

	for _, row := range rows {
		if err := o.transformRow(db, res, row); err != nil {
			return err
		}
	}

	// agregat selalu diturunkan ulang dari ledger hasil transform
	ok, issues, err := o.Consistency.BulkRecompute(db, res.SchoolID)
	if err != nil {
		return fmt.Errorf("transform recompute: %w", err)
	}
	res.Stats.SummariesComputed = ok
	for _, is := range issues {
		res.Warnf("recompute gagal untuk (%s,%s,%s): %s", is.StudentID, is.SubjectID, is.ClassID, is.Reason)
	}

	res.Logf("transform: %d baris legacy (%d di-skip), %d record, %d event dibuat, %d record di-skip",
		res.Stats.LegacyRows, res.Stats.RowsSkipped, res.Stats.LegacyRecords, res.Stats.EventsCreated, res.Stats.EventsSkipped)
	return nil
}

func (o *MigrationOrchestrator) transformRow(db *gorm.DB, res *MigrationResult, row legacy.LegacyStudentAttendanceModel) error {
	var records []legacy.LegacyRecord
	if len(row.LegacyStudentAttendanceRecords) > 0 {
		if err := json.Unmarshal(row.LegacyStudentAttendanceRecords, &records); err != nil {
			// jumlah record di baris rusak tidak bisa diketahui; hitung barisnya
			res.Warnf("legacy %s: records bukan JSON valid, baris di-skip: %v", row.LegacyStudentAttendanceID, err)
			res.Stats.RowsSkipped++
			return nil
		}
	}
	res.Stats.LegacyRecords += len(records)

	var student academics.StudentModel
	if err := db.Where("student_id = ?", row.LegacyStudentAttendanceStudentID).
		Take(&student).Error; err != nil {
		res.Warnf("legacy %s: siswa %s tidak ditemukan, %d record di-skip",
			row.LegacyStudentAttendanceID, row.LegacyStudentAttendanceStudentID, len(records))
		res.Stats.RowsSkipped++
		res.Stats.EventsSkipped += len(records)
		return nil
	}
	if student.StudentClassID == nil {
		res.Warnf("legacy %s: siswa %s tanpa kelas, %d record di-skip",
			row.LegacyStudentAttendanceID, student.StudentCode, len(records))
		res.Stats.RowsSkipped++
		res.Stats.EventsSkipped += len(records)
		return nil
	}
	classID := *student.StudentClassID

	teacherID, ok, err := o.inferTeacher(db, row.LegacyStudentAttendanceSubjectID, classID)
	if err != nil {
		return fmt.Errorf("transform infer guru: %w", err)
	}
	if !ok {
		res.Warnf("legacy %s: tidak ada guru untuk (subject %s, kelas %s), %d record di-skip",
			row.LegacyStudentAttendanceID, row.LegacyStudentAttendanceSubjectID, classID, len(records))
		res.Stats.RowsSkipped++
		res.Stats.EventsSkipped += len(records)
		return nil
	}

	added, err := o.ensureEnrollment(db, res.SchoolID, student.StudentID, row.LegacyStudentAttendanceSubjectID)
	if err != nil {
		return fmt.Errorf("transform enrollment: %w", err)
	}
	if added {
		res.Stats.EnrollmentsAdded++
	}

	for _, rec := range records {
		status := attmodel.AttendanceStatus(rec.Status)
		session := academics.SessionLabel(rec.Session)
		date, derr := time.Parse("2006-01-02", rec.Date)
		switch {
		case !status.Valid():
			res.Warnf("legacy %s: status %q tidak dikenal, record di-skip", row.LegacyStudentAttendanceID, rec.Status)
			res.Stats.EventsSkipped++
			continue
		case !session.Valid():
			res.Warnf("legacy %s: sesi %q tidak dikenal, record di-skip", row.LegacyStudentAttendanceID, rec.Session)
			res.Stats.EventsSkipped++
			continue
		case derr != nil:
			res.Warnf("legacy %s: tanggal %q tidak valid, record di-skip", row.LegacyStudentAttendanceID, rec.Date)
			res.Stats.EventsSkipped++
			continue
		}

		ev := attmodel.AttendanceEventModel{
			AttendanceEventSchoolID:  res.SchoolID,
			AttendanceEventStudentID: student.StudentID,
			AttendanceEventClassID:   classID,
			AttendanceEventSubjectID: row.LegacyStudentAttendanceSubjectID,
			AttendanceEventDate:      attmodel.NormalizeDate(date),
			AttendanceEventSession:   session,
			AttendanceEventTeacherID: teacherID,
			AttendanceEventStatus:    status,
			AttendanceEventMarkedBy:  teacherID,
		}
		// duplikat dalam data legacy: baris pertama menang
		tx := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_event_student_id"},
				{Name: "attendance_event_class_id"},
				{Name: "attendance_event_subject_id"},
				{Name: "attendance_event_date"},
				{Name: "attendance_event_session"},
			},
			DoNothing: true,
		}).Create(&ev)
		if tx.Error != nil {
			return fmt.Errorf("transform tulis event: %w", tx.Error)
		}
		if tx.RowsAffected == 0 {
			res.Warnf("legacy %s: event duplikat (%s %s) di-skip", row.LegacyStudentAttendanceID, rec.Date, rec.Session)
			res.Stats.EventsSkipped++
			continue
		}
		res.Stats.EventsCreated++
	}
	return nil
}

func (o *MigrationOrchestrator) inferTeacher(db *gorm.DB, subjectID, classID uuid.UUID) (uuid.UUID, bool, error) {
	var a academics.TeacherAssignmentModel
	err := db.Where("teacher_assignment_subject_id = ?", subjectID).
		Where("teacher_assignment_class_id = ?", classID).
		Order("teacher_assignment_created_at ASC").
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return a.TeacherAssignmentTeacherID, true, nil
}

func (o *MigrationOrchestrator) ensureEnrollment(db *gorm.DB, schoolID, studentID, subjectID uuid.UUID) (bool, error) {
	rec := academics.StudentEnrollmentModel{
		StudentEnrollmentSchoolID:  schoolID,
		StudentEnrollmentStudentID: studentID,
		StudentEnrollmentSubjectID: subjectID,
	}
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_enrollment_student_id"},
			{Name: "student_enrollment_subject_id"},
		},
		DoNothing: true,
	}).Create(&rec)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
