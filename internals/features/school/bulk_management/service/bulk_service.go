// file: internals/features/school/bulk_management/service/bulk_service.go
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	attsvc "sekolahku_backend/internals/features/school/attendance/service"
)

/* =========================================================
   Error validasi (seluruh operasi ditolak sebelum mutasi).
========================================================= */

var (
	ErrClassNotFound         = errors.New("kelas tidak ditemukan")
	ErrSubjectNotFound       = errors.New("subject tidak ditemukan")
	ErrTeacherNotFound       = errors.New("guru tidak ditemukan")
	ErrInvalidPattern        = errors.New("pola tidak valid")
	ErrStudentNotInFromClass = errors.New("ada siswa yang tidak berada di kelas asal")
)

// alasan per-item yang dicek di test properti (§ pola bulk)
const ReasonAlreadyAssigned = "Student already assigned to target class"

/* =========================================================
   BulkManagementService: assign-by-pattern, transfer,
   reassign guru. Validasi global dulu; kegagalan per item
   diisolasi & dilaporkan, batch jalan terus.
========================================================= */

type BulkManagementService struct {
	Consistency *attsvc.ConsistencyService
	Audit       *attsvc.AuditService
}

func NewBulkManagementService() *BulkManagementService {
	return &BulkManagementService{
		Consistency: attsvc.NewConsistencyService(),
		Audit:       attsvc.NewAuditService(),
	}
}

type BulkOpSuccess struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentCode string    `json:"student_code,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

type BulkOpFailure struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentCode string    `json:"student_code,omitempty"`
	Reason      string    `json:"reason"`
}

type BulkOpResult struct {
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	Successful   []BulkOpSuccess `json:"successful"`
	Failed       []BulkOpFailure `json:"failed"`
	AuditWarning bool            `json:"audit_warning,omitempty"`
}

func (r *BulkOpResult) seal() {
	r.SuccessCount = len(r.Successful)
	r.FailureCount = len(r.Failed)
}

/* =========================
   Validasi referensi bersama
   ========================= */

func (s *BulkManagementService) classExists(db *gorm.DB, schoolID, classID uuid.UUID) error {
	var cnt int64
	if err := db.Model(&academics.ClassModel{}).
		Where("class_id = ? AND class_school_id = ?", classID, schoolID).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (s *BulkManagementService) subjectsExist(db *gorm.DB, schoolID uuid.UUID, subjectIDs []uuid.UUID) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	var cnt int64
	if err := db.Model(&academics.SubjectModel{}).
		Where("subject_school_id = ?", schoolID).
		Where("subject_id IN ?", subjectIDs).
		Count(&cnt).Error; err != nil {
		return err
	}
	if int(cnt) != len(subjectIDs) {
		return ErrSubjectNotFound
	}
	return nil
}

// replaceEnrollments: ganti seluruh edge enrollment siswa dengan set baru.
func (s *BulkManagementService) replaceEnrollments(db *gorm.DB, schoolID, studentID uuid.UUID, subjectIDs []uuid.UUID) ([]uuid.UUID, error) {
	var old []academics.StudentEnrollmentModel
	if err := db.Where("student_enrollment_student_id = ?", studentID).Find(&old).Error; err != nil {
		return nil, err
	}
	oldSet := make(map[uuid.UUID]struct{}, len(old))
	oldIDs := make([]uuid.UUID, 0, len(old))
	for _, e := range old {
		oldSet[e.StudentEnrollmentSubjectID] = struct{}{}
		oldIDs = append(oldIDs, e.StudentEnrollmentSubjectID)
	}

	if err := db.Delete(&academics.StudentEnrollmentModel{}, "student_enrollment_student_id = ?", studentID).Error; err != nil {
		return nil, err
	}
	for _, subjectID := range subjectIDs {
		rec := academics.StudentEnrollmentModel{
			StudentEnrollmentSchoolID:  schoolID,
			StudentEnrollmentStudentID: studentID,
			StudentEnrollmentSubjectID: subjectID,
		}
		if err := db.Create(&rec).Error; err != nil {
			return nil, err
		}
	}
	return oldIDs, nil
}

func newlyAdded(oldIDs, newIDs []uuid.UUID) []uuid.UUID {
	oldSet := make(map[uuid.UUID]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		oldSet[id] = struct{}{}
	}
	var added []uuid.UUID
	for _, id := range newIDs {
		if _, ok := oldSet[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}

/* =========================================================
   AssignByPattern: resolve pola wildcard terhadap student_code
   dalam tenant, lalu reassign per siswa (failure diisolasi).
========================================================= */

func (s *BulkManagementService) AssignByPattern(db *gorm.DB, schoolID uuid.UUID, pattern string, targetClassID uuid.UUID, subjectIDs []uuid.UUID, actor attmodel.ActorRef) (BulkOpResult, error) {
	re, err := TranslatePattern(pattern)
	if err != nil {
		return BulkOpResult{}, ErrInvalidPattern
	}
	if err := s.classExists(db, schoolID, targetClassID); err != nil {
		return BulkOpResult{}, err
	}
	if err := s.subjectsExist(db, schoolID, subjectIDs); err != nil {
		return BulkOpResult{}, err
	}

	var students []academics.StudentModel
	if err := db.Where("student_school_id = ?", schoolID).Find(&students).Error; err != nil {
		return BulkOpResult{}, err
	}

	out := BulkOpResult{Successful: []BulkOpSuccess{}, Failed: []BulkOpFailure{}}
	for _, st := range students {
		if !re.MatchString(st.StudentCode) {
			continue
		}

		if st.StudentClassID != nil && *st.StudentClassID == targetClassID {
			out.Failed = append(out.Failed, BulkOpFailure{
				StudentID:   st.StudentID,
				StudentCode: st.StudentCode,
				Reason:      ReasonAlreadyAssigned,
			})
			continue
		}

		oldClassID := st.StudentClassID
		if err := db.Model(&academics.StudentModel{}).
			Where("student_id = ?", st.StudentID).
			Update("student_class_id", targetClassID).Error; err != nil {
			out.Failed = append(out.Failed, BulkOpFailure{StudentID: st.StudentID, StudentCode: st.StudentCode, Reason: err.Error()})
			continue
		}

		oldSubjects, err := s.replaceEnrollments(db, schoolID, st.StudentID, subjectIDs)
		if err != nil {
			out.Failed = append(out.Failed, BulkOpFailure{StudentID: st.StudentID, StudentCode: st.StudentCode, Reason: err.Error()})
			continue
		}

		warn := s.Audit.LogWithRetry(db, schoolID, nil, attmodel.AuditBulkAssign,
			map[string]any{"class_id": oldClassID, "subject_ids": oldSubjects},
			map[string]any{"class_id": targetClassID, "subject_ids": subjectIDs, "student_id": st.StudentID},
			actor, fmt.Sprintf("bulk assign pola %q", pattern))
		out.AuditWarning = out.AuditWarning || warn

		// agregat nol untuk tiap subject baru (idempoten)
		var initErr error
		for _, subjectID := range subjectIDs {
			if _, err := s.Consistency.Initialize(db, schoolID, st.StudentID, subjectID, targetClassID); err != nil {
				initErr = err
				break
			}
		}
		if initErr != nil {
			// kelas & enrollment sudah berpindah dan teraudit di atas;
			// yang gagal hanya agregat — reason mencatat state parsial itu
			out.Failed = append(out.Failed, BulkOpFailure{
				StudentID:   st.StudentID,
				StudentCode: st.StudentCode,
				Reason:      fmt.Sprintf("kelas sudah dipindah, inisialisasi agregat gagal: %v", initErr),
			})
			continue
		}

		out.Successful = append(out.Successful, BulkOpSuccess{StudentID: st.StudentID, StudentCode: st.StudentCode, Detail: "assigned"})
	}

	out.seal()
	return out, nil
}

/* =========================================================
   Transfer: all-or-nothing saat validasi, per-student saat
   eksekusi. Opsional memigrasi ledger (tiap event diaudit
   sebagai migrate_attendance).
========================================================= */

func (s *BulkManagementService) Transfer(db *gorm.DB, schoolID uuid.UUID, studentIDs []uuid.UUID, fromClassID, toClassID uuid.UUID, subjectIDs []uuid.UUID, migrateLedger bool, actor attmodel.ActorRef) (BulkOpResult, error) {
	if err := s.classExists(db, schoolID, fromClassID); err != nil {
		return BulkOpResult{}, err
	}
	if err := s.classExists(db, schoolID, toClassID); err != nil {
		return BulkOpResult{}, err
	}
	if err := s.subjectsExist(db, schoolID, subjectIDs); err != nil {
		return BulkOpResult{}, err
	}

	// validasi all-or-nothing: semua siswa harus ada & berada di fromClass
	var students []academics.StudentModel
	if err := db.Where("student_school_id = ?", schoolID).
		Where("student_id IN ?", studentIDs).
		Find(&students).Error; err != nil {
		return BulkOpResult{}, err
	}
	if len(students) != len(studentIDs) {
		return BulkOpResult{}, fmt.Errorf("%w: ada siswa yang tidak ditemukan", ErrStudentNotInFromClass)
	}
	for _, st := range students {
		if st.StudentClassID == nil || *st.StudentClassID != fromClassID {
			return BulkOpResult{}, fmt.Errorf("%w: %s", ErrStudentNotInFromClass, st.StudentCode)
		}
	}

	out := BulkOpResult{Successful: []BulkOpSuccess{}, Failed: []BulkOpFailure{}}
	for _, st := range students {
		migrated, err := s.transferOne(db, schoolID, st, fromClassID, toClassID, subjectIDs, migrateLedger, actor, &out)
		if err != nil {
			out.Failed = append(out.Failed, BulkOpFailure{StudentID: st.StudentID, StudentCode: st.StudentCode, Reason: err.Error()})
			continue
		}
		out.Successful = append(out.Successful, BulkOpSuccess{
			StudentID:   st.StudentID,
			StudentCode: st.StudentCode,
			Detail:      fmt.Sprintf("transferred, %d event dimigrasi", migrated),
		})
	}

	out.seal()
	return out, nil
}

func (s *BulkManagementService) transferOne(db *gorm.DB, schoolID uuid.UUID, st academics.StudentModel, fromClassID, toClassID uuid.UUID, subjectIDs []uuid.UUID, migrateLedger bool, actor attmodel.ActorRef, out *BulkOpResult) (int, error) {
	if err := db.Model(&academics.StudentModel{}).
		Where("student_id = ?", st.StudentID).
		Update("student_class_id", toClassID).Error; err != nil {
		return 0, err
	}

	oldSubjects, err := s.replaceEnrollments(db, schoolID, st.StudentID, subjectIDs)
	if err != nil {
		return 0, err
	}

	migrated := 0
	if migrateLedger {
		var events []attmodel.AttendanceEventModel
		if err := db.Where("attendance_event_student_id = ?", st.StudentID).
			Where("attendance_event_class_id = ?", fromClassID).
			Find(&events).Error; err != nil {
			return 0, err
		}
		for _, ev := range events {
			before := ev
			if err := db.Model(&attmodel.AttendanceEventModel{}).
				Where("attendance_event_id = ?", ev.AttendanceEventID).
				Update("attendance_event_class_id", toClassID).Error; err != nil {
				return migrated, err
			}
			ev.AttendanceEventClassID = toClassID
			warn := s.Audit.LogWithRetry(db, schoolID, &ev.AttendanceEventID,
				attmodel.AuditMigrateAttendance, before, ev, actor, "transfer kelas")
			out.AuditWarning = out.AuditWarning || warn
			migrated++
		}

		// re-point agregat lama; kalau kunci tujuan sudah ada, buang baris
		// lama dan hitung ulang dari ledger
		var sums []attmodel.AttendanceSummaryModel
		if err := db.Where("attendance_summary_student_id = ?", st.StudentID).
			Where("attendance_summary_class_id = ?", fromClassID).
			Find(&sums).Error; err != nil {
			return migrated, err
		}
		for _, sum := range sums {
			var clash int64
			if err := db.Model(&attmodel.AttendanceSummaryModel{}).
				Where("attendance_summary_student_id = ?", st.StudentID).
				Where("attendance_summary_subject_id = ?", sum.AttendanceSummarySubjectID).
				Where("attendance_summary_class_id = ?", toClassID).
				Count(&clash).Error; err != nil {
				return migrated, err
			}
			if clash > 0 {
				// kunci tujuan sudah ada: buang baris lama, recompute merger
				if err := db.Delete(&attmodel.AttendanceSummaryModel{}, "attendance_summary_id = ?", sum.AttendanceSummaryID).Error; err != nil {
					return migrated, err
				}
			} else if err := db.Model(&attmodel.AttendanceSummaryModel{}).
				Where("attendance_summary_id = ?", sum.AttendanceSummaryID).
				Update("attendance_summary_class_id", toClassID).Error; err != nil {
				return migrated, err
			}
			if _, err := s.Consistency.Recompute(db, schoolID, st.StudentID, sum.AttendanceSummarySubjectID, toClassID); err != nil {
				return migrated, err
			}
		}
	}

	for _, subjectID := range newlyAdded(oldSubjects, subjectIDs) {
		if _, err := s.Consistency.Initialize(db, schoolID, st.StudentID, subjectID, toClassID); err != nil {
			return migrated, err
		}
	}

	warn := s.Audit.LogWithRetry(db, schoolID, nil, attmodel.AuditStudentTransfer,
		map[string]any{"class_id": fromClassID, "subject_ids": oldSubjects},
		map[string]any{"class_id": toClassID, "subject_ids": subjectIDs, "student_id": st.StudentID, "migrated_events": migrated},
		actor, "transfer siswa antar kelas")
	out.AuditWarning = out.AuditWarning || warn

	return migrated, nil
}

/* =========================================================
   ReassignTeacher: ganti seluruh set assignment guru,
   satu entri audit dengan snapshot lama/baru.
========================================================= */

type AssignmentPair struct {
	SubjectID uuid.UUID `json:"subject_id"`
	ClassID   uuid.UUID `json:"class_id"`
}

type ReassignTeacherResult struct {
	TeacherID      uuid.UUID        `json:"teacher_id"`
	OldAssignments []AssignmentPair `json:"old_assignments"`
	NewAssignments []AssignmentPair `json:"new_assignments"`
	AuditWarning   bool             `json:"audit_warning,omitempty"`
}

func (s *BulkManagementService) ReassignTeacher(db *gorm.DB, schoolID, teacherID uuid.UUID, assignments []AssignmentPair, actor attmodel.ActorRef) (ReassignTeacherResult, error) {
	var cnt int64
	if err := db.Model(&academics.TeacherModel{}).
		Where("teacher_id = ? AND teacher_school_id = ?", teacherID, schoolID).
		Count(&cnt).Error; err != nil {
		return ReassignTeacherResult{}, err
	}
	if cnt == 0 {
		return ReassignTeacherResult{}, ErrTeacherNotFound
	}

	for _, a := range assignments {
		if err := s.subjectsExist(db, schoolID, []uuid.UUID{a.SubjectID}); err != nil {
			return ReassignTeacherResult{}, err
		}
		if err := s.classExists(db, schoolID, a.ClassID); err != nil {
			return ReassignTeacherResult{}, err
		}
	}

	var old []academics.TeacherAssignmentModel
	if err := db.Where("teacher_assignment_teacher_id = ?", teacherID).Find(&old).Error; err != nil {
		return ReassignTeacherResult{}, err
	}
	oldPairs := make([]AssignmentPair, 0, len(old))
	for _, a := range old {
		oldPairs = append(oldPairs, AssignmentPair{SubjectID: a.TeacherAssignmentSubjectID, ClassID: a.TeacherAssignmentClassID})
	}

	if err := db.Delete(&academics.TeacherAssignmentModel{}, "teacher_assignment_teacher_id = ?", teacherID).Error; err != nil {
		return ReassignTeacherResult{}, err
	}
	for _, a := range assignments {
		rec := academics.TeacherAssignmentModel{
			TeacherAssignmentSchoolID:  schoolID,
			TeacherAssignmentTeacherID: teacherID,
			TeacherAssignmentSubjectID: a.SubjectID,
			TeacherAssignmentClassID:   a.ClassID,
		}
		if err := db.Create(&rec).Error; err != nil {
			return ReassignTeacherResult{}, err
		}
	}

	warn := s.Audit.LogWithRetry(db, schoolID, nil, attmodel.AuditTeacherReassign,
		map[string]any{"teacher_id": teacherID, "assignments": oldPairs},
		map[string]any{"teacher_id": teacherID, "assignments": assignments},
		actor, "reassign guru")

	return ReassignTeacherResult{
		TeacherID:      teacherID,
		OldAssignments: oldPairs,
		NewAssignments: assignments,
		AuditWarning:   warn,
	}, nil
}
