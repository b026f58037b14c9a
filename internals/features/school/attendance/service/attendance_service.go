// file: internals/features/school/attendance/service/attendance_service.go
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	model "sekolahku_backend/internals/features/school/attendance/model"
)

/* =========================================================
   Error validasi (ditolak SEBELUM ada mutasi store).
========================================================= */

var (
	ErrClassNotFound      = errors.New("kelas tidak ditemukan")
	ErrSubjectNotFound    = errors.New("subject tidak ditemukan")
	ErrStudentNotFound    = errors.New("siswa tidak ditemukan")
	ErrEventNotFound      = errors.New("attendance event tidak ditemukan")
	ErrInvalidStatus      = errors.New("status kehadiran tidak valid")
	ErrInvalidSession     = errors.New("label sesi tidak valid")
	ErrSessionNotAllowed  = errors.New("label sesi tidak diizinkan oleh konfigurasi subject")
	ErrDateOutsideTerm    = errors.New("tanggal di luar jendela term kelas")
	ErrTeacherNotAssigned = errors.New("guru tidak di-assign ke subject/kelas ini")
	ErrStudentNotEnrolled = errors.New("siswa tidak terdaftar pada subject ini")
)

/* =========================================================
   AttendanceService: jalur tulis ledger (mark / bulk / delete).
   Setiap mutasi → audit → recompute agregat secara sinkron.
========================================================= */

type AttendanceService struct {
	Consistency *ConsistencyService
	Audit       *AuditService
}

func NewAttendanceService() *AttendanceService {
	return &AttendanceService{
		Consistency: NewConsistencyService(),
		Audit:       NewAuditService(),
	}
}

type MarkRequest struct {
	SchoolID  uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	TeacherID uuid.UUID
	StudentID uuid.UUID
	Date      time.Time
	Session   academics.SessionLabel
	Status    model.AttendanceStatus
}

const (
	MarkActionCreate = "create"
	MarkActionUpdate = "update"
)

type MarkResult struct {
	Event        model.AttendanceEventModel `json:"event"`
	Action       string                     `json:"action"` // create | update
	AuditWarning bool                       `json:"audit_warning,omitempty"`
}

// --- deteksi unique violation Postgres (SQLSTATE 23505) + fallback portabel ---
type pgSQLErr interface {
	SQLState() string
	Error() string
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	var sqlErr pgSQLErr
	if errors.As(err, &sqlErr) && sqlErr.SQLState() == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

/* =========================================================
   Prekondisi (urutan: otorisasi guru → sesi → tanggal →
   enrollment). Semua dicek sebelum menyentuh ledger.
========================================================= */

func (s *AttendanceService) validateSharedContext(db *gorm.DB, schoolID, classID, subjectID, teacherID uuid.UUID, date time.Time, session academics.SessionLabel) error {
	if !session.Valid() {
		return ErrInvalidSession
	}

	var cnt int64
	if err := db.Model(&academics.TeacherAssignmentModel{}).
		Where("teacher_assignment_teacher_id = ?", teacherID).
		Where("teacher_assignment_subject_id = ?", subjectID).
		Where("teacher_assignment_class_id = ?", classID).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrTeacherNotAssigned
	}

	var subject academics.SubjectModel
	if err := db.Where("subject_id = ? AND subject_school_id = ?", subjectID, schoolID).Take(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}
	if !subject.AllowsSession(session) {
		return ErrSessionNotAllowed
	}

	var class academics.ClassModel
	if err := db.Where("class_id = ? AND class_school_id = ?", classID, schoolID).Take(&class).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	if !class.InTermWindow(date) {
		return ErrDateOutsideTerm
	}
	return nil
}

func (s *AttendanceService) checkEnrollment(db *gorm.DB, studentID, subjectID uuid.UUID) error {
	var cnt int64
	if err := db.Model(&academics.StudentEnrollmentModel{}).
		Where("student_enrollment_student_id = ?", studentID).
		Where("student_enrollment_subject_id = ?", subjectID).
		Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrStudentNotEnrolled
	}
	return nil
}

/* =========================================================
   Create-or-update satu entri ledger (tanpa recompute).
   Race insert duplikat ditangani eksplisit: tangkap 23505
   lalu retry sebagai update (last-writer-wins per record).
========================================================= */

func (s *AttendanceService) createOrUpdate(db *gorm.DB, req MarkRequest, actor model.ActorRef, reason string) (MarkResult, error) {
	date := model.NormalizeDate(req.Date)

	var existing model.AttendanceEventModel
	err := db.Where("attendance_event_student_id = ?", req.StudentID).
		Where("attendance_event_class_id = ?", req.ClassID).
		Where("attendance_event_subject_id = ?", req.SubjectID).
		Where("attendance_event_date = ?", date).
		Where("attendance_event_session = ?", req.Session).
		Take(&existing).Error

	switch {
	case err == nil:
		return s.updateExisting(db, existing, req, actor, reason)

	case errors.Is(err, gorm.ErrRecordNotFound):
		rec := model.AttendanceEventModel{
			AttendanceEventSchoolID:  req.SchoolID,
			AttendanceEventStudentID: req.StudentID,
			AttendanceEventClassID:   req.ClassID,
			AttendanceEventSubjectID: req.SubjectID,
			AttendanceEventDate:      date,
			AttendanceEventSession:   req.Session,
			AttendanceEventTeacherID: req.TeacherID,
			AttendanceEventStatus:    req.Status,
			AttendanceEventMarkedBy:  actor.ID,
		}
		if err := db.Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				// penulis lain menang duluan → perlakukan sebagai update
				if err := db.Where("attendance_event_student_id = ?", req.StudentID).
					Where("attendance_event_class_id = ?", req.ClassID).
					Where("attendance_event_subject_id = ?", req.SubjectID).
					Where("attendance_event_date = ?", date).
					Where("attendance_event_session = ?", req.Session).
					Take(&existing).Error; err != nil {
					return MarkResult{}, err
				}
				return s.updateExisting(db, existing, req, actor, reason)
			}
			return MarkResult{}, err
		}

		warn := s.Audit.LogWithRetry(db, req.SchoolID, &rec.AttendanceEventID,
			model.AuditCreate, nil, rec, actor, reason)
		return MarkResult{Event: rec, Action: MarkActionCreate, AuditWarning: warn}, nil

	default:
		return MarkResult{}, err
	}
}

func (s *AttendanceService) updateExisting(db *gorm.DB, existing model.AttendanceEventModel, req MarkRequest, actor model.ActorRef, reason string) (MarkResult, error) {
	before := existing

	now := time.Now().UTC()
	existing.AttendanceEventStatus = req.Status
	existing.AttendanceEventTeacherID = req.TeacherID
	existing.AttendanceEventUpdatedBy = &actor.ID
	existing.AttendanceEventUpdatedAt = &now

	if err := db.Model(&model.AttendanceEventModel{}).
		Where("attendance_event_id = ?", existing.AttendanceEventID).
		Updates(map[string]any{
			"attendance_event_status":     existing.AttendanceEventStatus,
			"attendance_event_teacher_id": existing.AttendanceEventTeacherID,
			"attendance_event_updated_by": existing.AttendanceEventUpdatedBy,
			"attendance_event_updated_at": existing.AttendanceEventUpdatedAt,
		}).Error; err != nil {
		return MarkResult{}, err
	}

	warn := s.Audit.LogWithRetry(db, req.SchoolID, &existing.AttendanceEventID,
		model.AuditUpdate, before, existing, actor, reason)
	return MarkResult{Event: existing, Action: MarkActionUpdate, AuditWarning: warn}, nil
}

/* =========================================================
   MarkAttendance: satu siswa, satu sesi. Recompute sinkron
   sebelum sukses dilaporkan.
========================================================= */

func (s *AttendanceService) MarkAttendance(db *gorm.DB, req MarkRequest, actor model.ActorRef, reason string) (MarkResult, error) {
	if !req.Status.Valid() {
		return MarkResult{}, ErrInvalidStatus
	}
	date := model.NormalizeDate(req.Date)
	if err := s.validateSharedContext(db, req.SchoolID, req.ClassID, req.SubjectID, req.TeacherID, date, req.Session); err != nil {
		return MarkResult{}, err
	}
	if err := s.checkEnrollment(db, req.StudentID, req.SubjectID); err != nil {
		return MarkResult{}, err
	}

	res, err := s.createOrUpdate(db, req, actor, reason)
	if err != nil {
		return MarkResult{}, err
	}

	if _, err := s.Consistency.Recompute(db, req.SchoolID, req.StudentID, req.SubjectID, req.ClassID); err != nil {
		return res, err
	}
	return res, nil
}

/* =========================================================
   BulkMarkAttendance: banyak siswa, satu konteks bersama.
   Konteks divalidasi sekali; tiap pasangan diproses lewat
   jalur create-or-update yang sama, failure per item diisolasi.
   Recompute maksimal sekali per kunci yang tersentuh.
========================================================= */

type BulkMarkContext struct {
	SchoolID  uuid.UUID
	ClassID   uuid.UUID
	SubjectID uuid.UUID
	TeacherID uuid.UUID
	Date      time.Time
	Session   academics.SessionLabel
}

type BulkMarkItem struct {
	StudentID uuid.UUID
	Status    model.AttendanceStatus
}

type BulkMarkSuccess struct {
	StudentID uuid.UUID `json:"student_id"`
	Action    string    `json:"action"`
	EventID   uuid.UUID `json:"event_id"`
}

type BulkMarkFailure struct {
	StudentID uuid.UUID `json:"student_id"`
	Reason    string    `json:"reason"`
}

type BulkMarkResult struct {
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Successful   []BulkMarkSuccess `json:"successful"`
	Failed       []BulkMarkFailure `json:"failed"`
	AuditWarning bool              `json:"audit_warning,omitempty"`
}

func (s *AttendanceService) BulkMarkAttendance(db *gorm.DB, ctx BulkMarkContext, items []BulkMarkItem, actor model.ActorRef, reason string) (BulkMarkResult, error) {
	date := model.NormalizeDate(ctx.Date)
	if err := s.validateSharedContext(db, ctx.SchoolID, ctx.ClassID, ctx.SubjectID, ctx.TeacherID, date, ctx.Session); err != nil {
		return BulkMarkResult{}, err
	}

	out := BulkMarkResult{Successful: []BulkMarkSuccess{}, Failed: []BulkMarkFailure{}}
	touched := make(map[uuid.UUID]struct{}) // kunci = student (subject & class tetap)

	for _, it := range items {
		if !it.Status.Valid() {
			out.Failed = append(out.Failed, BulkMarkFailure{StudentID: it.StudentID, Reason: ErrInvalidStatus.Error()})
			continue
		}
		if err := s.checkEnrollment(db, it.StudentID, ctx.SubjectID); err != nil {
			out.Failed = append(out.Failed, BulkMarkFailure{StudentID: it.StudentID, Reason: err.Error()})
			continue
		}

		res, err := s.createOrUpdate(db, MarkRequest{
			SchoolID:  ctx.SchoolID,
			ClassID:   ctx.ClassID,
			SubjectID: ctx.SubjectID,
			TeacherID: ctx.TeacherID,
			StudentID: it.StudentID,
			Date:      date,
			Session:   ctx.Session,
			Status:    it.Status,
		}, actor, reason)
		if err != nil {
			out.Failed = append(out.Failed, BulkMarkFailure{StudentID: it.StudentID, Reason: err.Error()})
			continue
		}

		out.Successful = append(out.Successful, BulkMarkSuccess{
			StudentID: it.StudentID,
			Action:    res.Action,
			EventID:   res.Event.AttendanceEventID,
		})
		out.AuditWarning = out.AuditWarning || res.AuditWarning
		touched[it.StudentID] = struct{}{}
	}

	// refresh konsistensi: at-most-once per kunci tersentuh
	for studentID := range touched {
		if _, err := s.Consistency.Recompute(db, ctx.SchoolID, studentID, ctx.SubjectID, ctx.ClassID); err != nil {
			return out, err
		}
	}

	out.SuccessCount = len(out.Successful)
	out.FailureCount = len(out.Failed)
	return out, nil
}

/* =========================================================
   DeleteAttendance: delete eksplisit + audit + recompute
   sinkron. Delete yang sudah terjadi tetap dilaporkan walau
   recompute gagal; error-nya naik ke caller, tidak ditelan.
========================================================= */

type DeleteResult struct {
	Deleted      bool `json:"deleted"`
	AuditWarning bool `json:"audit_warning,omitempty"`
}

func (s *AttendanceService) DeleteAttendance(db *gorm.DB, schoolID, eventID uuid.UUID, actor model.ActorRef, reason string) (DeleteResult, error) {
	var existing model.AttendanceEventModel
	err := db.Where("attendance_event_id = ? AND attendance_event_school_id = ?", eventID, schoolID).
		Take(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeleteResult{}, ErrEventNotFound
		}
		return DeleteResult{}, err
	}

	if err := db.Delete(&model.AttendanceEventModel{}, "attendance_event_id = ?", eventID).Error; err != nil {
		return DeleteResult{}, err
	}

	warn := s.Audit.LogWithRetry(db, schoolID, &eventID, model.AuditDelete, existing, nil, actor, reason)
	res := DeleteResult{Deleted: true, AuditWarning: warn}

	if _, err := s.Consistency.Recompute(db, schoolID,
		existing.AttendanceEventStudentID,
		existing.AttendanceEventSubjectID,
		existing.AttendanceEventClassID); err != nil {
		return res, err
	}
	return res, nil
}
