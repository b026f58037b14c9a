// file: internals/features/school/attendance/dto/attendance_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	academics "sekolahku_backend/internals/features/school/academics/model"
	model "sekolahku_backend/internals/features/school/attendance/model"
	service "sekolahku_backend/internals/features/school/attendance/service"
)

/* =========================================================
   Shared helpers
   ========================================================= */

// ParseDateYYYYMMDD → midnight UTC.
func ParseDateYYYYMMDD(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

/* =========================================================
   Requests: MARK / BULK MARK / DELETE
   ========================================================= */

type MarkAttendanceRequest struct {
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Date      string    `json:"date" validate:"required"` // YYYY-MM-DD
	Session   string    `json:"session" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late excused"`
	Reason    string    `json:"reason"`
}

func (r MarkAttendanceRequest) ToServiceRequest(schoolID, teacherID uuid.UUID, date time.Time) service.MarkRequest {
	return service.MarkRequest{
		SchoolID:  schoolID,
		ClassID:   r.ClassID,
		SubjectID: r.SubjectID,
		TeacherID: teacherID,
		StudentID: r.StudentID,
		Date:      date,
		Session:   academics.SessionLabel(strings.TrimSpace(r.Session)),
		Status:    model.AttendanceStatus(strings.TrimSpace(r.Status)),
	}
}

type BulkMarkItemRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=present absent late excused"`
}

type BulkMarkAttendanceRequest struct {
	ClassID   uuid.UUID             `json:"class_id" validate:"required"`
	SubjectID uuid.UUID             `json:"subject_id" validate:"required"`
	Date      string                `json:"date" validate:"required"`
	Session   string                `json:"session" validate:"required"`
	Items     []BulkMarkItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason    string                `json:"reason"`
}

func (r BulkMarkAttendanceRequest) ToServiceContext(schoolID, teacherID uuid.UUID, date time.Time) service.BulkMarkContext {
	return service.BulkMarkContext{
		SchoolID:  schoolID,
		ClassID:   r.ClassID,
		SubjectID: r.SubjectID,
		TeacherID: teacherID,
		Date:      date,
		Session:   academics.SessionLabel(strings.TrimSpace(r.Session)),
	}
}

func (r BulkMarkAttendanceRequest) ToServiceItems() []service.BulkMarkItem {
	items := make([]service.BulkMarkItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, service.BulkMarkItem{
			StudentID: it.StudentID,
			Status:    model.AttendanceStatus(strings.TrimSpace(it.Status)),
		})
	}
	return items
}

type DeleteAttendanceRequest struct {
	Reason string `json:"reason" validate:"required"`
}
