// file: internals/features/school/attendance/dto/summary_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	model "sekolahku_backend/internals/features/school/attendance/model"
	service "sekolahku_backend/internals/features/school/attendance/service"
)

/* =========================================================
   Responses: SUMMARY READS
   ========================================================= */

type CalculatedPercentages struct {
	Standard float64 `json:"standard"`
	Strict   float64 `json:"strict"`
	Lenient  float64 `json:"lenient"`
}

type SummaryResponse struct {
	StudentID uuid.UUID `json:"student_id"`
	SubjectID uuid.UUID `json:"subject_id"`
	ClassID   uuid.UUID `json:"class_id"`

	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`

	Percentage            float64               `json:"percentage"`
	CalculatedPercentages CalculatedPercentages `json:"calculated_percentages"`

	CalculatedAt time.Time `json:"calculated_at"`
}

func NewSummaryResponse(m model.AttendanceSummaryModel) SummaryResponse {
	pcts := service.CalculatedPercentages(m)
	return SummaryResponse{
		StudentID:  m.AttendanceSummaryStudentID,
		SubjectID:  m.AttendanceSummarySubjectID,
		ClassID:    m.AttendanceSummaryClassID,
		Total:      m.AttendanceSummaryTotal,
		Present:    m.AttendanceSummaryPresent,
		Absent:     m.AttendanceSummaryAbsent,
		Late:       m.AttendanceSummaryLate,
		Excused:    m.AttendanceSummaryExcused,
		Percentage: m.AttendanceSummaryPercentage,
		CalculatedPercentages: CalculatedPercentages{
			Standard: pcts[service.PolicyStandard],
			Strict:   pcts[service.PolicyStrict],
			Lenient:  pcts[service.PolicyLenient],
		},
		CalculatedAt: m.AttendanceSummaryCalculatedAt,
	}
}

func NewSummaryResponses(rows []model.AttendanceSummaryModel) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewSummaryResponse(r))
	}
	return out
}

type ClassSubjectSummaryResponse struct {
	PerStudent      []SummaryResponse       `json:"per_student"`
	ClassStatistics service.ClassStatistics `json:"class_statistics"`
}

type LowAttendanceAlertResponse struct {
	StudentID  uuid.UUID `json:"student_id"`
	SubjectID  uuid.UUID `json:"subject_id"`
	ClassID    uuid.UUID `json:"class_id"`
	Percentage float64   `json:"percentage"`
	AlertLevel string    `json:"alert_level"`
}

func NewLowAttendanceAlertResponses(alerts []service.LowAttendanceAlert) []LowAttendanceAlertResponse {
	out := make([]LowAttendanceAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, LowAttendanceAlertResponse{
			StudentID:  a.Summary.AttendanceSummaryStudentID,
			SubjectID:  a.Summary.AttendanceSummarySubjectID,
			ClassID:    a.Summary.AttendanceSummaryClassID,
			Percentage: a.Summary.AttendanceSummaryPercentage,
			AlertLevel: a.AlertLevel,
		})
	}
	return out
}
