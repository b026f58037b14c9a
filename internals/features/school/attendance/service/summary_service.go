// file: internals/features/school/attendance/service/summary_service.go
package service

import (
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "sekolahku_backend/internals/features/school/attendance/model"
)

/* =========================================================
   SummaryService: sisi baca agregat (read-only).
========================================================= */

type SummaryService struct{}

func NewSummaryService() *SummaryService { return &SummaryService{} }

type SummaryFilter struct {
	SubjectID *uuid.UUID
	ClassID   *uuid.UUID
}

// GetStudentSummaries: semua agregat milik satu siswa, opsional difilter
// subject/class.
func (s *SummaryService) GetStudentSummaries(db *gorm.DB, schoolID, studentID uuid.UUID, f SummaryFilter) ([]model.AttendanceSummaryModel, error) {
	q := db.Where("attendance_summary_school_id = ?", schoolID).
		Where("attendance_summary_student_id = ?", studentID)
	if f.SubjectID != nil {
		q = q.Where("attendance_summary_subject_id = ?", *f.SubjectID)
	}
	if f.ClassID != nil {
		q = q.Where("attendance_summary_class_id = ?", *f.ClassID)
	}

	var rows []model.AttendanceSummaryModel
	err := q.Order("attendance_summary_subject_id").Find(&rows).Error
	return rows, err
}

type ClassStatistics struct {
	StudentCount      int     `json:"student_count"`
	AveragePercentage float64 `json:"average_percentage"`
	LowestPercentage  float64 `json:"lowest_percentage"`
	HighestPercentage float64 `json:"highest_percentage"`
}

// GetClassSubjectSummaries: agregat semua siswa pada satu (class, subject)
// plus statistik kelasnya.
func (s *SummaryService) GetClassSubjectSummaries(db *gorm.DB, schoolID, classID, subjectID uuid.UUID) ([]model.AttendanceSummaryModel, ClassStatistics, error) {
	var rows []model.AttendanceSummaryModel
	err := db.Where("attendance_summary_school_id = ?", schoolID).
		Where("attendance_summary_class_id = ?", classID).
		Where("attendance_summary_subject_id = ?", subjectID).
		Order("attendance_summary_percentage DESC").
		Find(&rows).Error
	if err != nil {
		return nil, ClassStatistics{}, err
	}

	stats := ClassStatistics{StudentCount: len(rows)}
	if len(rows) > 0 {
		sum := 0.0
		lowest := rows[0].AttendanceSummaryPercentage
		highest := rows[0].AttendanceSummaryPercentage
		for _, r := range rows {
			sum += r.AttendanceSummaryPercentage
			if r.AttendanceSummaryPercentage < lowest {
				lowest = r.AttendanceSummaryPercentage
			}
			if r.AttendanceSummaryPercentage > highest {
				highest = r.AttendanceSummaryPercentage
			}
		}
		stats.AveragePercentage = math.Round(sum/float64(len(rows))*100) / 100
		stats.LowestPercentage = lowest
		stats.HighestPercentage = highest
	}
	return rows, stats, nil
}

const (
	AlertLevelWarning     = "warning"
	AlertLevelCritical    = "critical"
	DefaultAlertThreshold = 75.0
	criticalMargin        = 15.0
)

type LowAttendanceAlert struct {
	Summary    model.AttendanceSummaryModel `json:"summary"`
	AlertLevel string                       `json:"alert_level"`
}

// GetLowAttendanceAlerts: agregat di bawah threshold (default 75).
// >15 poin di bawah threshold → critical.
func (s *SummaryService) GetLowAttendanceAlerts(db *gorm.DB, schoolID, classID uuid.UUID, subjectID *uuid.UUID, threshold float64) ([]LowAttendanceAlert, error) {
	if threshold <= 0 {
		threshold = DefaultAlertThreshold
	}

	q := db.Where("attendance_summary_school_id = ?", schoolID).
		Where("attendance_summary_class_id = ?", classID).
		Where("attendance_summary_percentage < ?", threshold)
	if subjectID != nil {
		q = q.Where("attendance_summary_subject_id = ?", *subjectID)
	}

	var rows []model.AttendanceSummaryModel
	if err := q.Order("attendance_summary_percentage ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	alerts := make([]LowAttendanceAlert, 0, len(rows))
	for _, r := range rows {
		level := AlertLevelWarning
		if r.AttendanceSummaryPercentage < threshold-criticalMargin {
			level = AlertLevelCritical
		}
		alerts = append(alerts, LowAttendanceAlert{Summary: r, AlertLevel: level})
	}
	return alerts, nil
}
