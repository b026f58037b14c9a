// file: internals/features/school/attendance/service/policy.go
package service

import (
	"math"
	"time"

	"github.com/google/uuid"

	model "sekolahku_backend/internals/features/school/attendance/model"
)

/* =========================================================
   Kebijakan persentase kehadiran (read-time view).
   Yang tersimpan di attendance_summaries selalu standard.
========================================================= */

type PercentagePolicy string

const (
	PolicyStandard PercentagePolicy = "standard"
	PolicyStrict   PercentagePolicy = "strict"
	PolicyLenient  PercentagePolicy = "lenient"
)

func (p PercentagePolicy) Valid() bool {
	switch p {
	case PolicyStandard, PolicyStrict, PolicyLenient:
		return true
	default:
		return false
	}
}

// StatusCounts = hasil hitung ledger per status untuk satu kunci
// (student, subject, class).
type StatusCounts struct {
	Present int
	Absent  int
	Late    int
	Excused int
}

func (c StatusCounts) Total() int {
	return c.Present + c.Absent + c.Late + c.Excused
}

// attendedUnits: bobot "hadir" per kebijakan.
//   - strict:   hanya present
//   - standard: present + excused + 0.5×late
//   - lenient:  present + excused + late
func attendedUnits(c StatusCounts, p PercentagePolicy) float64 {
	switch p {
	case PolicyStrict:
		return float64(c.Present)
	case PolicyLenient:
		return float64(c.Present + c.Excused + c.Late)
	default:
		return float64(c.Present+c.Excused) + 0.5*float64(c.Late)
	}
}

// Percentage: fungsi murni & deterministik (counts) → persen, 2 desimal.
// Total 0 → 0, hasil selalu di [0,100].
func Percentage(c StatusCounts, p PercentagePolicy) float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	pct := attendedUnits(c, p) / float64(total) * 100
	pct = math.Round(pct*100) / 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// DeriveSummary: fungsi murni (counts) → baris agregat; satu-satunya cara
// mengisi angka attendance_summaries.
func DeriveSummary(schoolID, studentID, subjectID, classID uuid.UUID, c StatusCounts, at time.Time) model.AttendanceSummaryModel {
	return model.AttendanceSummaryModel{
		AttendanceSummarySchoolID:     schoolID,
		AttendanceSummaryStudentID:    studentID,
		AttendanceSummarySubjectID:    subjectID,
		AttendanceSummaryClassID:      classID,
		AttendanceSummaryTotal:        c.Total(),
		AttendanceSummaryPresent:      c.Present,
		AttendanceSummaryAbsent:       c.Absent,
		AttendanceSummaryLate:         c.Late,
		AttendanceSummaryExcused:      c.Excused,
		AttendanceSummaryPercentage:   Percentage(c, PolicyStandard),
		AttendanceSummaryCalculatedAt: at,
	}
}

// CalculatedPercentages: ketiga view kebijakan untuk satu baris agregat.
func CalculatedPercentages(sum model.AttendanceSummaryModel) map[PercentagePolicy]float64 {
	c := StatusCounts{
		Present: sum.AttendanceSummaryPresent,
		Absent:  sum.AttendanceSummaryAbsent,
		Late:    sum.AttendanceSummaryLate,
		Excused: sum.AttendanceSummaryExcused,
	}
	return map[PercentagePolicy]float64{
		PolicyStandard: Percentage(c, PolicyStandard),
		PolicyStrict:   Percentage(c, PolicyStrict),
		PolicyLenient:  Percentage(c, PolicyLenient),
	}
}
