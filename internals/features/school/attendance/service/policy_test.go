// file: internals/features/school/attendance/service/policy_test.go
package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func testNow() time.Time {
	return time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
}

func TestPercentageStandard(t *testing.T) {
	// {present, present, absent, late} → (2 + 0.5) / 4 = 62.5
	c := StatusCounts{Present: 2, Absent: 1, Late: 1}
	assert.Equal(t, 62.5, Percentage(c, PolicyStandard))
}

func TestPercentageStrict(t *testing.T) {
	c := StatusCounts{Present: 2, Absent: 1, Late: 1}
	assert.Equal(t, 50.0, Percentage(c, PolicyStrict))
}

func TestPercentageLenient(t *testing.T) {
	c := StatusCounts{Present: 2, Absent: 1, Late: 1}
	assert.Equal(t, 75.0, Percentage(c, PolicyLenient))
}

func TestPercentageExcusedCountsAsAttended(t *testing.T) {
	c := StatusCounts{Present: 1, Excused: 1}
	assert.Equal(t, 100.0, Percentage(c, PolicyStandard))
	assert.Equal(t, 50.0, Percentage(c, PolicyStrict))
}

func TestPercentageEmptyLedger(t *testing.T) {
	for _, p := range []PercentagePolicy{PolicyStandard, PolicyStrict, PolicyLenient} {
		assert.Equal(t, 0.0, Percentage(StatusCounts{}, p), "policy %s", p)
	}
}

func TestPercentageRounding(t *testing.T) {
	// 1/3 → 33.333... → 33.33
	c := StatusCounts{Present: 1, Absent: 2}
	assert.Equal(t, 33.33, Percentage(c, PolicyStrict))

	// 2/3 → 66.666... → 66.67
	c = StatusCounts{Present: 2, Absent: 1}
	assert.Equal(t, 66.67, Percentage(c, PolicyStrict))
}

func TestPercentageBounds(t *testing.T) {
	c := StatusCounts{Present: 10}
	assert.Equal(t, 100.0, Percentage(c, PolicyLenient))

	c = StatusCounts{Absent: 10}
	assert.Equal(t, 0.0, Percentage(c, PolicyStrict))
}

func TestDeriveSummaryTotalsMatch(t *testing.T) {
	c := StatusCounts{Present: 3, Absent: 2, Late: 1, Excused: 4}
	sum := DeriveSummary(newUUID(t), newUUID(t), newUUID(t), newUUID(t), c, testNow())

	assert.Equal(t, 10, sum.AttendanceSummaryTotal)
	assert.Equal(t, sum.AttendanceSummaryTotal,
		sum.AttendanceSummaryPresent+sum.AttendanceSummaryAbsent+sum.AttendanceSummaryLate+sum.AttendanceSummaryExcused)
	assert.Equal(t, Percentage(c, PolicyStandard), sum.AttendanceSummaryPercentage)
}

func TestCalculatedPercentagesAllPolicies(t *testing.T) {
	c := StatusCounts{Present: 2, Absent: 1, Late: 1}
	sum := DeriveSummary(newUUID(t), newUUID(t), newUUID(t), newUUID(t), c, testNow())

	views := CalculatedPercentages(sum)
	assert.Equal(t, 62.5, views[PolicyStandard])
	assert.Equal(t, 50.0, views[PolicyStrict])
	assert.Equal(t, 75.0, views[PolicyLenient])
}
