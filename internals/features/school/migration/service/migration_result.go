// file: internals/features/school/migration/service/migration_result.go
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

/* =========================================================
   Status machine migrasi:
   PENDING → BACKED_UP → TRANSFORMED → VALIDATED
           → {DONE | ROLLED_BACK | FAILED_UNRECOVERABLE}
========================================================= */

type MigrationStatus string

const (
	MigrationPending             MigrationStatus = "PENDING"
	MigrationBackedUp            MigrationStatus = "BACKED_UP"
	MigrationTransformed         MigrationStatus = "TRANSFORMED"
	MigrationValidated           MigrationStatus = "VALIDATED"
	MigrationDone                MigrationStatus = "DONE"
	MigrationRolledBack          MigrationStatus = "ROLLED_BACK"
	MigrationFailedUnrecoverable MigrationStatus = "FAILED_UNRECOVERABLE"
)

// MigrationStats: angka per stage untuk laporan operator.
type MigrationStats struct {
	LegacyRows        int `json:"legacy_rows"`
	LegacyRecords     int `json:"legacy_records"`
	RowsSkipped       int `json:"rows_skipped"`
	EventsCreated     int `json:"events_created"`
	EventsSkipped     int `json:"events_skipped"`
	EnrollmentsAdded  int `json:"enrollments_added"`
	SummariesComputed int `json:"summaries_computed"`
	ValidationErrors  int `json:"validation_errors"`
	ValidationWarns   int `json:"validation_warnings"`
	AutoFixed         int `json:"auto_fixed"`
}

// MigrationResult: konteks eksplisit yang dioper antar stage — tidak ada
// state level package, tiap run membawa hasilnya sendiri.
type MigrationResult struct {
	RunID    uuid.UUID       `json:"run_id"`
	SchoolID uuid.UUID       `json:"school_id"`
	Status   MigrationStatus `json:"status"`

	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	Stats    MigrationStats `json:"stats"`
	Logs     []string       `json:"logs"`
	Warnings []string       `json:"warnings"`
	Errors   []string       `json:"errors"`

	BackupFile string `json:"backup_file,omitempty"`
	ReportFile string `json:"report_file,omitempty"`
}

func NewMigrationResult(schoolID uuid.UUID) *MigrationResult {
	return &MigrationResult{
		RunID:     uuid.New(),
		SchoolID:  schoolID,
		Status:    MigrationPending,
		StartedAt: time.Now().UTC(),
		Logs:      []string{},
		Warnings:  []string{},
		Errors:    []string{},
	}
}

func (r *MigrationResult) Logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf("[%s] %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...)))
}

func (r *MigrationResult) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	r.Logf("WARN: %s", msg)
}

func (r *MigrationResult) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Errors = append(r.Errors, msg)
	r.Logf("ERROR: %s", msg)
}

func (r *MigrationResult) finish(status MigrationStatus) {
	now := time.Now().UTC()
	r.Status = status
	r.FinishedAt = &now
}

// HasWarnings dipakai CLI untuk exit code 2 (sukses parsial).
func (r *MigrationResult) HasWarnings() bool { return len(r.Warnings) > 0 }
