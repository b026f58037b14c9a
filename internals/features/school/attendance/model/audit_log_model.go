// file: internals/features/school/attendance/model/audit_log_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================================================
   ENUMS: aksi audit & jenis aktor
========================================================= */

type AuditAction string

const (
	AuditCreate            AuditAction = "create"
	AuditUpdate            AuditAction = "update"
	AuditDelete            AuditAction = "delete"
	AuditBulkAssign        AuditAction = "bulk_assign"
	AuditStudentTransfer   AuditAction = "student_transfer"
	AuditTeacherReassign   AuditAction = "teacher_reassign"
	AuditMigrateAttendance AuditAction = "migrate_attendance"
	AuditMigration         AuditAction = "migration"
	AuditRollback          AuditAction = "rollback"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditCreate, AuditUpdate, AuditDelete, AuditBulkAssign,
		AuditStudentTransfer, AuditTeacherReassign, AuditMigrateAttendance,
		AuditMigration, AuditRollback:
		return true
	default:
		return false
	}
}

type ActorKind string

const (
	ActorTeacher ActorKind = "teacher"
	ActorAdmin   ActorKind = "admin"
	ActorSystem  ActorKind = "system"
)

// ActorRef = tagged union {kind, id}; bukan FK polimorfik.
type ActorRef struct {
	Kind ActorKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func SystemActor() ActorRef {
	return ActorRef{Kind: ActorSystem, ID: uuid.Nil}
}

/* =========================================================
   MODEL: attendance_audit_logs (append-only)
   Satu entri per mutasi ledger / aksi bulk, ditulis sebelum
   operasi dianggap selesai. Tidak pernah di-update.
========================================================= */

type AttendanceAuditLogModel struct {
	AttendanceAuditLogID       uuid.UUID `gorm:"type:uuid;primaryKey;column:attendance_audit_log_id" json:"attendance_audit_log_id"`
	AttendanceAuditLogSchoolID uuid.UUID `gorm:"type:uuid;not null;column:attendance_audit_log_school_id;index:idx_attendance_audit_school" json:"attendance_audit_log_school_id"`

	// null untuk aksi bulk tanpa entitas tunggal
	AttendanceAuditLogEventID *uuid.UUID `gorm:"type:uuid;column:attendance_audit_log_event_id;index:idx_attendance_audit_event" json:"attendance_audit_log_event_id,omitempty"`

	AttendanceAuditLogAction AuditAction `gorm:"type:varchar(32);not null;column:attendance_audit_log_action" json:"attendance_audit_log_action"`

	AttendanceAuditLogOldValue datatypes.JSON `gorm:"column:attendance_audit_log_old_value" json:"attendance_audit_log_old_value,omitempty"`
	AttendanceAuditLogNewValue datatypes.JSON `gorm:"column:attendance_audit_log_new_value" json:"attendance_audit_log_new_value,omitempty"`

	AttendanceAuditLogActorID   uuid.UUID `gorm:"type:uuid;not null;column:attendance_audit_log_actor_id" json:"attendance_audit_log_actor_id"`
	AttendanceAuditLogActorKind ActorKind `gorm:"type:varchar(16);not null;column:attendance_audit_log_actor_kind" json:"attendance_audit_log_actor_kind"`

	AttendanceAuditLogReason string `gorm:"type:text;column:attendance_audit_log_reason" json:"attendance_audit_log_reason"`

	AttendanceAuditLogCreatedAt time.Time `gorm:"column:attendance_audit_log_created_at;autoCreateTime" json:"attendance_audit_log_created_at"`
}

func (AttendanceAuditLogModel) TableName() string { return "attendance_audit_logs" }

func (m *AttendanceAuditLogModel) BeforeCreate(tx *gorm.DB) error {
	if m.AttendanceAuditLogID == uuid.Nil {
		m.AttendanceAuditLogID = uuid.New()
	}
	return nil
}
