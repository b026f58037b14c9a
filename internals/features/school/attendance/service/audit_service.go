// file: internals/features/school/attendance/service/audit_service.go
package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	model "sekolahku_backend/internals/features/school/attendance/model"
)

/* =========================================================
   AuditService: satu-satunya penulis attendance_audit_logs.
   Append-only; entri tidak pernah di-update/di-delete.
========================================================= */

type AuditService struct{}

func NewAuditService() *AuditService { return &AuditService{} }

// Snapshot men-serialize nilai lama/baru ke JSONB. Nil → null.
func Snapshot(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARN] audit snapshot gagal: %v", err)
		return nil
	}
	return datatypes.JSON(b)
}

// Log menulis satu entri audit. Wajib sukses (atau di-retry oleh caller)
// sebelum operasi dilaporkan berhasil.
func (s *AuditService) Log(tx *gorm.DB, entry model.AttendanceAuditLogModel) error {
	if !entry.AttendanceAuditLogAction.Valid() {
		return fmt.Errorf("audit action tidak valid: %s", entry.AttendanceAuditLogAction)
	}
	return tx.Create(&entry).Error
}

// LogChange: jalur pendek untuk mutasi satu entitas ledger.
func (s *AuditService) LogChange(
	tx *gorm.DB,
	schoolID uuid.UUID,
	eventID *uuid.UUID,
	action model.AuditAction,
	oldValue, newValue any,
	actor model.ActorRef,
	reason string,
) error {
	return s.Log(tx, model.AttendanceAuditLogModel{
		AttendanceAuditLogSchoolID:  schoolID,
		AttendanceAuditLogEventID:   eventID,
		AttendanceAuditLogAction:    action,
		AttendanceAuditLogOldValue:  Snapshot(oldValue),
		AttendanceAuditLogNewValue:  Snapshot(newValue),
		AttendanceAuditLogActorID:   actor.ID,
		AttendanceAuditLogActorKind: actor.Kind,
		AttendanceAuditLogReason:    reason,
	})
}

// LogWithRetry: coba sekali lagi saat gagal; kalau tetap gagal, operasi
// pemanggil didegradasi jadi "sukses dengan audit warning" (bukan silent).
func (s *AuditService) LogWithRetry(
	tx *gorm.DB,
	schoolID uuid.UUID,
	eventID *uuid.UUID,
	action model.AuditAction,
	oldValue, newValue any,
	actor model.ActorRef,
	reason string,
) (auditWarning bool) {
	err := s.LogChange(tx, schoolID, eventID, action, oldValue, newValue, actor, reason)
	if err == nil {
		return false
	}
	log.Printf("[WARN] audit write gagal, retry: %v", err)
	if err = s.LogChange(tx, schoolID, eventID, action, oldValue, newValue, actor, reason); err != nil {
		log.Printf("[ERROR] audit write tetap gagal: %v", err)
		return true
	}
	return false
}
