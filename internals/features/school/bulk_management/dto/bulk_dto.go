// file: internals/features/school/bulk_management/dto/bulk_dto.go
package dto

import (
	"github.com/google/uuid"

	svc "sekolahku_backend/internals/features/school/bulk_management/service"
)

/* =========================
   Request DTO (validator)
   ========================= */

// POST /bulk/assign
type AssignByPatternRequest struct {
	Pattern       string      `json:"pattern" validate:"required,min=1,max=64"`
	TargetClassID uuid.UUID   `json:"target_class_id" validate:"required"`
	SubjectIDs    []uuid.UUID `json:"subject_ids" validate:"dive,required"` // boleh kosong: enrollment di-replace jadi set kosong
	Reason        string      `json:"reason" validate:"omitempty,max=255"`
}

// POST /bulk/transfer
type TransferRequest struct {
	StudentIDs    []uuid.UUID `json:"student_ids" validate:"required,min=1,dive,required"`
	FromClassID   uuid.UUID   `json:"from_class_id" validate:"required"`
	ToClassID     uuid.UUID   `json:"to_class_id" validate:"required"`
	SubjectIDs    []uuid.UUID `json:"subject_ids" validate:"dive,required"`
	MigrateLedger bool        `json:"migrate_ledger"`
	Reason        string      `json:"reason" validate:"omitempty,max=255"`
}

// POST /bulk/teachers/:teacherId/reassign
type ReassignTeacherRequest struct {
	Assignments []AssignmentPairRequest `json:"assignments" validate:"required,dive"`
	Reason      string                  `json:"reason" validate:"omitempty,max=255"`
}

type AssignmentPairRequest struct {
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	ClassID   uuid.UUID `json:"class_id" validate:"required"`
}

func (r ReassignTeacherRequest) ToServicePairs() []svc.AssignmentPair {
	out := make([]svc.AssignmentPair, 0, len(r.Assignments))
	for _, a := range r.Assignments {
		out = append(out, svc.AssignmentPair{SubjectID: a.SubjectID, ClassID: a.ClassID})
	}
	return out
}
