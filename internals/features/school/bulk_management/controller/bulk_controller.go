// file: internals/features/school/bulk_management/controller/bulk_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/constants"
	helper "sekolahku_backend/internals/helpers"
	helperAuth "sekolahku_backend/internals/helpers/auth"

	attmodel "sekolahku_backend/internals/features/school/attendance/model"
	d "sekolahku_backend/internals/features/school/bulk_management/dto"
	svc "sekolahku_backend/internals/features/school/bulk_management/service"
)

type BulkController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Bulk     *svc.BulkManagementService
}

func NewBulkController(db *gorm.DB, v *validator.Validate) *BulkController {
	return &BulkController{DB: db, Validate: v, Bulk: svc.NewBulkManagementService()}
}

func actorFromCtx(c *fiber.Ctx) (attmodel.ActorRef, error) {
	id, err := helperAuth.GetUserID(c)
	if err != nil {
		return attmodel.ActorRef{}, err
	}
	kind := attmodel.ActorAdmin
	if helperAuth.GetRole(c) == constants.RoleSystem {
		kind = attmodel.ActorSystem
	}
	return attmodel.ActorRef{Kind: kind, ID: id}, nil
}

func mapBulkError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, svc.ErrClassNotFound),
		errors.Is(err, svc.ErrSubjectNotFound),
		errors.Is(err, svc.ErrTeacherNotFound):
		return helper.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, svc.ErrInvalidPattern),
		errors.Is(err, svc.ErrStudentNotInFromClass):
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}
}

func bulkMessage(res svc.BulkOpResult, base string) string {
	if res.FailureCount > 0 && res.SuccessCount > 0 {
		return base + " selesai sebagian"
	}
	if res.SuccessCount == 0 && res.FailureCount > 0 {
		return base + " gagal untuk semua item"
	}
	return base + " selesai"
}

/* =========================
   POST /bulk/assign
   ========================= */

func (ctl *BulkController) AssignByPattern(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req d.AssignByPatternRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Bulk.AssignByPattern(ctl.DB, schoolID, req.Pattern, req.TargetClassID, req.SubjectIDs, actor)
	if err != nil {
		return mapBulkError(c, err)
	}
	return helper.Success(c, bulkMessage(res, "Bulk assign"), res)
}

/* =========================
   POST /bulk/transfer
   ========================= */

func (ctl *BulkController) Transfer(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	var req d.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Bulk.Transfer(ctl.DB, schoolID, req.StudentIDs, req.FromClassID, req.ToClassID, req.SubjectIDs, req.MigrateLedger, actor)
	if err != nil {
		return mapBulkError(c, err)
	}
	return helper.Success(c, bulkMessage(res, "Transfer"), res)
}

/* =========================
   POST /bulk/teachers/:teacherId/reassign
   ========================= */

func (ctl *BulkController) ReassignTeacher(c *fiber.Ctx) error {
	schoolID, err := helperAuth.GetSchoolID(c)
	if err != nil {
		return err
	}
	actor, err := actorFromCtx(c)
	if err != nil {
		return err
	}

	teacherID, err := uuid.Parse(strings.TrimSpace(c.Params("teacherId")))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "teacherId tidak valid")
	}

	var req d.ReassignTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	res, err := ctl.Bulk.ReassignTeacher(ctl.DB, schoolID, teacherID, req.ToServicePairs(), actor)
	if err != nil {
		return mapBulkError(c, err)
	}
	return helper.Success(c, "Reassign guru selesai", res)
}
