package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// MajorController handles majors, which belong to a department
type MajorController struct {
	majorService services.MajorService
}

// NewMajorController creates a new MajorController
func NewMajorController(majorService services.MajorService) *MajorController {
	return &MajorController{majorService: majorService}
}

// GetAllMajors lists majors, optionally for one department
// @Summary List majors
// @Tags majors
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Major}
// @Router /majors [get]
func (c *MajorController) GetAllMajors(ctx *gin.Context) {
	departmentID, valid := optionalInt64Query(ctx, "departmentId")
	if !valid {
		return
	}

	majors, err := c.majorService.List(ctx, departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, majors)
}

func (c *MajorController) GetMajorByID(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	major, err := c.majorService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, major)
}

func (c *MajorController) CreateMajor(ctx *gin.Context) {
	var req dto.MajorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.majorService.Create(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, id)
}

func (c *MajorController) UpdateMajor(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.MajorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.majorService.Update(ctx, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Major updated successfully")
}

func (c *MajorController) DeleteMajor(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	if err := c.majorService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Major deleted successfully")
}
