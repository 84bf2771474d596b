package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// SubjectController handles subject operations
type SubjectController struct {
	subjectService services.SubjectService
}

// NewSubjectController creates a new SubjectController
func NewSubjectController(subjectService services.SubjectService) *SubjectController {
	return &SubjectController{subjectService: subjectService}
}

func (c *SubjectController) GetAllSubjects(ctx *gin.Context) {
	subjects, err := c.subjectService.List(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, subjects)
}

func (c *SubjectController) GetSubjectByID(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	subject, err := c.subjectService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, subject)
}

func (c *SubjectController) CreateSubject(ctx *gin.Context) {
	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.subjectService.Create(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, id)
}

func (c *SubjectController) UpdateSubject(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.subjectService.Update(ctx, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Subject updated successfully")
}

func (c *SubjectController) DeleteSubject(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	if err := c.subjectService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Subject deleted successfully")
}
