package controllers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// TransferController imports and exports student workbooks
type TransferController struct {
	transferService services.TransferService
	maxUpload       int64
	now             func() time.Time
}

// NewTransferController creates a new TransferController
func NewTransferController(transferService services.TransferService, maxUpload int64) *TransferController {
	return &TransferController{
		transferService: transferService,
		maxUpload:       maxUpload,
		now:             time.Now,
	}
}

// ImportStudents reads an .xlsx file and inserts its rows into one class,
// academic year and major.
// @Summary Import students from Excel
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Workbook"
// @Param className formData string true "Class name"
// @Param academicYearName formData string true "Academic year name"
// @Param majorName formData string true "Major name"
// @Success 200 {object} dto.APIResponse{data=dto.ImportStudentsResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail} "Missing columns"
// @Failure 422 {object} dto.APIResponse{error=dto.ErrorDetail} "No valid rows"
// @Router /students/import [post]
func (c *TransferController) ImportStudents(ctx *gin.Context) {
	var form dto.ImportStudentsForm
	if !middleware.BindForm(ctx, &form) {
		return
	}

	data, err := readUpload(ctx, "file", c.maxUpload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := c.transferService.ImportStudents(ctx, bytes.NewReader(data), form)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, result)
}

// ExportStudents downloads the filtered student list as .xlsx
func (c *TransferController) ExportStudents(ctx *gin.Context) {
	var q dto.StudentListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	buf, err := c.transferService.ExportStudents(ctx, models.StudentFilter{
		ClassID:        q.ClassID,
		AcademicYearID: q.AcademicYearID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	filename := fmt.Sprintf("students_%s.xlsx", c.now().Format("20060102_150405"))
	sendFile(ctx, xlsxContentType, filename, buf.Bytes())
}
