package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

// AttendanceController handles manual attendance entry and reports
type AttendanceController struct {
	attendanceService services.AttendanceService
	transferService   services.TransferService
	now               func() time.Time
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService, transferService services.TransferService) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		transferService:   transferService,
		now:               time.Now,
	}
}

// RecordAttendance upserts one student's status for a subject and date
// @Summary Record attendance
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordAttendanceRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 422 {object} dto.APIResponse{error=dto.ErrorDetail} "Subject not scheduled for the student's class"
// @Router /attendance [post]
func (c *AttendanceController) RecordAttendance(ctx *gin.Context) {
	var req dto.RecordAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.attendanceService.Record(ctx, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Attendance recorded successfully")
}

// GetRoster lists the students of a class for batch entry
func (c *AttendanceController) GetRoster(ctx *gin.Context) {
	var q dto.RosterQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	roster, err := c.attendanceService.Roster(ctx, q.ClassID, q.AcademicYearID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, roster)
}

// SaveBatch writes the statuses of several students in one request
func (c *AttendanceController) SaveBatch(ctx *gin.Context) {
	var req dto.BatchAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	saved, err := c.attendanceService.SaveBatch(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, dto.BatchAttendanceResponse{Saved: saved})
}

// GetReport counts each status per student over a date range
// @Summary Attendance report
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param classId query int true "Class ID"
// @Param subjectId query int true "Subject ID"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceReportResponse}
// @Router /attendance/report [get]
func (c *AttendanceController) GetReport(ctx *gin.Context) {
	var q dto.AttendanceReportQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	report, err := c.attendanceService.Report(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, report)
}

func (c *AttendanceController) GetDailyLog(ctx *gin.Context) {
	var q dto.DailyLogQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	rows, err := c.attendanceService.DailyLog(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, rows)
}

// ExportSheet downloads the attendance workbook of a class, year and subject
func (c *AttendanceController) ExportSheet(ctx *gin.Context) {
	var q dto.AttendanceSheetQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	buf, filename, err := c.transferService.AttendanceSheet(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendFile(ctx, xlsxContentType, filename, buf.Bytes())
}

// SweepAbsences runs the end-of-day sweep on demand
func (c *AttendanceController) SweepAbsences(ctx *gin.Context) {
	var req dto.SweepRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	date := helpers.Today(c.now())
	if d := strings.TrimSpace(req.Date); d != "" {
		parsed, err := helpers.ParseDate(d)
		if err != nil {
			middleware.HandleAPIError(ctx, apperrors.NewValidationError(err.Error()))
			return
		}
		date = parsed
	}

	inserted, err := c.attendanceService.SweepAbsences(ctx, date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SweepResponse{
		Date:     date.Format("2006-01-02"),
		Inserted: inserted,
	}))
}
