package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

// StudentController handles student records, photos, schedules and absences
type StudentController struct {
	studentService services.StudentService
	maxUpload      int64
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, maxUpload int64) *StudentController {
	return &StudentController{
		studentService: studentService,
		maxUpload:      maxUpload,
	}
}

// GetAllStudents lists students, optionally filtered by class and academic year.
// With page or size in the query the response is paginated.
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param academicYearId query int false "Academic year ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse
// @Router /students [get]
func (c *StudentController) GetAllStudents(ctx *gin.Context) {
	var q dto.StudentListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	filter := models.StudentFilter{ClassID: q.ClassID, AcademicYearID: q.AcademicYearID}
	page, size, paginated := helpers.ParsePaginationParams(ctx)
	if paginated {
		filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(page, size)
	}

	students, total, err := c.studentService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if !paginated {
		ok(ctx, students)
		return
	}
	ok(ctx, dto.PaginatedResponse{
		Items:      students,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	})
}

// SearchStudents matches the term against student, class, department, major
// and academic year names.
func (c *StudentController) SearchStudents(ctx *gin.Context) {
	term := strings.TrimSpace(ctx.Query("q"))
	students, err := c.studentService.Search(ctx, term)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, dto.StudentSearchResponse{Term: term, Students: students})
}

// GetStudentByID retrieves one student
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	student, err := c.studentService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, student)
}

// CreateStudent handles student creation
// @Summary Create a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.CreatedResponse}
// @Failure 400 {object} dto.APIResponse{error=dto.ErrorDetail}
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.studentService.Create(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, id)
}

// UpdateStudent replaces every writable field of a student
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.studentService.Update(ctx, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Student updated successfully")
}

// DeleteStudent removes a student with their attendance and absences
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	if err := c.studentService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Student deleted successfully")
}

// UploadPhoto stores a captured or uploaded photo
// @Summary Set a student's photo
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param photo formData file true "Photo"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Router /students/{id}/photo [put]
func (c *StudentController) UploadPhoto(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	data, err := readUpload(ctx, "photo", c.maxUpload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.SetPhoto(ctx, id, data); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Photo saved successfully")
}

// GetPhoto streams the stored JPEG
func (c *StudentController) GetPhoto(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	data, err := c.studentService.Photo(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, jpegContentType, data)
}

func (c *StudentController) DeletePhoto(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	if err := c.studentService.DeletePhoto(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Photo deleted successfully")
}

// GetSchedule lists the weekly schedule of the student's class
func (c *StudentController) GetSchedule(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	entries, err := c.studentService.Schedule(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, entries)
}

// RecordAbsence stores a dated absence with an optional reason
func (c *StudentController) RecordAbsence(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.AbsenceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	absenceID, err := c.studentService.RecordAbsence(ctx, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, absenceID)
}

func (c *StudentController) GetAbsences(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	absences, err := c.studentService.Absences(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, absences)
}

func (c *StudentController) DeleteAbsence(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	absenceID, valid := middleware.ParseIDParam(ctx, "absenceId")
	if !valid {
		return
	}

	if err := c.studentService.DeleteAbsence(ctx, id, absenceID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Absence deleted successfully")
}
