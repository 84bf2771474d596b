package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// ScheduleController handles the weekly class schedule
type ScheduleController struct {
	scheduleService services.ScheduleService
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService services.ScheduleService) *ScheduleController {
	return &ScheduleController{scheduleService: scheduleService}
}

// SearchSchedules lists schedule entries
// @Summary Search schedules
// @Description Filters by class name (substring), subject, weekday and academic year. academicYear=N/A selects entries without a year.
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param class query string false "Class name contains"
// @Param subjectId query int false "Subject ID"
// @Param day query string false "Weekday"
// @Param academicYear query string false "Academic year ID or N/A"
// @Success 200 {object} dto.APIResponse{data=[]models.Schedule}
// @Router /schedules [get]
func (c *ScheduleController) SearchSchedules(ctx *gin.Context) {
	var q dto.ScheduleSearchQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	schedules, err := c.scheduleService.Search(ctx, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, schedules)
}

func (c *ScheduleController) GetScheduleByID(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	schedule, err := c.scheduleService.Get(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, schedule)
}

func (c *ScheduleController) CreateSchedule(ctx *gin.Context) {
	var req dto.ScheduleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.scheduleService.Create(ctx, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	created(ctx, id)
}

func (c *ScheduleController) UpdateSchedule(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}
	var req dto.ScheduleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.scheduleService.Update(ctx, id, req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Schedule updated successfully")
}

func (c *ScheduleController) DeleteSchedule(ctx *gin.Context) {
	id, valid := middleware.ParseIDParam(ctx, "id")
	if !valid {
		return
	}

	if err := c.scheduleService.Delete(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	message(ctx, "Schedule deleted successfully")
}
