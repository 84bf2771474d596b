package dto

// ScheduleRequest creates or updates a class schedule entry
type ScheduleRequest struct {
	ClassID        int64  `json:"classId" binding:"required,gt=0"`
	SubjectID      int64  `json:"subjectId" binding:"required,gt=0"`
	DayOfWeek      string `json:"dayOfWeek" binding:"required"`
	StartTime      string `json:"startTime" binding:"required"`
	EndTime        string `json:"endTime" binding:"required"`
	AcademicYearID *int64 `json:"academicYearId" binding:"omitempty,gt=0"`
}

// ScheduleSearchQuery filters schedules. AcademicYear is an id or "N/A".
type ScheduleSearchQuery struct {
	ClassName    string `form:"class"`
	SubjectID    *int64 `form:"subjectId" binding:"omitempty,gt=0"`
	DayOfWeek    string `form:"day"`
	AcademicYear string `form:"academicYear"`
}
