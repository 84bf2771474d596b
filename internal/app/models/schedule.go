package models

// Schedule is a class_schedule row with display names
type Schedule struct {
	ID               int64   `json:"id" db:"id"`
	ClassID          int64   `json:"classId" db:"class_id"`
	ClassName        string  `json:"className" db:"class_name"`
	SubjectID        int64   `json:"subjectId" db:"subject_id"`
	SubjectName      string  `json:"subjectName" db:"subject_name"`
	DayOfWeek        string  `json:"dayOfWeek" db:"day_of_week"`
	StartTime        string  `json:"startTime" db:"start_time"`
	EndTime          string  `json:"endTime" db:"end_time"`
	AcademicYearID   *int64  `json:"academicYearId" db:"academic_year_id"`
	AcademicYearName *string `json:"academicYearName" db:"academic_year_name"`
}

// ScheduleInput holds the writable columns of class_schedule. Times are HH:MM.
type ScheduleInput struct {
	ClassID        int64
	SubjectID      int64
	DayOfWeek      string
	StartTime      string
	EndTime        string
	AcademicYearID *int64
}

// ScheduleFilter narrows a schedule search
type ScheduleFilter struct {
	// ClassName matches partially
	ClassName string
	SubjectID *int64
	DayOfWeek string
	// NoAcademicYear selects entries without a year; it overrides AcademicYearID
	NoAcademicYear bool
	AcademicYearID *int64
}

// StudentScheduleEntry is one line of a student's weekly timetable
type StudentScheduleEntry struct {
	DayOfWeek   string `json:"dayOfWeek" db:"day_of_week"`
	StartTime   string `json:"startTime" db:"start_time"`
	EndTime     string `json:"endTime" db:"end_time"`
	SubjectID   int64  `json:"subjectId" db:"subject_id"`
	SubjectName string `json:"subjectName" db:"subject_name"`
}

// ScheduledPair is a class/subject combination scheduled on some day
type ScheduledPair struct {
	ClassID   int64 `db:"class_id"`
	SubjectID int64 `db:"subject_id"`
}
