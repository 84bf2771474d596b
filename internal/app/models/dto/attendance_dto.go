package dto

import "github.com/yigit/registrar/internal/app/models"

// RecordAttendanceRequest upserts one attendance row
type RecordAttendanceRequest struct {
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	SubjectID int64   `json:"subjectId" binding:"required,gt=0"`
	Date      string  `json:"date" binding:"required"`
	Status    string  `json:"status" binding:"required"`
	Notes     *string `json:"notes" binding:"omitempty,max=255"`
}

// BatchAttendanceItem is one student's status in a batch save
type BatchAttendanceItem struct {
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	Status    string  `json:"status" binding:"required"`
	Notes     *string `json:"notes" binding:"omitempty,max=255"`
}

// BatchAttendanceRequest saves statuses for several students of a class
type BatchAttendanceRequest struct {
	ClassID   int64                 `json:"classId" binding:"required,gt=0"`
	SubjectID int64                 `json:"subjectId" binding:"required,gt=0"`
	Date      string                `json:"date" binding:"required"`
	Records   []BatchAttendanceItem `json:"records" binding:"required,min=1,dive"`
}

// BatchAttendanceResponse reports how many rows were written
type BatchAttendanceResponse struct {
	Saved int `json:"saved"`
}

// AttendanceReportQuery selects a report
type AttendanceReportQuery struct {
	ClassID   int64  `form:"classId" binding:"required,gt=0"`
	SubjectID int64  `form:"subjectId" binding:"required,gt=0"`
	From      string `form:"from" binding:"required"`
	To        string `form:"to" binding:"required"`
}

// AttendanceReportResponse is the per-student status count
type AttendanceReportResponse struct {
	ClassID   int64                        `json:"classId"`
	SubjectID int64                        `json:"subjectId"`
	From      string                       `json:"from"`
	To        string                       `json:"to"`
	Rows      []models.AttendanceReportRow `json:"rows"`
}

// DailyLogQuery selects one day of a class/subject
type DailyLogQuery struct {
	Date           string `form:"date" binding:"required"`
	ClassID        int64  `form:"classId" binding:"required,gt=0"`
	AcademicYearID int64  `form:"academicYearId" binding:"required,gt=0"`
	SubjectID      int64  `form:"subjectId" binding:"required,gt=0"`
}

// AttendanceSheetQuery selects the attendance workbook
type AttendanceSheetQuery struct {
	ClassID        int64 `form:"classId" binding:"required,gt=0"`
	AcademicYearID int64 `form:"academicYearId" binding:"required,gt=0"`
	SubjectID      int64 `form:"subjectId" binding:"required,gt=0"`
}

// RosterQuery lists the students of a class for batch entry
type RosterQuery struct {
	ClassID        int64  `form:"classId" binding:"required,gt=0"`
	AcademicYearID *int64 `form:"academicYearId" binding:"omitempty,gt=0"`
}

// SweepRequest marks scheduled students without a row as absent.
// Date defaults to today.
type SweepRequest struct {
	Date string `json:"date"`
}

// SweepResponse reports how many absent rows were inserted
type SweepResponse struct {
	Date     string `json:"date"`
	Inserted int64  `json:"inserted"`
}
