package dto

import "github.com/yigit/registrar/internal/app/models"

// StudentRequest is the body of create and update
type StudentRequest struct {
	Name           string   `json:"name" binding:"required,max=100"`
	Sex            string   `json:"sex" binding:"required"`
	Score          *float64 `json:"score"`
	Email          *string  `json:"email" binding:"omitempty,max=100"`
	Phone          *string  `json:"phone" binding:"omitempty,max=20"`
	DepartmentID   int64    `json:"departmentId" binding:"required,gt=0"`
	MajorID        int64    `json:"majorId" binding:"required,gt=0"`
	ClassID        int64    `json:"classId" binding:"required,gt=0"`
	AcademicYearID int64    `json:"academicYearId" binding:"required,gt=0"`
}

// StudentListQuery filters the student list
type StudentListQuery struct {
	ClassID        *int64 `form:"classId" binding:"omitempty,gt=0"`
	AcademicYearID *int64 `form:"academicYearId" binding:"omitempty,gt=0"`
}

// StudentSearchResponse lists the matches of a search
type StudentSearchResponse struct {
	Term     string           `json:"term"`
	Students []models.Student `json:"students"`
}

// AbsenceRequest records a dated absence
type AbsenceRequest struct {
	Date   string  `json:"date" binding:"required"`
	Reason *string `json:"reason" binding:"omitempty,max=255"`
}
