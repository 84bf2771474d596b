package dto

// NameRequest is the body of the name-only lookup tables
type NameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// MajorRequest creates or updates a major
type MajorRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0"`
}

// SubjectRequest creates or updates a subject
type SubjectRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"omitempty,max=20"`
	Description string `json:"description" binding:"omitempty,max=255"`
}
