package dto

// ImportStudentsForm is the multipart form of a student import
type ImportStudentsForm struct {
	ClassName        string `form:"className" binding:"required,max=100"`
	AcademicYearName string `form:"academicYearName" binding:"required,max=100"`
	MajorName        string `form:"majorName" binding:"required,max=100"`
}

// ImportStudentsResponse summarizes an import
type ImportStudentsResponse struct {
	Inserted int      `json:"inserted"`
	Skipped  []string `json:"skipped"`
}
