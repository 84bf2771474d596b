package models

// Student is a row of mystudent with the names of its references
type Student struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	Sex            string  `json:"sex" db:"sex"`
	Score          float64 `json:"score" db:"score"`
	Email          *string `json:"email" db:"email"`
	Phone          *string `json:"phone" db:"phone"`
	DepartmentID   *int64  `json:"departmentId" db:"department_id"`
	MajorID        *int64  `json:"majorId" db:"major_id"`
	ClassID        *int64  `json:"classId" db:"class_id"`
	AcademicYearID *int64  `json:"academicYearId" db:"academic_year_id"`
	HasPhoto       bool    `json:"hasPhoto" db:"has_photo"`

	DepartmentName   *string `json:"departmentName" db:"department_name"`
	MajorName        *string `json:"majorName" db:"major_name"`
	ClassName        *string `json:"className" db:"class_name"`
	AcademicYearName *string `json:"academicYearName" db:"academic_year_name"`
}

// StudentInput holds the writable columns of mystudent
type StudentInput struct {
	Name           string
	Sex            string
	Score          float64
	Email          *string
	Phone          *string
	DepartmentID   *int64
	MajorID        *int64
	ClassID        *int64
	AcademicYearID *int64
}

// StudentFilter narrows a student listing
type StudentFilter struct {
	ClassID        *int64
	AcademicYearID *int64
	Limit          uint64
	Offset         uint64
}

// FaceSample is a student photo used to build a recognition gallery
type FaceSample struct {
	StudentID int64  `db:"id"`
	Name      string `db:"name"`
	Photo     []byte `db:"photo"`
}
