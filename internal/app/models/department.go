package models

import "fmt"

// LookupTable is a name-only reference table
type LookupTable string

const (
	TableDepartment   LookupTable = "department"
	TableClass        LookupTable = "class"
	TableAcademicYear LookupTable = "academic_year"
)

// ParseLookupTable validates a table name coming from a route
func ParseLookupTable(s string) (LookupTable, error) {
	switch LookupTable(s) {
	case TableDepartment, TableClass, TableAcademicYear:
		return LookupTable(s), nil
	}
	return "", fmt.Errorf("unknown lookup table %q", s)
}

// Label is the human readable singular name
func (t LookupTable) Label() string {
	switch t {
	case TableDepartment:
		return "Department"
	case TableClass:
		return "Class"
	case TableAcademicYear:
		return "Academic year"
	}
	return string(t)
}

// LookupItem is a row of a name-only table
type LookupItem struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Major belongs to a department
type Major struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	DepartmentID   int64  `json:"departmentId" db:"department_id"`
	DepartmentName string `json:"departmentName" db:"department_name"`
}

// Subject is a taught course
type Subject struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Description string `json:"description" db:"description"`
}
