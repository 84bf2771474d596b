package models

import "strings"

// Role is an operator role
type Role string

const (
	RoleAdmin Role = "admin"
	RoleClerk Role = "clerk"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClerk
}

// AttendanceStatus is the status stored in attendance.status
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLate    AttendanceStatus = "Late"
	StatusExcused AttendanceStatus = "Excused"
)

// AttendanceStatuses lists every status in report order
var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ParseAttendanceStatus matches s case-insensitively against the known statuses
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	for _, st := range AttendanceStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, true
		}
	}
	return "", false
}
