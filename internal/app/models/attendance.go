package models

import "time"

// Attendance is a row of the attendance table
type Attendance struct {
	ID             int64            `json:"id" db:"id"`
	StudentID      int64            `json:"studentId" db:"student_id"`
	SubjectID      int64            `json:"subjectId" db:"subject_id"`
	AttendanceDate time.Time        `json:"attendanceDate" db:"attendance_date"`
	DayOfWeek      string           `json:"dayOfWeek" db:"day_of_week"`
	Status         AttendanceStatus `json:"status" db:"status"`
	Notes          *string          `json:"notes" db:"notes"`
}

// AttendanceReportRow counts statuses of one student over a date range
type AttendanceReportRow struct {
	StudentID int64  `json:"studentId" db:"student_id"`
	Name      string `json:"name" db:"name"`
	Present   int    `json:"present" db:"present"`
	Absent    int    `json:"absent" db:"absent"`
	Late      int    `json:"late" db:"late"`
	Excused   int    `json:"excused" db:"excused"`
}

// DailyLogRow is a student with the status recorded on one day, if any
type DailyLogRow struct {
	StudentID int64   `json:"studentId" db:"student_id"`
	Name      string  `json:"name" db:"name"`
	Sex       string  `json:"sex" db:"sex"`
	Status    *string `json:"status" db:"status"`
	Notes     *string `json:"notes" db:"notes"`
}

// AttendanceMark is a status of a student on a date, used by the sheet export
type AttendanceMark struct {
	StudentID      int64     `db:"student_id"`
	AttendanceDate time.Time `db:"attendance_date"`
	Status         string    `db:"status"`
}

// Absence is a dated absence with a reason
type Absence struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"studentId" db:"student_id"`
	Date      time.Time `json:"date" db:"date"`
	Reason    *string   `json:"reason" db:"reason"`
}

// RosterEntry is a student of a class
type RosterEntry struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Sex  string `json:"sex" db:"sex"`
}
