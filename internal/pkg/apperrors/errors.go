package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrDependencyUnavailable is returned when an external collaborator
	// (face encoder, camera feed) is not configured or not reachable.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Student errors
var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrStudentHasNoClass = errors.New("student is not assigned to a class")
	ErrPhotoNotFound     = errors.New("student has no photo")
)

// Lookup table errors
var (
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrMajorNotFound        = errors.New("major not found")
	ErrMajorAlreadyExists   = errors.New("major already exists in this department")
	ErrClassNotFound        = errors.New("class not found")
	ErrAcademicYearNotFound = errors.New("academic year not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrNameAlreadyExists    = errors.New("an entry with this name already exists")
	ErrReferencedEntity     = errors.New("referenced entity does not exist")
)

// Schedule errors
var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleConflict = errors.New("time slot conflicts with an existing schedule")
)

// Attendance errors
var (
	ErrSubjectNotScheduled = errors.New("subject is not scheduled for this class")
	ErrNotScheduledToday   = errors.New("class and subject are not scheduled today")
	ErrAbsenceExists       = errors.New("absence already recorded for this date")
	ErrAbsenceNotFound     = errors.New("absence not found")
)

// Scan errors
var (
	ErrScanSessionNotFound = errors.New("scan session not found or expired")
	ErrNoStudentPhotos     = errors.New("no students with photos found in class")
	ErrNoFaceEncodings     = errors.New("could not encode any student photos for facial recognition")
)

// Import/export errors
var (
	ErrMissingColumns = errors.New("excel file is missing required columns")
	ErrNoValidRows    = errors.New("no valid student records were found to import")
	ErrNoStudents     = errors.New("no students found for the selected class and year")
)

// Operator errors
var (
	ErrOperatorNotFound = errors.New("operator not found")
	ErrOperatorExists   = errors.New("operator already exists")
)

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a field-level message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError carries a user-facing message and optional details over a
// sentinel. errors.Is still matches the sentinel.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
