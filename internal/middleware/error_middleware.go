package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/dberrors"
	"github.com/yigit/registrar/internal/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   dto.ErrorCode
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},

	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrPhotoNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrDepartmentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrMajorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrAcademicYearNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrSubjectNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrScheduleNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrAbsenceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrScanSessionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrOperatorNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrNoStudents, http.StatusNotFound, dto.ErrorCodeResourceNotFound},

	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrNameAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrMajorAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrOperatorExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrAbsenceExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict},
	{apperrors.ErrScheduleConflict, http.StatusConflict, dto.ErrorCodeConflict},
	{apperrors.ErrNotScheduledToday, http.StatusConflict, dto.ErrorCodeConflict},

	{apperrors.ErrStudentHasNoClass, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrSubjectNotScheduled, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrNoStudentPhotos, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrNoFaceEncodings, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid},
	{apperrors.ErrNoValidRows, http.StatusUnprocessableEntity, dto.ErrorCodeResourceInvalid},

	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest},
	{apperrors.ErrMissingColumns, http.StatusBadRequest, dto.ErrorCodeBadRequest},
	{apperrors.ErrReferencedEntity, http.StatusBadRequest, dto.ErrorCodeResourceInvalid},

	{apperrors.ErrDependencyUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError},
}

// ErrorStatus returns the HTTP status and error code for err
func ErrorStatus(err error) (int, dto.ErrorCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	switch {
	case dberrors.IsDuplicateEntry(err):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case dberrors.IsForeignKeyViolation(err):
		return http.StatusBadRequest, dto.ErrorCodeResourceInvalid
	case dberrors.IsRowReferenced(err):
		return http.StatusConflict, dto.ErrorCodeConflict
	}
	return http.StatusInternalServerError, dto.ErrorCodeInternalServer
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, code := ErrorStatus(err)

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, "Internal server error")))
		return
	}

	detail := dto.NewErrorDetail(code, err.Error())
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		detail = detail.WithDetails(custom.Details)
	}
	if status == http.StatusServiceUnavailable {
		logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Dependency unavailable")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
