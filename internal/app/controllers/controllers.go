// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	jpegContentType = "image/jpeg"
)

var errUploadTooLarge = errors.New("upload too large")

// readUpload reads a multipart file field, refusing anything above maxBytes.
func readUpload(ctx *gin.Context, field string, maxBytes int64) ([]byte, error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("No %s file provided", field))
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("%s exceeds the %d MB limit", field, maxBytes>>20))
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return readLimited(f, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, errUploadTooLarge.Error())
	}
	return data, nil
}

// optionalInt64Query parses an optional positive integer query parameter.
func optionalInt64Query(ctx *gin.Context, name string) (*int64, bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails(name + " must be a positive integer")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &v, true
}

func sendFile(ctx *gin.Context, contentType, filename string, data []byte) {
	if filename != "" {
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	ctx.Data(http.StatusOK, contentType, data)
}

func ok(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func created(ctx *gin.Context, id int64) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.CreatedResponse{ID: id}))
}

func message(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: msg}))
}
