package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "registrar"})
}

func protectedRouter(jwtService *auth.JWTService, roles ...models.Role) *gin.Engine {
	m := NewAuthMiddleware(jwtService)
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"operatorId": OperatorID(c), "username": c.GetString(ContextUsername)})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT()
	token, _, err := jwtService.GenerateToken(5, "clerk1", string(models.RoleClerk))
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  string
	}{
		{name: "missing", wantCode: http.StatusUnauthorized, wantErr: string(dto.ErrorCodeUnauthorized)},
		{name: "bearer header", header: "Bearer " + token, wantCode: http.StatusOK},
		{name: "query token", query: "?token=" + token, wantCode: http.StatusOK},
		{name: "garbage", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: string(dto.ErrorCodeInvalidToken)},
	}

	r := protectedRouter(jwtService)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Error.Code)
			} else {
				assert.Contains(t, w.Body.String(), `"operatorId":5`)
				assert.Contains(t, w.Body.String(), `"username":"clerk1"`)
			}
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	short := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: -time.Minute, TokenIssuer: "registrar"})
	token, _, err := short.GenerateToken(1, "admin", string(models.RoleAdmin))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protectedRouter(newJWT()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(dto.ErrorCodeExpiredToken), decodeError(t, w).Error.Code)
}

func TestRoleRequired(t *testing.T) {
	jwtService := newJWT()
	clerk, _, _ := jwtService.GenerateToken(2, "clerk", string(models.RoleClerk))
	admin, _, _ := jwtService.GenerateToken(1, "admin", string(models.RoleAdmin))
	r := protectedRouter(jwtService, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+clerk)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{apperrors.ErrStudentNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", apperrors.ErrClassNotFound), http.StatusNotFound},
		{apperrors.NewConflictError("Department 'CS' already exists"), http.StatusConflict},
		{apperrors.ErrScheduleConflict, http.StatusConflict},
		{apperrors.ErrNotScheduledToday, http.StatusConflict},
		{apperrors.NewValidationError("name is required"), http.StatusBadRequest},
		{apperrors.ErrMissingColumns, http.StatusBadRequest},
		{apperrors.ErrSubjectNotScheduled, http.StatusUnprocessableEntity},
		{apperrors.ErrNoFaceEncodings, http.StatusUnprocessableEntity},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperrors.ErrPermissionDenied, http.StatusForbidden},
		{apperrors.NewCustomError(apperrors.ErrDependencyUnavailable, "encoder down"), http.StatusServiceUnavailable},
		{&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, http.StatusConflict},
		{&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := ErrorStatus(tt.err)
		assert.Equal(t, tt.code, status, tt.err.Error())
	}
}

func TestHandleAPIError_Body(t *testing.T) {
	r := gin.New()
	r.GET("/custom", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrNoValidRows, "no valid rows").
			WithDetails(map[string]interface{}{"skipped": []string{"row 2: missing name"}}))
	})
	r.GET("/internal", func(c *gin.Context) {
		HandleAPIError(c, errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/custom", nil))
	body := decodeError(t, w)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "no valid rows", body.Error.Message)
	assert.Contains(t, w.Body.String(), "row 2: missing name")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))
	body = decodeError(t, w)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestBindJSONAndParseID(t *testing.T) {
	type req struct {
		Name string `json:"name" binding:"required"`
	}
	r := gin.New()
	r.POST("/items/:id", func(c *gin.Context) {
		id, ok := ParseIDParam(c, "id")
		if !ok {
			return
		}
		var body req
		if !BindJSON(c, &body) {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "name": body.Name})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items/abc", bytes.NewBufferString(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items/3", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(dto.ErrorCodeValidationFailed), decodeError(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items/3", bytes.NewBufferString(`{"name":"x"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/students/4", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"path":"/students/:id"`)
	assert.Contains(t, buf.String(), `"status":204`)
	assert.Contains(t, buf.String(), `"requestId":"req-1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/5", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
