package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/app/services"
	"github.com/yigit/registrar/internal/middleware"
)

// AuthController handles operator login and management
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles operator login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 401 {object} dto.APIResponse{error=dto.ErrorDetail} "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	c.logger.Debug().Msg("Login endpoint called")

	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.authService.Login(ctx, req)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", req.Username).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ok(ctx, resp)
}

// Me returns the claims of the current token
func (c *AuthController) Me(ctx *gin.Context) {
	ok(ctx, dto.MeResponse{
		OperatorID: middleware.OperatorID(ctx),
		Username:   ctx.GetString(middleware.ContextUsername),
		Role:       ctx.GetString(middleware.ContextRole),
	})
}

// CreateOperator registers a new operator account
func (c *AuthController) CreateOperator(ctx *gin.Context) {
	var req dto.CreateOperatorRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	id, err := c.authService.CreateOperator(ctx, req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("operatorId", id).Str("username", req.Username).Msg("Operator created")
	created(ctx, id)
}

func (c *AuthController) ListOperators(ctx *gin.Context) {
	operators, err := c.authService.ListOperators(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ok(ctx, operators)
}
