package dto

import "github.com/yigit/registrar/internal/app/models"

// LoginRequest authenticates an operator
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	TokenType   string          `json:"tokenType"`
	ExpiresIn   int             `json:"expiresIn"`
	Operator    models.Operator `json:"operator"`
}

// CreateOperatorRequest registers an operator
type CreateOperatorRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin clerk"`
}

// MeResponse describes the authenticated operator
type MeResponse struct {
	OperatorID int64  `json:"operatorId"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}
