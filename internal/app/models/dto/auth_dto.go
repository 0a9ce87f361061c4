package dto

import "github.com/yigit/sims/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required,max=72"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse  `json:"token"`
	Session models.Session `json:"session"`
}

// ProvisionLoginRequest creates a login for an existing student
type ProvisionLoginRequest struct {
	Username  string `json:"username" binding:"required,max=50,username"`
	Password  string `json:"password" binding:"required,password"`
	StudentID int    `json:"studentId" binding:"required,gt=0"`
}

// LoginCredentials are the username and password chosen for a new login
type LoginCredentials struct {
	Username string `json:"username" binding:"required,max=50,username"`
	Password string `json:"password" binding:"required,password"`
}
