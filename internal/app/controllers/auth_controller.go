// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/apperrors"
)

// AuthController handles authentication related operations
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

// Login handles student and admin login against the logins table
// @Summary Log in
// @Description Checks a username and password against stored logins and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials; details.pendingApproval is set when the registration is still pending"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.respondLoginFailure(ctx, req.Username, err)
		return
	}
	c.issue(ctx, session)
}

// AdminLogin handles admin login with the master password or an admin row
// @Summary Admin login
// @Description Accepts the configured master password or the credentials of an admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Admin credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"max=50"`
		Password string `json:"password" binding:"required,max=72"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	session, err := c.authService.AdminLogin(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.logger.Warn().Str("username", req.Username).Msg("Admin login rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.issue(ctx, session)
}

// ProvisionLogin creates a student login for an existing student
// @Summary Provision a student login
// @Description Creates a login for an existing student. The username must be unused by logins and admission requests.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProvisionLoginRequest true "Login to create"
// @Success 201 {object} dto.APIResponse{data=dto.SuccessResponse} "Login created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin only"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /logins [post]
func (c *AuthController) ProvisionLogin(ctx *gin.Context) {
	var req dto.ProvisionLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	if err := c.authService.ProvisionLogin(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SuccessResponse{Message: "login created"}))
}

func (c *AuthController) issue(ctx *gin.Context, session models.Session) {
	resp, err := c.authService.IssueToken(session)
	if err != nil {
		c.logger.Error().Err(err).Str("username", session.Username).Msg("Failed to issue token")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// respondLoginFailure adds the pending registration hint to a rejected login
func (c *AuthController) respondLoginFailure(ctx *gin.Context, username string, err error) {
	if !apperrors.Is(err, apperrors.ErrInvalidCredentials) {
		middleware.HandleAPIError(ctx, err)
		return
	}

	pending, hintErr := c.authService.PendingHint(ctx.Request.Context(), username)
	if hintErr != nil {
		c.logger.Warn().Err(hintErr).Msg("Could not check pending registrations")
	}
	if pending {
		middleware.HandleAPIErrorWithDetails(ctx, err, map[string]interface{}{
			"pendingApproval": true,
			"hint":            "your registration is awaiting admin approval",
		})
		return
	}
	middleware.HandleAPIError(ctx, err)
}
