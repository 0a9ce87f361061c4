package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/logger"
)

// errorMapping ties a sentinel to its HTTP status, error code and default message
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
	// fixed keeps message even when a wrapped error carries its own
	fixed bool
}

// Order matters: the first matching sentinel wins. Partial cascade and
// approval failures wrap whatever broke the workflow, conflicts and storage
// errors included, so they come first.
var errorMappings = []errorMapping{
	{apperrors.ErrPartialCascadeFailure, http.StatusInternalServerError, dto.ErrorCodePartialCascadeFailure, "Student deleted but dependent records remain", false},
	{apperrors.ErrApprovalFailed, http.StatusInternalServerError, dto.ErrorCodeApprovalFailed, "Approval failed and was rolled back", true},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed", false},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request", false},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid username or password", false},
	{apperrors.ErrAccountNotLinked, http.StatusUnauthorized, dto.ErrorCodeAccountNotLinked, "Login is not linked to a student record", false},
	{auth.ErrExpiredToken, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", false},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired", false},
	{auth.ErrInvalidToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", false},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token", false},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied", false},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found", false},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists", false},
	{apperrors.ErrUsernameTaken, http.StatusConflict, dto.ErrorCodeUsernameTaken, "Username already taken", false},
	{apperrors.ErrUsernameConflict, http.StatusConflict, dto.ErrorCodeUsernameConflict, "Username conflicts with an existing login", false},
	{apperrors.ErrIOFailure, http.StatusInternalServerError, dto.ErrorCodeStorageError, "Storage error", false},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	HandleAPIErrorWithDetails(c, err, nil)
}

// HandleAPIErrorWithDetails is HandleAPIError with extra response details
// merged over those carried by the error.
func HandleAPIErrorWithDetails(c *gin.Context, err error, extra map[string]interface{}) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		}
		message := m.message
		if !m.fixed {
			message = apperrors.MessageOf(err, m.message)
		}
		writeError(c, m.status, m.code, message, err, extra)
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	writeError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error", err, extra)
}

func writeError(c *gin.Context, status int, code dto.ErrorCode, message string, err error, extra map[string]interface{}) {
	detail := dto.NewErrorDetail(code, message)

	details := make(map[string]interface{})
	for k, v := range apperrors.DetailsOf(err) {
		details[k] = v
	}
	for k, v := range extra {
		details[k] = v
	}
	if len(details) > 0 {
		detail = detail.WithDetails(details)
	}
	if gin.Mode() == gin.DebugMode {
		detail = detail.WithDebugInfo("%v", err)
	}

	c.AbortWithStatusJSON(status, dto.NewFailureResponse(detail))
}
