package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
	"github.com/yigit/sims/internal/pkg/apperrors"
	"github.com/yigit/sims/internal/pkg/helpers"
)

// AdmissionController exposes registration and approval
type AdmissionController struct {
	admissionService *services.AdmissionService
	logger           zerolog.Logger
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService *services.AdmissionService, logger zerolog.Logger) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
		logger:           logger,
	}
}

// Register handles a new admission request
// @Summary Register for admission
// @Description Stores a pending admission request. The chosen username is reserved immediately.
// @Tags admissions
// @Accept json
// @Produce json
// @Param request body dto.RegisterAdmissionRequest true "Applicant information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterAdmissionResponse} "Request registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admissions [post]
func (c *AdmissionController) Register(ctx *gin.Context) {
	var req dto.RegisterAdmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid admission request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	tempID, err := c.admissionService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.RegisterAdmissionResponse{
		TempID: tempID,
		Status: models.StatusPending,
	}))
}

// List returns admission requests
// @Summary List admission requests
// @Description Lists admission requests in registration order, optionally filtered by status
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, approved)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.AdmissionListResponse} "Requests retrieved"
// @Failure 400 {object} dto.ErrorResponse "Unknown status filter"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin only"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admissions [get]
func (c *AdmissionController) List(ctx *gin.Context) {
	reqs, err := c.admissionService.List(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	start, end := helpers.CalculateSliceIndices(page, size, len(reqs))

	resp := dto.AdmissionListResponse{
		Admissions: make([]dto.AdmissionResponse, 0, end-start),
		Pagination: helpers.NewPaginationInfo(int64(len(reqs)), page, size),
	}
	for _, r := range reqs[start:end] {
		resp.Admissions = append(resp.Admissions, dto.NewAdmissionResponse(r))
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Get returns one admission request
// @Summary Get an admission request
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param tempId path int true "Temporary id"
// @Success 200 {object} dto.APIResponse{data=dto.AdmissionResponse} "Request retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /admissions/{tempId} [get]
func (c *AdmissionController) Get(ctx *gin.Context) {
	tempID, ok := pathID(ctx, "tempId")
	if !ok {
		return
	}

	req, err := c.admissionService.Get(ctx.Request.Context(), tempID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAdmissionResponse(*req)))
}

// Approve promotes a pending request to a student with a login
// @Summary Approve an admission request
// @Description Creates the student record and login, then marks the request approved. Approving an approved request is a no-op.
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param tempId path int true "Temporary id"
// @Success 200 {object} dto.APIResponse{data=dto.ApprovalResponse} "Approved or already approved"
// @Failure 400 {object} dto.ErrorResponse "Invalid id"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Username already has a login"
// @Failure 500 {object} dto.ErrorResponse "Approval failed and was rolled back"
// @Router /admissions/{tempId}/approve [post]
func (c *AdmissionController) Approve(ctx *gin.Context) {
	tempID, ok := pathID(ctx, "tempId")
	if !ok {
		return
	}

	outcome, err := c.admissionService.Approve(ctx.Request.Context(), tempID)
	if err != nil {
		if outcome.Status != "" {
			middleware.HandleAPIErrorWithDetails(ctx, err, map[string]interface{}{
				"outcome": outcome.Status,
				"tempId":  outcome.TempID,
			})
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApprovalResponse{
		Outcome:   string(outcome.Status),
		TempID:    outcome.TempID,
		StudentID: outcome.StudentID,
		Username:  outcome.Username,
	}))
}

// pathID parses a positive integer path parameter, answering 400 otherwise
func pathID(ctx *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("invalid "+name))
		return 0, false
	}
	return id, true
}
