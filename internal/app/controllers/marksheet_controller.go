package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/models/dto"
	"github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/middleware"
)

// MarksheetController handles semester marksheets
type MarksheetController struct {
	marksheetService *services.MarksheetService
}

// NewMarksheetController creates a new MarksheetController
func NewMarksheetController(marksheetService *services.MarksheetService) *MarksheetController {
	return &MarksheetController{marksheetService: marksheetService}
}

// Add stores a marksheet for a student
// @Summary Add a marksheet
// @Tags marksheets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student id"
// @Param request body dto.AddMarksheetRequest true "Semester results"
// @Success 201 {object} dto.APIResponse{data=dto.MarksheetResponse} "Marksheet added"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/marksheets [post]
func (c *MarksheetController) Add(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddMarksheetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.marksheetService.Add(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List returns the marksheets of a student
// @Summary List a student's marksheets
// @Tags marksheets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student id"
// @Success 200 {object} dto.APIResponse{data=dto.MarksheetListResponse} "Marksheets retrieved"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/marksheets [get]
func (c *MarksheetController) List(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	c.respond(ctx, id)
}

// Mine returns the marksheets of the logged-in student
// @Summary List my marksheets
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarksheetListResponse} "Marksheets retrieved"
// @Router /me/marksheets [get]
func (c *MarksheetController) Mine(ctx *gin.Context) {
	id, ok := sessionStudentID(ctx)
	if !ok {
		return
	}
	c.respond(ctx, id)
}

func (c *MarksheetController) respond(ctx *gin.Context, studentID int) {
	resp, err := c.marksheetService.ListForStudent(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
