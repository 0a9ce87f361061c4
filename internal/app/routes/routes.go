package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/sims/internal/app/controllers"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Admission *controllers.AdmissionController
	Student   *controllers.StudentController
	Marksheet *controllers.MarksheetController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/admin/login", c.Auth.AdminLogin)
	}
	v1.POST("/admissions", c.Admission.Register)

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// --- Admin routes ---
	admin := authenticated.Group("")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admissions := admin.Group("/admissions")
		{
			admissions.GET("", c.Admission.List)
			admissions.GET("/:tempId", c.Admission.Get)
			admissions.POST("/:tempId/approve", c.Admission.Approve)
		}

		students := admin.Group("/students")
		{
			students.POST("", c.Student.Create)
			students.GET("", c.Student.List)
			students.GET("/:id", c.Student.Get)
			students.PUT("/:id", c.Student.Update)
			students.DELETE("/:id", c.Student.Delete)
			students.POST("/:id/marksheets", c.Marksheet.Add)
			students.GET("/:id/marksheets", c.Marksheet.List)
		}

		admin.POST("/logins", c.Auth.ProvisionLogin)
	}

	// --- Student self-service routes ---
	me := authenticated.Group("/me")
	me.Use(authMiddleware.RoleRequired(models.RoleStudent))
	{
		me.GET("", c.Student.Me)
		me.PUT("", c.Student.UpdateMe)
		me.GET("/marksheets", c.Marksheet.Mine)
	}
}
