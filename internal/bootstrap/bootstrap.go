package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/sims/internal/app/controllers"
	appRepos "github.com/yigit/sims/internal/app/repositories"
	appRoutes "github.com/yigit/sims/internal/app/routes"
	appServices "github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/config"
	"github.com/yigit/sims/internal/db"
	appMiddleware "github.com/yigit/sims/internal/middleware"
	pkgAuth "github.com/yigit/sims/internal/pkg/auth"
	"github.com/yigit/sims/internal/pkg/helpers"
	"github.com/yigit/sims/internal/pkg/logger"
	"github.com/yigit/sims/internal/recordstore"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store          recordstore.Store
	Database       *db.PostgresDB // nil unless the postgres driver is selected
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	JWTService     *pkgAuth.JWTService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// Close releases the storage backend
func (d *Dependencies) Close() {
	if d.Database != nil {
		d.Database.Close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("SIMS_CONFIG", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the record store selected by the configuration. The
// postgres driver also connects and applies migrations; the returned
// database is nil for the file driver.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (recordstore.Store, *db.PostgresDB, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := database.Pool.Ping(pingCtx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}

		lgr.Info().Msg("Running database migrations...")
		if err := db.NewMigrator(database).Up(ctx); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database ready")
		return recordstore.NewPostgresStore(database), database, nil

	default:
		store, err := recordstore.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		lgr.Info().Str("dir", store.Dir()).Msg("Using file record store")
		return store, nil, nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, store recordstore.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(store)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(
		deps.Repos,
		pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost),
		deps.JWTService,
		appServices.Options{
			MasterPassword: cfg.Auth.MasterPassword,
			AdminUsername:  cfg.Auth.AdminUsername,
		},
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.AuthService, logger.Component("auth-controller")),
		Admission: appControllers.NewAdmissionController(deps.Services.AdmissionService, logger.Component("admission-controller")),
		Student:   appControllers.NewStudentController(deps.Services.StudentService, logger.Component("student-controller")),
		Marksheet: appControllers.NewMarksheetController(deps.Services.MarksheetService),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router, nil
}
