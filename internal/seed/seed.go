package seed

import (
	"context"

	"github.com/rs/zerolog"
	appServices "github.com/yigit/sims/internal/app/services"
	"github.com/yigit/sims/internal/config"
)

// CreateDefaultData writes the configured admin login when the logins table
// has no admin yet. Without a configured admin password nothing is created.
func CreateDefaultData(ctx context.Context, cfg *config.Config, authService *appServices.AuthService, lgr zerolog.Logger) error {
	if cfg.Auth.AdminPassword == "" {
		lgr.Info().Msg("No admin password configured, skipping admin seed")
		return nil
	}

	created, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		lgr.Info().Str("username", cfg.Auth.AdminUsername).Msg("Default admin login created")
	} else {
		lgr.Debug().Msg("Admin login already present")
	}
	return nil
}
