// Command create-admin adds an admin login to the configured store.
//
//	create-admin -username root -password secret
package main

import (
	"context"
	"flag"
	"os"

	"github.com/yigit/sims/internal/bootstrap"
	"github.com/yigit/sims/internal/pkg/logger"
)

func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		os.Exit(1)
	}
	if *username == "" {
		*username = cfg.Auth.AdminUsername
	}
	if *password == "" {
		lgr.Error().Msg("-password is required")
		os.Exit(2)
	}

	ctx := context.Background()
	store, database, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to open storage")
		os.Exit(1)
	}
	deps := bootstrap.BuildDependencies(cfg, store, lgr)
	deps.Database = database
	defer deps.Close()

	if err := deps.Services.AuthService.CreateAdmin(ctx, *username, *password); err != nil {
		logger.Error().Err(err).Str("username", *username).Msg("Failed to create admin")
		deps.Close()
		os.Exit(1)
	}
	logger.Info().Str("username", *username).Msg("Admin login created")
}
