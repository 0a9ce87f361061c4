package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
storage:
  driver: file
  data_dir: /var/lib/sims
jwt:
  secret: from-file
  access_token_expiration: 15m
auth:
  bcrypt_cost: 10
`)
	t.Setenv("SIMS_JWT_SECRET", "from-env")
	t.Setenv("SIMS_BCRYPT_COST", "11")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "/var/lib/sims" {
		t.Errorf("data dir = %q", cfg.Storage.DataDir)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("secret = %q, want env override", cfg.JWT.Secret)
	}
	if cfg.Auth.BcryptCost != 11 {
		t.Errorf("bcrypt cost = %d, want 11", cfg.Auth.BcryptCost)
	}
	if cfg.JWT.AccessTokenExpiration != "15m" {
		t.Errorf("ttl = %q", cfg.JWT.AccessTokenExpiration)
	}
	if cfg.Auth.AdminUsername != "admin" {
		t.Errorf("admin username default = %q", cfg.Auth.AdminUsername)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SIMS_JWT_SECRET", "s3cret")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Driver != StorageFile || cfg.Storage.DataDir != "data" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing secret": `storage: {driver: file}`,
		"bad driver":     "storage: {driver: mongo}\njwt: {secret: x}",
		"bad ttl":        "jwt: {secret: x, access_token_expiration: soon}",
		"bad cost":       "jwt: {secret: x}\nauth: {bcrypt_cost: 2}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
				t.Fatalf("err = %v, want invalid configuration", err)
			}
		})
	}
}

func TestLoadConfigBadEnvValue(t *testing.T) {
	t.Setenv("SIMS_JWT_SECRET", "x")
	t.Setenv("SIMS_DB_MAX_OPEN_CONNS", "many")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a non-numeric env override")
	}
}
