package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SIMS_SERVER_PORT"`
		Mode string `yaml:"mode" env:"SIMS_SERVER_MODE"`
	} `yaml:"server"`

	Storage struct {
		Driver  string `yaml:"driver" env:"SIMS_STORAGE_DRIVER"`
		DataDir string `yaml:"data_dir" env:"SIMS_DATA_DIR"`
	} `yaml:"storage"`

	Database struct {
		Host            string `yaml:"host" env:"SIMS_DB_HOST"`
		Port            string `yaml:"port" env:"SIMS_DB_PORT"`
		User            string `yaml:"user" env:"SIMS_DB_USER"`
		Password        string `yaml:"password" env:"SIMS_DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"SIMS_DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"SIMS_DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"SIMS_DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"SIMS_DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"SIMS_DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"SIMS_JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"SIMS_JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"SIMS_JWT_ISSUER"`
	} `yaml:"jwt"`

	Auth struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"SIMS_BCRYPT_COST"`
		// AdminUsername and AdminPassword seed the first admin login row.
		AdminUsername string `yaml:"admin_username" env:"SIMS_ADMIN_USERNAME"`
		AdminPassword string `yaml:"admin_password" env:"SIMS_ADMIN_PASSWORD"`
		// MasterPassword, when set, also grants admin access on the admin login endpoint.
		MasterPassword string `yaml:"master_password" env:"SIMS_MASTER_PASSWORD"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"SIMS_LOG_LEVEL"`
		Format string `yaml:"format" env:"SIMS_LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and environment are enough to run.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Storage.Driver = StorageFile
	config.Storage.DataDir = "data"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "sims"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "sims"

	config.Auth.BcryptCost = 12
	config.Auth.AdminUsername = "admin"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	config.Storage.Driver = strings.ToLower(config.Storage.Driver)
	switch config.Storage.Driver {
	case StorageFile:
		if config.Storage.DataDir == "" {
			return fmt.Errorf("storage data_dir is required for the file driver")
		}
	case StoragePostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres driver")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database conn_max_lifetime: %w", err)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if config.Auth.BcryptCost < 4 || config.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", config.Auth.BcryptCost)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
