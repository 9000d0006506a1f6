package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Storage   StorageConfig
	Ingest    IngestConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	AllowedDisks []string // disks documents may be served from, e.g. "local,ftp"
	LocalRoot    string   // root directory for the "local" disk
	FTP          FTPConfig
}

// FTPConfig holds connection settings for the "ftp" disk
type FTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	DisableEPSV bool // fall back to plain PASV for legacy servers
	Timeout     time.Duration
}

// IngestConfig holds ingestion pipeline settings
type IngestConfig struct {
	SourceLabel string // stamped on every claim row as its ingestion source
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ftpTimeout, err := time.ParseDuration(getEnv("FTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FTP_TIMEOUT: %w", err)
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "claims"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Storage: StorageConfig{
			AllowedDisks: splitList(getEnv("STORAGE_DISKS", "local,ftp")),
			LocalRoot:    getEnv("STORAGE_LOCAL_ROOT", "./storage/claims"),
			FTP: FTPConfig{
				Host:        os.Getenv("FTP_HOST"),
				Port:        getEnv("FTP_PORT", "21"),
				Username:    os.Getenv("FTP_USERNAME"),
				Password:    os.Getenv("FTP_PASSWORD"),
				DisableEPSV: getEnv("FTP_DISABLE_EPSV", "false") == "true",
				Timeout:     ftpTimeout,
			},
		},
		Ingest: IngestConfig{
			SourceLabel: getEnv("INGEST_SOURCE_LABEL", "tpa-batch"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList splits a comma separated env value into trimmed entries
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
