package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort        = 3319
	DefaultAPIURL      = "http://localhost:8000/api"
	DefaultDatabaseURL = "file:quickly-rsvp.db"
	DefaultTimeout     = 10 * time.Second
	defaultEnvFile     = ".env"
)

type Config struct {
	Port         int
	APIURL       string
	DatabaseURL  string
	DatabaseType string
	Timeout      time.Duration
	SessionSalt  string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string
	var timeout string

	fs := flag.NewFlagSet("quickly-rsvp", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Local API port")
	fs.StringVar(&cfg.APIURL, "api", "", "Remote API base URL")
	fs.StringVar(&timeout, "timeout", "", "Remote API timeout, 0 for none (e.g. 10s)")

	// Session storage
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Session database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Token fingerprint salt (prefer env)")

	fs.StringVar(&envFile, "env", "", "Path to a .env file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.APIURL == "" {
		cfg.APIURL = os.Getenv("API_URL")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if !strings.HasPrefix(cfg.APIURL, "http://") && !strings.HasPrefix(cfg.APIURL, "https://") {
		return Config{}, fmt.Errorf("API URL must be http(s), got %q", cfg.APIURL)
	}

	if timeout == "" {
		timeout = os.Getenv("API_TIMEOUT")
	}
	if timeout == "" {
		cfg.Timeout = DefaultTimeout
	} else {
		d, err := time.ParseDuration(timeout)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid API timeout %q", timeout)
		}
		cfg.Timeout = d
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("database type must be sqlite or postgres, got %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}

	return cfg, nil
}

// loadEnvFile reads KEY=value pairs into the environment without overriding
// variables that are already set. A missing default .env is not an error.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}
