// Package config loads application configuration from environment
// variables.  Callers load a .env file first (see LoadDotenv); values
// already present in the environment win.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Config holds the runtime configuration of the API server.
type Config struct {
	Env           string // application environment (dev, test, prod)
	Port          string // HTTP port to listen on
	StoreDriver   string // "mysql" or "memory"
	DBUser        string
	DBPass        string // may be empty
	DBHost        string
	DBPort        string
	DBName        string
	DBAutoMigrate bool   // create tables on startup
	JWTSecret     string // HS256 secret shared with the auth service
	LogLevel      string
	LogFormat     string // "json" or "console"
}

// LoadDotenv reads .env (or the given files) into the environment.  A
// missing file is not an error.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration and exits the process when a required
// variable is missing or malformed.
func Load() Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse reads the configuration from the environment.  Database settings
// are required only for the mysql store.
func Parse() (Config, error) {
	var missing []string
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8080"),
		StoreDriver:   strings.ToLower(envStr("STORE_DRIVER", StoreMySQL)),
		DBPass:        os.Getenv("DB_PASS"),
		DBAutoMigrate: envBool("DB_AUTO_MIGRATE", false),
		JWTSecret:     must(&missing, "JWT_SECRET"),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFormat:     envStr("LOG_FORMAT", "json"),
	}
	switch cfg.StoreDriver {
	case StoreMySQL:
		cfg.DBUser = must(&missing, "DB_USER")
		cfg.DBHost = must(&missing, "DB_HOST")
		cfg.DBPort = must(&missing, "DB_PORT")
		cfg.DBName = must(&missing, "DB_NAME")
	case StoreMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return cfg, fmt.Errorf("invalid APP_PORT %q", cfg.Port)
	}
	return cfg, nil
}

// must returns the value of a required variable, recording its name in
// missing when it is unset or empty.
func must(missing *[]string, key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		*missing = append(*missing, key)
	}
	return v
}
