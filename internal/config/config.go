// Package config reads the server's settings: Postgres and NATS from
// environment variables, HTTP serving from an optional yaml file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Postgres holds Postgres connection settings.
type Postgres struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// PostgresFromEnv reads DB_* environment variables (with defaults).
func PostgresFromEnv() Postgres {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		port = 5432
	}
	return Postgres{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "pixl"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

// DSN returns the Postgres connection URL.
func (p Postgres) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// Server holds the HTTP serving settings.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AdminToken     string   `yaml:"admin_token"`
}

// DefaultServer returns serving defaults.
func DefaultServer() Server {
	return Server{
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
	}
}

// LoadServer reads the yaml settings file, falling back to defaults when
// the path is empty or the file is missing.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// NATSURL reads the NATS server URL.
func NATSURL() string {
	return getEnv("NATS_URL", "nats://localhost:4222")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
