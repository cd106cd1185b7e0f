// Package config resolves connection parameters from the environment and
// from an optional pgdata.yaml project file. Environment variables win over
// file values; defaults fill the rest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project file read by Load.
const ConfigFileName = "pgdata.yaml"

// Environment variable names, matching the bot deployment environments this
// library serves.
const (
	EnvPassword = "POSTGRES_PASSWORD"
	EnvHost     = "POSTGRES_HOST"
	EnvUser     = "POSTGRES_USER"
	EnvDatabase = "POSTGRES_DB"
	EnvPort     = "POSTGRES_PORT"
)

type fileConnection struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode,omitempty"`
	AppName        string `yaml:"application_name,omitempty"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

type projectFile struct {
	Connection fileConnection `yaml:"connection"`
}

// Load reads pgdata.yaml from dir and returns the partial connection
// configuration it holds. The file never carries a password; that comes from
// the environment.
func Load(dir string) (*pgdata.ConnectionConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f projectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	cfg := &pgdata.ConnectionConfig{
		Host:     f.Connection.Host,
		Port:     f.Connection.Port,
		Username: f.Connection.Username,
		Database: f.Connection.Database,
		SSLMode:  f.Connection.SSLMode,
		AppName:  f.Connection.AppName,
	}

	if f.Connection.ConnectTimeout != "" {
		timeout, err := time.ParseDuration(f.Connection.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid connect_timeout: %w", err)
		}
		cfg.ConnectTimeout = timeout
	}

	return cfg, nil
}

// FromEnv builds a connection configuration from the environment, loading a
// .env file first when one is present. Unset variables fall back to the
// values in base (when given) and then to the standard defaults.
func FromEnv(base *pgdata.ConnectionConfig) (*pgdata.ConnectionConfig, error) {
	_ = godotenv.Load()

	cfg := &pgdata.ConnectionConfig{}
	if base != nil {
		*cfg = *base
	}

	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvPort, v, pgdata.ErrInvalidConfig)
		}
		cfg.Port = port
	}

	cfg.ApplyDefaults()
	return cfg, nil
}
