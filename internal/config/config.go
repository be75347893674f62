package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Settings is the full runtime configuration.
type Settings struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Proofs  ProofsConfig  `yaml:"proofs"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

type EngineConfig struct {
	Timezone     string        `yaml:"timezone"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type ProofsConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Default returns settings for a local SQLite deployment.
func Default() Settings {
	return Settings{
		Storage: StorageConfig{Driver: DriverSQLite, Path: "clarity.db"},
		Server:  ServerConfig{HTTPAddr: ":8080", GRPCAddr: ":50061"},
		Engine:  EngineConfig{Timezone: "UTC", WriteTimeout: 10 * time.Second},
		Proofs:  ProofsConfig{DefaultLimit: proof.DefaultListLimit, MaxLimit: proof.MaxListLimit},
	}
}

// Load reads path (or $CLARITY_CONFIG when path is empty) over the defaults,
// then applies environment overrides. A missing file is only an error when
// it was named explicitly.
func Load(path string) (Settings, error) {
	s := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv("CLARITY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return s, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	applyEnv(&s)
	return s, nil
}

func applyEnv(s *Settings) {
	if v := os.Getenv("CLARITY_DB_DRIVER"); v != "" {
		s.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("CLARITY_DB_PATH"); v != "" {
		s.Storage.Path = v
	}
	if v := os.Getenv("CLARITY_DATABASE_URL"); v != "" {
		s.Storage.DatabaseURL = v
	}
	if v := os.Getenv("CLARITY_HTTP_ADDR"); v != "" {
		s.Server.HTTPAddr = v
	}
	if v := os.Getenv("CLARITY_GRPC_ADDR"); v != "" {
		s.Server.GRPCAddr = v
	}
	if v := os.Getenv("CLARITY_TIMEZONE"); v != "" {
		s.Engine.Timezone = v
	}
	if v := os.Getenv("CLARITY_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			s.Engine.WriteTimeout = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			s.Engine.WriteTimeout = time.Duration(secs) * time.Second
		}
	}
}

// Validate rejects settings the services cannot start with.
func (s Settings) Validate() error {
	switch s.Storage.Driver {
	case DriverSQLite:
		if strings.TrimSpace(s.Storage.Path) == "" {
			return errors.New("storage.path is required for sqlite")
		}
	case DriverPostgres:
		if strings.TrimSpace(s.Storage.DatabaseURL) == "" {
			return errors.New("storage.database_url is required for postgres")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", s.Storage.Driver)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	if s.Engine.WriteTimeout <= 0 {
		return fmt.Errorf("engine.write_timeout must be positive, got %s", s.Engine.WriteTimeout)
	}
	if s.Proofs.DefaultLimit <= 0 || s.Proofs.MaxLimit <= 0 {
		return errors.New("proofs limits must be positive")
	}
	if s.Proofs.DefaultLimit > s.Proofs.MaxLimit {
		return fmt.Errorf("proofs.default_limit %d exceeds max_limit %d", s.Proofs.DefaultLimit, s.Proofs.MaxLimit)
	}
	return nil
}

// Location loads the configured timezone. Empty means UTC.
func (s Settings) Location() (*time.Location, error) {
	if s.Engine.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Engine.Timezone, err)
	}
	return loc, nil
}

// EngineConfig builds the engine configuration. Call Validate first.
func (s Settings) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if loc, err := s.Location(); err == nil {
		cfg.Location = loc
	}
	if s.Engine.WriteTimeout > 0 {
		cfg.WriteTimeout = s.Engine.WriteTimeout
	}
	return cfg
}

// ProofLimit resolves a requested list size against the configured limits.
func (s Settings) ProofLimit(requested int) int {
	if requested <= 0 {
		requested = s.Proofs.DefaultLimit
	}
	if requested > s.Proofs.MaxLimit {
		requested = s.Proofs.MaxLimit
	}
	return proof.ClampLimit(requested)
}
