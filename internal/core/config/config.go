package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "REORDER_"

// Config represents the top-level configuration of a feature run.
type Config struct {
	Source  SourceConfig  `koanf:"source"`
	Engine  EngineConfig  `koanf:"engine"`
	Storage StorageConfig `koanf:"storage"`
	Server  ServerConfig  `koanf:"server"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type SourceConfig struct {
	Path string `koanf:"path"` // flat (order, product) CSV
}

type EngineConfig struct {
	PartitionCount int    `koanf:"partition_count"`
	WorkerCount    int    `koanf:"worker_count"`
	ResumePolicy   string `koanf:"resume_policy"` // validate | exists | none
}

type StorageConfig struct {
	Type         string `koanf:"type"` // filesystem | postgres
	Dir          string `koanf:"dir"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// MetricsConfig controls where batch commands publish engine metrics. An empty
// PushURL disables pushing.
type MetricsConfig struct {
	PushURL string `koanf:"push_url"` // Pushgateway base URL
	Job     string `koanf:"job"`
}

func (c *Config) Validate() error {
	if c.Engine.PartitionCount <= 0 {
		return fmt.Errorf("engine.partition_count must be > 0")
	}
	if c.Engine.WorkerCount <= 0 {
		return fmt.Errorf("engine.worker_count must be > 0")
	}
	switch c.Engine.ResumePolicy {
	case "validate", "exists", "none":
	default:
		return fmt.Errorf("invalid engine.resume_policy %q (must be validate, exists or none)", c.Engine.ResumePolicy)
	}

	switch c.Storage.Type {
	case "filesystem":
		if strings.TrimSpace(c.Storage.Dir) == "" {
			return fmt.Errorf("storage.dir is required for filesystem storage")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for postgres storage")
		}
		if c.Storage.MaxOpenConns <= 0 {
			return fmt.Errorf("storage.max_open_conns must be > 0")
		}
		if c.Storage.MaxIdleConns <= 0 {
			return fmt.Errorf("storage.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported storage.type %q", c.Storage.Type)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if c.Metrics.PushURL != "" && strings.TrimSpace(c.Metrics.Job) == "" {
		return fmt.Errorf("metrics.job is required when metrics.push_url is set")
	}
	return nil
}

// Load layers defaults, the optional YAML file, a .env file and REORDER_ env vars,
// then validates the result. Nested keys use a double underscore:
// REORDER_ENGINE__PARTITION_COUNT=10.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"source.path":            "instacart_merged_new.csv",
		"engine.partition_count": 50,
		"engine.worker_count":    4,
		"engine.resume_policy":   "validate",
		"storage.type":           "filesystem",
		"storage.dir":            "./results",
		"storage.dsn":            "",
		"storage.max_open_conns": 10,
		"storage.max_idle_conns": 10,
		"storage.auto_migrate":   true,
		"server.port":            8080,
		"server.host":            "0.0.0.0",
		"server.mode":            "release",
		"metrics.push_url":       "",
		"metrics.job":            "reorderfeat",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
