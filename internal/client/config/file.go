package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/maintkeeper/internal/flagx"
	"github.com/dmitrijs2005/maintkeeper/internal/timex"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Absent keys keep the current value.
type fileConfig struct {
	BaseURL     string `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey      string `json:"api_key" yaml:"api_key" toml:"api_key"`
	OfflineMode *bool  `json:"offline_mode" yaml:"offline_mode" toml:"offline_mode"`
	DBPath      string `json:"db_path" yaml:"db_path" toml:"db_path"`

	StorageBackend  string `json:"storage_backend" yaml:"storage_backend" toml:"storage_backend"`
	StorageBucket   string `json:"storage_bucket" yaml:"storage_bucket" toml:"storage_bucket"`
	S3Region        string `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
	S3Endpoint      string `json:"s3_endpoint" yaml:"s3_endpoint" toml:"s3_endpoint"`
	S3AccessKey     string `json:"s3_access_key" yaml:"s3_access_key" toml:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key" yaml:"s3_secret_key" toml:"s3_secret_key"`
	S3PublicBaseURL string `json:"s3_public_base_url" yaml:"s3_public_base_url" toml:"s3_public_base_url"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	RequestTimeout    *timex.Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	RequestsPerSecond *float64        `json:"requests_per_second" yaml:"requests_per_second" toml:"requests_per_second"`
	BestEffortWorkers int             `json:"best_effort_workers" yaml:"best_effort_workers" toml:"best_effort_workers"`
	HistoryCacheTTL   *timex.Duration `json:"history_cache_ttl" yaml:"history_cache_ttl" toml:"history_cache_ttl"`

	NATSURL     string `json:"nats_url" yaml:"nats_url" toml:"nats_url"`
	NATSSubject string `json:"nats_subject" yaml:"nats_subject" toml:"nats_subject"`

	Language string `json:"language" yaml:"language" toml:"language"`
}

func configFilePath(args []string) string {
	return flagx.ConfigFileFlagFrom(args)
}

// parseFile overlays cfg with the file at path. The format follows the
// extension: .json, .yaml/.yml or .toml.
func parseFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	case ".toml":
		err = toml.Unmarshal(data, &fc)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.APIKey, fc.APIKey)
	if fc.OfflineMode != nil {
		cfg.OfflineMode = *fc.OfflineMode
	}
	setString(&cfg.DBPath, fc.DBPath)

	setString(&cfg.StorageBackend, fc.StorageBackend)
	setString(&cfg.StorageBucket, fc.StorageBucket)
	setString(&cfg.S3Region, fc.S3Region)
	setString(&cfg.S3Endpoint, fc.S3Endpoint)
	setString(&cfg.S3AccessKey, fc.S3AccessKey)
	setString(&cfg.S3SecretKey, fc.S3SecretKey)
	setString(&cfg.S3PublicBaseURL, fc.S3PublicBaseURL)

	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	if fc.BestEffortWorkers != 0 {
		cfg.BestEffortWorkers = fc.BestEffortWorkers
	}
	if fc.HistoryCacheTTL != nil {
		cfg.HistoryCacheTTL = fc.HistoryCacheTTL.Duration
	}

	setString(&cfg.NATSURL, fc.NATSURL)
	setString(&cfg.NATSSubject, fc.NATSSubject)
	setString(&cfg.Language, fc.Language)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
