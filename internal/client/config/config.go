package config

import (
	"fmt"
	"time"
)

// Storage backends for uploaded manuals and images.
const (
	StorageREST = "rest"
	StorageS3   = "s3"
)

// Config holds runtime settings for the MaintKeeper CLI.
type Config struct {
	BaseURL     string
	APIKey      string
	OfflineMode bool
	DBPath      string

	StorageBackend  string
	StorageBucket   string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	LogLevel  string
	LogFormat string

	// RequestTimeout bounds one remote request. Zero means no timeout.
	RequestTimeout time.Duration
	// RequestsPerSecond limits outbound requests. Zero means unlimited.
	RequestsPerSecond float64
	BestEffortWorkers int
	HistoryCacheTTL   time.Duration

	// NATSURL enables external session events when set.
	NATSURL     string
	NATSSubject string

	Language string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:54321"
	c.DBPath = "maintkeeper.db"
	c.StorageBackend = StorageREST
	c.StorageBucket = "device-manuals"
	c.S3Region = "eu-central-1"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.BestEffortWorkers = 2
	c.HistoryCacheTTL = 5 * time.Minute
	c.NATSSubject = "maintkeeper.session"
	c.Language = "en"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if !c.OfflineMode && c.BaseURL == "" {
		return fmt.Errorf("base url is required unless offline mode is on")
	}
	switch c.StorageBackend {
	case StorageREST, StorageS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	switch c.LogFormat {
	case "text", "json", "zap":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.BestEffortWorkers < 1 {
		return fmt.Errorf("best-effort workers must be positive, got %d", c.BestEffortWorkers)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	return nil
}

// LoadConfig applies defaults, then the config file named by -c/-config,
// then command-line flags. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, configFilePath(args)); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
