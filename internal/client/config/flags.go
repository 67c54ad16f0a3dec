package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/maintkeeper/internal/flagx"
)

var (
	valueFlags = []string{
		"-u", "-k", "-db", "-storage", "-bucket", "-s3-region", "-s3-endpoint", "-s3-public-url",
		"-log-level", "-log-format", "-t", "-rps", "-workers", "-history-ttl", "-nats", "-nats-subject", "-lang",
	}
	boolFlags = []string{"-offline"}
)

// parseFlags overlays cfg with the flags found in args. Arguments that are
// not configuration flags are ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, valueFlags, boolFlags...)

	fs := flag.NewFlagSet("maintkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "base URL of the remote store")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "public API key")
	fs.BoolVar(&cfg.OfflineMode, "offline", cfg.OfflineMode, "work with local demo data only")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path of the local state database")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "object storage backend (rest|s3)")
	fs.StringVar(&cfg.StorageBucket, "bucket", cfg.StorageBucket, "bucket for manuals and images")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "S3-compatible endpoint")
	fs.StringVar(&cfg.S3PublicBaseURL, "s3-public-url", cfg.S3PublicBaseURL, "prefix of public object URLs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json|zap)")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "timeout of one remote request, 0 for none")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "outbound request limit, 0 for none")
	fs.IntVar(&cfg.BestEffortWorkers, "workers", cfg.BestEffortWorkers, "workers for background writes")
	fs.DurationVar(&cfg.HistoryCacheTTL, "history-ttl", cfg.HistoryCacheTTL, "lifetime of cached part history")
	fs.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS URL for session events")
	fs.StringVar(&cfg.NATSSubject, "nats-subject", cfg.NATSSubject, "NATS subject for session events")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "interface language (en|sk|de)")

	return fs.Parse(args)
}
