package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/client/backend"
	"github.com/dmitrijs2005/maintkeeper/internal/client/cli"
	"github.com/dmitrijs2005/maintkeeper/internal/client/client"
	"github.com/dmitrijs2005/maintkeeper/internal/client/config"
	"github.com/dmitrijs2005/maintkeeper/internal/client/mirror"
	"github.com/dmitrijs2005/maintkeeper/internal/client/notify"
	"github.com/dmitrijs2005/maintkeeper/internal/client/session"
	"github.com/dmitrijs2005/maintkeeper/internal/client/tokenstore"
	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/filex"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/dmitrijs2005/maintkeeper/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	if err := filex.EnsureParentDir(cfg.DBPath); err != nil {
		return fmt.Errorf("prepare database directory: %w", err)
	}
	repos, err := client.InitDatabase(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	defer repos.Close()

	tokens := tokenstore.New(repos.Metadata, logger)
	m := metrics.New()
	store := mirror.NewStore()
	opts := backend.Options{
		Logger:          logger,
		Actor:           backend.PersistedActor(repos.Metadata),
		Seed:            cfg.OfflineMode,
		HistoryCacheTTL: cfg.HistoryCacheTTL,
	}

	var (
		data backend.DataBackend
		auth session.Authenticator
	)
	if cfg.OfflineMode {
		data = backend.NewMemory(store, opts)
		auth = session.NewOfflineAuthenticator(tokens, repos.Metadata, logger, time.Now)
	} else {
		rest := client.NewRESTClient(client.Options{
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			Timeout:           cfg.RequestTimeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            logger,
		})
		storage, err := newStorage(ctx, cfg, rest)
		if err != nil {
			return err
		}
		be := backend.NewBestEffort(cfg.BestEffortWorkers, logger, m)
		defer be.Close()

		data = backend.NewRemote(store, backend.RemoteDeps{
			REST:       rest,
			Storage:    storage,
			Tokens:     tokens,
			BestEffort: be,
			Metrics:    m,
		}, opts)
		auth = session.NewRemoteAuthenticator(rest, tokens, logger, time.Now)
	}

	ctrl := session.NewController(session.Config{
		Auth:     auth,
		Tokens:   tokens,
		Metadata: repos.Metadata,
		Navigator: session.NavigatorFunc(func(context.Context) {
			fmt.Fprintln(os.Stdout, "\nYour session has ended. Please log in again (type 'login').")
		}),
		Logger: logger,
	})
	if _, err := ctrl.Restore(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn(ctx, "starting signed out", "error", err)
	}

	if cfg.NATSURL != "" {
		src, err := session.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			logger.Warn(ctx, "session events disabled", "error", err)
		} else {
			defer src.Close()
			events, err := src.Events(ctx)
			if err != nil {
				logger.Warn(ctx, "session events disabled", "error", err)
			} else {
				go ctrl.Watch(ctx, events)
			}
		}
	}

	prefs := notify.NewPreferences(repos.Metadata)
	if err := initLanguage(ctx, repos, prefs, notify.Language(cfg.Language)); err != nil {
		return err
	}

	cli.NewApp(cli.Deps{
		Backend:     data,
		Store:       store,
		Session:     ctrl,
		Preferences: prefs,
		Logger:      logger,
		Offline:     cfg.OfflineMode,
	}).Run(ctx)

	return nil
}

func newStorage(ctx context.Context, cfg *config.Config, rest *client.RESTClient) (client.ObjectStorage, error) {
	if cfg.StorageBackend != config.StorageS3 {
		return client.NewRESTStorage(rest, cfg.StorageBucket), nil
	}
	s, err := client.NewS3Storage(ctx, client.S3Options{
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.StorageBucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("configure s3 storage: %w", err)
	}
	return s, nil
}

// initLanguage stores the configured language unless one was chosen before.
func initLanguage(ctx context.Context, repos *client.Repositories, prefs *notify.Preferences, l notify.Language) error {
	stored, err := repos.Metadata.Get(ctx, common.MetadataKeyLanguage)
	if err != nil {
		return err
	}
	if stored != nil {
		return nil
	}
	return prefs.SetLanguage(ctx, l)
}
