// Package bootstrap provides dependency initialization for the framestrip API.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maauso/framestrip-api/internal/config"
	"github.com/maauso/framestrip-api/internal/media"
	"github.com/maauso/framestrip-api/internal/metrics"
	"github.com/maauso/framestrip-api/internal/runstore"
	"github.com/maauso/framestrip-api/internal/staging"
	"github.com/maauso/framestrip-api/internal/storage"
	"github.com/maauso/framestrip-api/internal/thumbnail"
)

// openRunStore is swapped in tests.
var openRunStore = runstore.Open

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service *thumbnail.Service
	Spool   *staging.Spool
	// ObjectsDir is set when the local storage driver is active so the
	// server can expose stored objects under their public URLs.
	ObjectsDir string

	closers []func() error
}

// Close releases resources held by the dependencies.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewDependencies creates and initializes all dependencies for the application.
// On error, anything already opened has been released.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.StorageDriver == config.StorageDriverLocal {
		deps.ObjectsDir = cfg.LocalStoreDir
	}
	uploader := storage.NewUploader(store, cfg.Bucket(), cfg.PublicBaseURL())

	repo, err := initRunStore(cfg, logger, deps)
	if err != nil {
		return nil, err
	}

	spool, err := staging.NewSpool(cfg.SpoolDir())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create upload spool: %w", err), deps.Close())
	}
	deps.Spool = spool

	processor := media.NewFFmpegProcessor(cfg.FFmpegPath)
	prober := media.NewFFprobeProber(cfg.FFprobePath)
	stagingAreas := staging.NewManager(cfg.StagingDir())

	deps.Service = thumbnail.NewService(
		prober,
		processor,
		uploader,
		thumbnail.StagingManager(stagingAreas),
		repo,
		thumbnail.WithLogger(logger),
		thumbnail.WithRecorder(metrics.NewPipeline()),
		thumbnail.WithTranscoder(processor),
		thumbnail.WithResizer(processor),
		thumbnail.WithMaxConcurrentRuns(cfg.MaxConcurrentRuns),
		thumbnail.WithFrameWidth(cfg.DefaultFrameWidth),
		thumbnail.WithThumbnailWidth(cfg.ThumbnailWidth),
		thumbnail.WithMaxFrameCount(cfg.MaxFrameCount),
		thumbnail.WithRunRetention(cfg.MaxRuns),
	)

	logger.Info("pipeline configured",
		slog.String("staging_dir", stagingAreas.Root()),
		slog.String("spool_dir", spool.Dir()),
		slog.Int("max_concurrent_runs", cfg.MaxConcurrentRuns),
		slog.Int("max_runs", cfg.MaxRuns),
	)

	return deps, nil
}

// initStorage creates the object store selected by STORAGE_DRIVER.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMinio:
		store, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Region:    cfg.S3Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create MinIO storage: %w", err)
		}
		if err := store.EnsureBucket(ctx, cfg.Bucket()); err != nil {
			return nil, fmt.Errorf("prepare MinIO bucket: %w", err)
		}
		logger.Info("MinIO storage configured",
			slog.String("endpoint", cfg.MinioEndpoint),
			slog.String("bucket", cfg.Bucket()),
		)
		return store, nil

	case config.StorageDriverLocal:
		store, err := storage.NewLocalStore(cfg.LocalStoreDir)
		if err != nil {
			return nil, fmt.Errorf("create local storage: %w", err)
		}
		logger.Info("local storage configured",
			slog.String("root", store.Root()),
			slog.String("bucket", cfg.Bucket()),
		)
		return store, nil

	default:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.Bucket()),
			slog.String("region", cfg.S3Region),
		)
		return store, nil
	}
}

// initRunStore creates the run record repository selected by RUN_STORE.
func initRunStore(cfg *config.Config, logger *slog.Logger, deps *Dependencies) (thumbnail.Repository, error) {
	if cfg.RunStore != config.RunStoreSQLite {
		return thumbnail.NewMemoryRepository(), nil
	}

	repo, err := openRunStore(cfg.RunStorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	deps.closers = append(deps.closers, repo.Close)
	logger.Info("SQLite run store configured",
		slog.String("path", cfg.RunStorePath),
	)
	return repo, nil
}
