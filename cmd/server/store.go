package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/cache"
	"github.com/invoicer/backend/internal/infrastructure/config"
	"github.com/invoicer/backend/internal/infrastructure/docstore"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/infrastructure/migration"
	"github.com/invoicer/backend/internal/infrastructure/persistence"
	"github.com/invoicer/backend/internal/infrastructure/storage"
	"github.com/invoicer/backend/internal/infrastructure/telemetry"
)

// snapshotBackend is the configured snapshot store plus its lifecycle hooks
type snapshotBackend struct {
	store invoice.SnapshotStore
	ping  func(ctx context.Context) error
	close func() error
}

// openSnapshotStore builds the store selected by store.driver
func openSnapshotStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*snapshotBackend, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn("Using in-memory snapshot store; documents are lost on restart")
		return &snapshotBackend{store: persistence.NewMemorySnapshotStore()}, nil

	case config.StoreFile:
		store, err := persistence.NewFileSnapshotStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		return &snapshotBackend{
			store: store,
			ping: func(context.Context) error {
				_, err := os.Stat(cfg.Store.Path)
				return err
			},
		}, nil

	case config.StoreSQLite, config.StorePostgres:
		return openSQLStore(ctx, cfg, log)

	case config.StoreRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &snapshotBackend{
			store: cache.NewRedisSnapshotStore(client, cfg.Redis.KeyPrefix),
			ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil

	case config.StoreFirestore:
		client, err := docstore.NewFirestoreClient(ctx, cfg.Firestore)
		if err != nil {
			return nil, err
		}
		return &snapshotBackend{
			store: docstore.NewFirestoreSnapshotStore(client, cfg.Firestore.Collection),
			close: client.Close,
		}, nil
	}
	return nil, fmt.Errorf("store.driver %q is not supported", cfg.Store.Driver)
}

func openSQLStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*snapshotBackend, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	var (
		db  *persistence.Database
		err error
	)
	if cfg.Store.Driver == config.StoreSQLite {
		db, err = persistence.NewSQLiteDatabase(cfg.Store.Path, gormLog)
	} else {
		db, err = persistence.NewDatabase(&cfg.Database, gormLog)
	}
	if err != nil {
		return nil, err
	}

	dbName := cfg.Database.DBName
	if cfg.Store.Driver == config.StoreSQLite {
		dbName = cfg.Store.Path
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:  dbName,
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}

	if cfg.Store.Driver == config.StorePostgres && cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	log.Info("Database connected successfully", zap.String("driver", cfg.Store.Driver))
	return &snapshotBackend{
		store: persistence.NewGormSnapshotRepository(db.DB),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.SQLDB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: db.Close,
	}, nil
}

// migrate applies the embedded migrations. The migrator is not closed since
// closing it would also close the shared connection pool.
func migrate(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.SQLDB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	return m.Up()
}

// assetBackend is the configured logo store, nil for inline-only
type assetBackend struct {
	store invoice.AssetStore
	// dir is served as static files when set
	dir string
}

func openAssetStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*assetBackend, error) {
	switch cfg.Asset.Backend {
	case config.AssetS3:
		store, err := storage.NewS3AssetStore(ctx, &cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return &assetBackend{store: store}, nil

	case config.AssetFilesystem:
		store, err := storage.NewFileSystemAssetStore(cfg.Asset.Dir, cfg.Asset.BaseURL)
		if err != nil {
			return nil, err
		}
		return &assetBackend{store: store, dir: store.Dir()}, nil
	}
	return &assetBackend{}, nil
}
