package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/config"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/seed"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSQLiteFile = "nimo-inventory.db"

// app is everything a command needs, built from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	rdb      *redis.Client
	repos    *repository.Repositories
	hub      *events.Hub
	services *service.Services
}

// newApp loads configuration and wires storage, cache, archive and services.
// The memory backend is seeded here since it starts empty on every run.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, logger: zapLogger}
	if err := a.initStorage(ctx); err != nil {
		a.close()
		return nil, err
	}

	opts := service.Options{
		Logger:              zapLogger,
		Currency:            cfg.Report.Currency,
		ExpiringHorizonDays: cfg.Report.ExpiringHorizonDays,
		TopProducts:         cfg.Report.TopProducts,
		RecentMovements:     cfg.Report.RecentMovements,
	}

	if cfg.Redis.Enabled() {
		a.rdb = initRedis(cfg.Redis)
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, report cache disabled", zap.Error(err))
			a.rdb.Close()
			a.rdb = nil
		} else {
			opts.Cache = service.NewRedisReportCache(a.rdb, "nimo-inventory:report", cfg.Report.CacheTTL)
		}
	}

	if cfg.MinIO.Enabled() {
		archiver, err := initArchiver(ctx, cfg.MinIO)
		if err != nil {
			// 归档失败不影响服务启动
			zapLogger.Warn("MinIO unavailable, report archive disabled", zap.Error(err))
		} else {
			opts.Archiver = archiver
		}
	}

	a.hub = events.NewHub(zapLogger)
	opts.Hub = a.hub
	a.services = service.NewServices(a.repos, opts)
	return a, nil
}

func (a *app) initStorage(ctx context.Context) error {
	cfg := a.cfg.Database
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		a.repos = repository.NewMemoryRepositories(cfg.SimulatedLatency)
		if cfg.Seed {
			if _, err := seed.Load(ctx, a.repos, time.Now(), a.logger); err != nil {
				return fmt.Errorf("seed memory backend: %w", err)
			}
		}
		return nil
	case "sqlite", "postgres":
		db, err := initDatabase(cfg)
		if err != nil {
			return err
		}
		a.db = db
		a.repos = repository.NewGormRepositories(db)
		return nil
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.ToLower(cfg.Driver) == "sqlite" {
		dsn := cfg.DSN
		if dsn == "" {
			dsn = defaultSQLiteFile
		}
		dialector = sqlite.Open(dsn)
	} else {
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initArchiver(ctx context.Context, cfg config.MinIOConfig) (*service.MinioArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	archiver := service.NewMinioArchiver(client, cfg.Bucket)
	if err := archiver.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archiver, nil
}

// migrate creates or updates the inventory tables. The memory backend has
// nothing to migrate.
func (a *app) migrate() error {
	if a.db == nil {
		a.logger.Info("Memory backend selected, nothing to migrate")
		return nil
	}
	if err := entity.AutoMigrate(a.db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	a.logger.Info("Database migration completed")
	return nil
}
