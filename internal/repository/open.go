package repository

import (
	"context"
	"fmt"

	"planner/internal/config"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects the storage driver selected by STORAGE_DRIVER.
func Open(ctx context.Context, cfg *config.Config, lg log.FieldLogger) (LocalStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		lg.Warn("⚠️  memory storage selected, the session will not survive a restart")
		return NewMemoryStorage(), nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lg.WithField("addr", cfg.RedisAddr).Info("✅ Connected to redis")
		return NewRedisStorage(client), nil

	case config.StoragePostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
		)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		lg.Info("✅ Connected to database")
		repo, err := MigratedSettingRepository(db, cfg.DBName, lg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// MigratedSettingRepository migrates db and wraps it. The connection is
// closed when the migration fails.
func MigratedSettingRepository(db *gorm.DB, dbName string, lg log.FieldLogger) (*SettingRepository, error) {
	repo := NewSettingRepository(db)
	if err := RunMigrations(db, dbName, lg); err != nil {
		if cerr := repo.Close(); cerr != nil {
			lg.WithError(cerr).Warn("failed to close database after migration error")
		}
		return nil, err
	}
	return repo, nil
}
