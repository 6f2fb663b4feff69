package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Sternrassler/flight-booking-client/internal/config"
	"github.com/Sternrassler/flight-booking-client/pkg/client"
	"github.com/Sternrassler/flight-booking-client/pkg/repository"
	"github.com/Sternrassler/flight-booking-client/pkg/store"
)

type app struct {
	client *client.Client
	repo   *repository.Booking

	db  *gorm.DB
	rdb *redis.Client
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &app{}

	if cfg.NeedsRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			_ = a.rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
	}

	var stores repository.Stores
	switch cfg.Store {
	case config.StoreRedis:
		stores = repository.NewRedisStores(a.rdb, nil)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		a.db = db
		if err := store.AutoMigrate(db); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		stores = repository.NewGormStores(db)
	}

	clientCfg := client.DefaultConfig(cfg.APIURL, cfg.UserAgent)
	clientCfg.APIToken = cfg.APIToken
	clientCfg.Timeout = cfg.Timeout
	clientCfg.RequestsPerSecond = cfg.RequestsPerSecond
	clientCfg.Burst = cfg.Burst
	clientCfg.MaxRetries = cfg.MaxRetries
	if cfg.SharedRateLimit {
		clientCfg.Redis = a.rdb
	}

	c, err := client.New(clientCfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	a.client = c
	a.repo = repository.New(c, stores)

	return a, nil
}

// Close releases the store connections.
func (a *app) Close() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	return errors.Join(errs...)
}
