package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const backendSQLite = "sqlite"

// OpenSQLite opens (or creates) the SQLite database at path and applies
// PRAGMAs. The parent directory must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the tables for every record type.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&OfferRecord{},
		&PartnerRecord{},
		&AccountRecord{},
		&ReservationRecord{},
	)
}

// GormCollection is a Collection backed by one GORM table.
// E must be a GORM model whose primary key column is "id".
type GormCollection[E Entity] struct {
	db   *gorm.DB
	name string
}

// NewGormCollection creates a collection over db. name labels metrics.
func NewGormCollection[E Entity](db *gorm.DB, name string) *GormCollection[E] {
	if db == nil {
		panic("gorm db cannot be nil")
	}
	return &GormCollection[E]{db: db, name: name}
}

// All returns every row in insertion order.
func (c *GormCollection[E]) All(ctx context.Context) ([]E, error) {
	var out []E
	// rowid follows insertion order; Replace always reinserts from scratch
	err := c.db.WithContext(ctx).Order("rowid").Find(&out).Error
	observe(backendSQLite, c.name, "all", err)
	if err != nil {
		return nil, fmt.Errorf("sqlite all %s: %w", c.name, err)
	}
	return out, nil
}

// Get returns the row with the given ID.
func (c *GormCollection[E]) Get(ctx context.Context, id string) (E, error) {
	var e E
	err := c.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		observe(backendSQLite, c.name, "get", nil)
		return e, ErrNotFound
	}
	observe(backendSQLite, c.name, "get", err)
	if err != nil {
		return e, fmt.Errorf("sqlite get %s/%s: %w", c.name, id, err)
	}
	return e, nil
}

// Replace deletes every row and inserts items in one transaction. Items
// sharing an ID collapse to the last one, as in RedisCollection.
func (c *GormCollection[E]) Replace(ctx context.Context, items []E) error {
	items = dedupByID(items)
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(new(E)).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(&items, 100).Error
	})
	observe(backendSQLite, c.name, "replace", err)
	if err != nil {
		return fmt.Errorf("sqlite replace %s: %w", c.name, err)
	}
	StoreEntities.WithLabelValues(backendSQLite, c.name).Set(float64(len(items)))
	return nil
}

// Upsert inserts items, overwriting rows with the same ID.
func (c *GormCollection[E]) Upsert(ctx context.Context, items ...E) error {
	if len(items) == 0 {
		return nil
	}
	items = dedupByID(items)
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&items).Error
	observe(backendSQLite, c.name, "upsert", err)
	if err != nil {
		return fmt.Errorf("sqlite upsert %s: %w", c.name, err)
	}
	return nil
}

// Clear deletes every row.
func (c *GormCollection[E]) Clear(ctx context.Context) error {
	err := c.db.WithContext(ctx).Where("1 = 1").Delete(new(E)).Error
	observe(backendSQLite, c.name, "clear", err)
	if err != nil {
		return fmt.Errorf("sqlite clear %s: %w", c.name, err)
	}
	return nil
}
