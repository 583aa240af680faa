package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// entry is one row of the key/value table
type entry struct {
	Name      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "credential_entries"
}

// SQLStorage implements Store on a relational database through gorm.
// Both sqlite:// and postgres:// URIs are served by this type.
type SQLStorage struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

// NewSQLiteStorage opens (or creates) a sqlite database at path
func NewSQLiteStorage(path string, token string, logger logrus.FieldLogger) (*SQLStorage, error) {
	if token != "" {
		logger.WithField("file_path", path).
			Warn("Storage token provided but sqlite storage does not use authentication")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, fileDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return openSQLStorage(sqlite.Open(path), logger.WithField("backend", "sqlite"))
}

// NewPostgresStorage connects to postgres using a postgres:// URL as DSN.
// The storage token, if set, overrides the password in the URL.
func NewPostgresStorage(dsn string, token string, logger logrus.FieldLogger) (*SQLStorage, error) {
	cfg := postgres.Config{DSN: dsn}
	if token != "" {
		withPassword, err := SetURLPassword(dsn, token)
		if err != nil {
			return nil, err
		}
		cfg.DSN = withPassword
	}
	return openSQLStorage(postgres.New(cfg), logger.WithField("backend", "postgres"))
}

func openSQLStorage(dialector gorm.Dialector, logger logrus.FieldLogger) (*SQLStorage, error) {
	start := time.Now()

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to open database")
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStorageUnavailable, err)
	}

	if err := db.AutoMigrate(&entry{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("%w: failed to migrate schema: %v", ErrStorageUnavailable, err)
	}

	logger.WithField("duration_ms", time.Since(start).Milliseconds()).Debug("Database storage ready")

	return &SQLStorage{
		db:     db,
		logger: logger,
	}, nil
}

// Get returns the value stored at key
func (s *SQLStorage) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: failed to read %q: %v", ErrStorageUnavailable, key, err)
	}
	return e.Value, nil
}

// Set upserts value at key
func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	e := entry{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"operation": "set",
			"key":       key,
			"error":     err,
		}).Error("Storage write failed")
		return fmt.Errorf("%w: failed to write %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// Delete removes key; zero affected rows is not an error
func (s *SQLStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("name = ?", key).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("%w: failed to delete %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
