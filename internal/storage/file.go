package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	fileDirPerm  = 0700
	fileDataPerm = 0600
)

// FileStorage implements Store using a YAML file holding a flat key/value map.
// The whole map is rewritten atomically on every change.
type FileStorage struct {
	filePath string
	mu       sync.RWMutex
	data     map[string]string
	logger   logrus.FieldLogger
}

// NewFileStorage creates a new file-based storage
// The token parameter is accepted but ignored for file storage (for interface compatibility)
func NewFileStorage(filePath string, token string, logger logrus.FieldLogger) (*FileStorage, error) {
	if token != "" {
		logger.WithField("file_path", filePath).
			Warn("Storage token provided but file storage does not use authentication")
	}

	fs := &FileStorage{
		filePath: filePath,
		logger:   logger,
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load storage: %w", err)
	}

	return fs, nil
}

// load reads the map from file. A missing file is an empty store; the file is
// only created on the first write.
func (fs *FileStorage) load() error {
	fileData, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			fs.data = make(map[string]string)
			fs.logger.WithField("file_path", fs.filePath).Debug("Storage file not found, starting empty")
			return nil
		}
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	var data map[string]string
	if err := yaml.Unmarshal(fileData, &data); err != nil {
		return fmt.Errorf("failed to parse storage file (invalid YAML syntax): %w", err)
	}
	if data == nil {
		data = make(map[string]string)
	}

	fs.data = data
	fs.logger.WithFields(logrus.Fields{
		"file_path": fs.filePath,
		"key_count": len(fs.data),
	}).Debug("Storage file loaded")

	return nil
}

// saveToFile writes data to file atomically (temp file + rename)
func (fs *FileStorage) saveToFile() error {
	yamlData, err := yaml.Marshal(fs.data)
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, fileDirPerm); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".credentials-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	// CreateTemp already uses 0600 on unix, but be explicit for other platforms
	if err := tempFile.Chmod(fileDataPerm); err != nil {
		return fmt.Errorf("failed to set temp file permissions: %w", err)
	}

	if _, err := tempFile.Write(yamlData); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil // Prevent deferred cleanup

	if err := os.Rename(tempPath, fs.filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Get returns the value stored at key
func (fs *FileStorage) Get(ctx context.Context, key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	value, exists := fs.data[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value at key and persists the file
func (fs *FileStorage) Set(ctx context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	previous, existed := fs.data[key]
	fs.data[key] = value

	if err := fs.saveToFile(); err != nil {
		// Rollback in-memory change
		if existed {
			fs.data[key] = previous
		} else {
			delete(fs.data, key)
		}
		fs.logger.WithFields(logrus.Fields{
			"operation": "set",
			"key":       key,
			"error":     err,
		}).Error("Storage write failed")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	fs.logger.WithField("key", key).Debug("Key stored")
	return nil
}

// Delete removes key and persists the file. Deleting a missing key does not touch the file.
func (fs *FileStorage) Delete(ctx context.Context, key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	previous, existed := fs.data[key]
	if !existed {
		return nil
	}
	delete(fs.data, key)

	if err := fs.saveToFile(); err != nil {
		fs.data[key] = previous
		fs.logger.WithFields(logrus.Fields{
			"operation": "delete",
			"key":       key,
			"error":     err,
		}).Error("Storage write failed")
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	fs.logger.WithField("key", key).Debug("Key deleted")
	return nil
}

// Close is a no-op for file storage; every write is already flushed
func (fs *FileStorage) Close() error {
	return nil
}
