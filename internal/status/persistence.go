// Package status persists the outcome of conversion runs next to their output.
package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_persistence.go -package=mocks -source=persistence.go Persistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"

	// DirName is the directory below an output directory holding status files
	DirName = ".mxn-svg"
)

// Persistence stores run status per source key
type Persistence interface {
	// SaveStatus saves the status of the source identified by key
	SaveStatus(ctx context.Context, key string, status *RunStatus) error

	// LoadStatus loads the status of the source identified by key.
	// Returns an empty RunStatus if none was saved yet (first run)
	LoadStatus(ctx context.Context, key string) (*RunStatus, error)

	// LoadAllStatus loads the status of every source
	LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error)
}

// Key returns the status key of a source directory: its base name followed
// by a short hash of its absolute path, so equally named sources do not clash
func Key(srcDir string) string {
	abs, err := filepath.Abs(srcDir)
	if err != nil {
		abs = srcDir
	}
	sum := sha256.Sum256([]byte(abs))

	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." {
		name = "root"
	}
	return name + "-" + hex.EncodeToString(sum[:4])
}

// fileStatusPersistence implements Persistence using the local filesystem
type fileStatusPersistence struct {
	basePath string
}

// NewFilePersistence stores status files below basePath, one directory per key
func NewFilePersistence(basePath string) Persistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

// ForOutput returns the persistence kept inside an output directory
func ForOutput(outDir string) Persistence {
	return NewFilePersistence(filepath.Join(outDir, DirName))
}

// SaveStatus writes the status as JSON, replacing the previous file atomically
func (f *fileStatusPersistence) SaveStatus(_ context.Context, key string, status *RunStatus) error {
	dir := filepath.Join(f.basePath, key)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for '%s': %w", key, err)
	}

	filePath := filepath.Join(dir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status for '%s': %w", key, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for '%s': %w", key, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for '%s': %w", key, err)
	}

	return nil
}

// LoadStatus reads the status of key, empty when it does not exist
func (f *fileStatusPersistence) LoadStatus(_ context.Context, key string) (*RunStatus, error) {
	filePath := filepath.Join(f.basePath, key, StatusFileName)

	// #nosec G304 -- filePath is built from basePath and a key produced by Key
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RunStatus{}, nil
		}
		return nil, fmt.Errorf("failed to read status file for '%s': %w", key, err)
	}

	var status RunStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status for '%s': %w", key, err)
	}

	return &status, nil
}

// LoadAllStatus loads every readable status below basePath. Unreadable
// entries are skipped so one corrupt file does not hide the others.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*RunStatus, error) {
	result := make(map[string]*RunStatus)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		key := entry.Name()
		status, err := f.LoadStatus(ctx, key)
		if err != nil {
			continue
		}

		result[key] = status
	}

	return result, nil
}
