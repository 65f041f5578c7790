package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Manager holds the active configuration and reloads it when the file
// changes. Invalid updates are logged and the last good configuration stays
// active.
type Manager struct {
	path string

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)

	watcherMu sync.Mutex
	watcher   *fsnotify.Watcher
}

// NewManager loads the initial configuration from path
func NewManager(path string) (*Manager, error) {
	m := &Manager{path: path}
	if err := m.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}
	return m, nil
}

// Config returns the active configuration
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnChange registers fn to run after every successful reload
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Reload reads the file and activates it if valid
func (m *Manager) Reload() error {
	cfg, err := LoadConfig(WithConfigPath(m.path))
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	callbacks := append(([]func(*Config))(nil), m.onChange...)
	m.mu.Unlock()

	slog.Info("Configuration loaded", "path", m.path)
	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Watch reloads the configuration whenever the file is written, created or
// renamed into place. It blocks until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	m.watcherMu.Lock()
	if m.watcher != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("config watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.watcherMu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	m.watcher = watcher
	m.watcherMu.Unlock()

	// Watch the directory: editors often replace the file instead of writing it
	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(m.path)

	slog.Debug("Watching configuration file", "path", m.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := m.Reload(); err != nil {
					slog.Error("Failed to reload configuration, keeping the previous one", "path", m.path, "error", err)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.Error("File watcher error", "error", err)
		}
	}
}

// Close stops the file watcher if it is running
func (m *Manager) Close() error {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()

	if m.watcher == nil {
		return nil
	}
	if err := m.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	m.watcher = nil
	return nil
}
