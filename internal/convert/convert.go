// Package convert turns a directory of SVG files into component modules
// without a bundler, writing one module per included file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/mxn-svg/internal/otel"
	"github.com/stacklok/mxn-svg/internal/status"
	"github.com/stacklok/mxn-svg/pkg/plugin"
)

const (
	// DefaultExtension is given to every written module
	DefaultExtension = ".jsx"
	// SourcePattern selects the files considered below the source directory,
	// matching the extension in any case
	SourcePattern = "**/*.[sS][vV][gG]"
	// LockFileName is created in the output directory while a run is active
	LockFileName = ".mxn-svg.lock"

	lockRetryDelay = 100 * time.Millisecond
)

// ErrLocked indicates that another run holds the output directory
var ErrLocked = errors.New("output directory is locked by another run")

// Option configures a Converter
type Option func(*Converter) error

// WithConcurrency bounds the number of files converted at once
func WithConcurrency(n int) Option {
	return func(c *Converter) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		c.concurrency = n
		return nil
	}
}

// WithExtension sets the extension of written modules, e.g. ".tsx"
func WithExtension(ext string) Option {
	return func(c *Converter) error {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension must start with a dot, got %q", ext)
		}
		c.extension = ext
		return nil
	}
}

// WithLogger sets the logger, slog.Default() otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) error {
		c.logger = logger
		return nil
	}
}

// WithStatus sets where run status is recorded, nil disables it.
// The default keeps status below the output directory.
func WithStatus(p status.Persistence) Option {
	return func(c *Converter) error {
		c.status = p
		return nil
	}
}

// Converter writes the modules produced by a plugin for a source tree
type Converter struct {
	plugin      *plugin.Plugin
	outDir      string
	concurrency int
	extension   string
	logger      *slog.Logger
	status      status.Persistence
}

// Report summarises one run. Paths are slash separated and relative to the
// source directory.
type Report struct {
	RunID     string
	Converted []string
	Skipped   []string
	Failed    []string
}

// New returns a converter writing below outDir
func New(p *plugin.Plugin, outDir string, opts ...Option) (*Converter, error) {
	if p == nil {
		return nil, fmt.Errorf("plugin is required")
	}
	if outDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	c := &Converter{
		plugin:      p,
		outDir:      outDir,
		concurrency: 4,
		extension:   DefaultExtension,
		logger:      slog.Default(),
		status:      status.ForOutput(outDir),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Run converts every SVG below srcDir. Failures of single files do not stop
// the run; they are joined into the returned error alongside a full report.
func (c *Converter) Run(ctx context.Context, srcDir string) (*Report, error) {
	files, err := doublestar.Glob(os.DirFS(srcDir), SourcePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list svg files in %s: %w", srcDir, err)
	}
	slices.Sort(files)

	unlock, err := c.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := &Report{RunID: uuid.NewString()}
	logger := c.logger.With("run_id", report.RunID)
	logger.Info("Converting svg files", "source", srcDir, "output", c.outDir, "files", len(files))

	run := c.beginStatus(ctx, srcDir, report.RunID)

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			written, err := c.convertFile(gctx, srcDir, rel)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed = append(report.Failed, rel)
				errs = append(errs, err)
				logger.Warn("Failed to convert file", "file", rel, "error", err)
			case written:
				report.Converted = append(report.Converted, rel)
			default:
				report.Skipped = append(report.Skipped, rel)
			}
			return nil
		})
	}

	waitErr := g.Wait()

	slices.Sort(report.Converted)
	slices.Sort(report.Skipped)
	slices.Sort(report.Failed)

	// The outcome is recorded even when ctx was cancelled
	statusCtx := context.WithoutCancel(ctx)

	if waitErr != nil {
		logger.Warn("Conversion interrupted",
			"converted", len(report.Converted),
			"failed", len(report.Failed),
			"error", waitErr)
		c.finishStatus(statusCtx, run, report, errs, waitErr)
		return report, waitErr
	}

	logger.Info("Conversion finished",
		"converted", len(report.Converted),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))

	c.finishStatus(statusCtx, run, report, errs, nil)
	return report, errors.Join(errs...)
}

// runStatus is the status of an active run and the key it is saved under
type runStatus struct {
	key    string
	status *status.RunStatus
}

// beginStatus records that a run started, returning nil when status is disabled
func (c *Converter) beginStatus(ctx context.Context, srcDir, runID string) *runStatus {
	if c.status == nil {
		return nil
	}

	key := status.Key(srcDir)
	previous, err := c.status.LoadStatus(ctx, key)
	if err != nil {
		c.logger.Warn("Failed to load previous run status", "key", key, "error", err)
	}
	if previous == nil {
		previous = &status.RunStatus{}
	}

	source, err := filepath.Abs(srcDir)
	if err != nil {
		source = srcDir
	}

	now := time.Now().UTC()
	current := *previous
	current.RunID = runID
	current.Phase = status.RunPhaseConverting
	current.Source = source
	current.Message = ""
	current.LastAttempt = &now
	current.AttemptCount = previous.AttemptCount + 1

	run := &runStatus{key: key, status: &current}
	c.saveStatus(ctx, run)
	return run
}

// finishStatus records the outcome of a run. A non-nil interrupted marks the
// run failed with that error as the message.
func (c *Converter) finishStatus(ctx context.Context, run *runStatus, report *Report, errs []error, interrupted error) {
	if run == nil {
		return
	}

	st := run.status
	st.Converted = len(report.Converted)
	st.Skipped = len(report.Skipped)
	st.Failed = len(report.Failed)
	st.FailedFiles = report.Failed

	switch {
	case interrupted != nil:
		st.Phase = status.RunPhaseFailed
		st.Message = fmt.Sprintf("run interrupted: %v", interrupted)
	case len(errs) == 0:
		now := time.Now().UTC()
		st.Phase = status.RunPhaseComplete
		st.AttemptCount = 0
		st.LastSuccess = &now
	default:
		st.Phase = status.RunPhaseFailed
		st.Message = fmt.Sprintf("%d file(s) failed, first error: %v", len(errs), errs[0])
	}
	c.saveStatus(ctx, run)
}

func (c *Converter) saveStatus(ctx context.Context, run *runStatus) {
	if err := c.status.SaveStatus(ctx, run.key, run.status); err != nil {
		c.logger.Warn("Failed to save run status", "key", run.key, "error", err)
	}
}

// convertFile reports whether a module was written for rel
func (c *Converter) convertFile(ctx context.Context, srcDir, rel string) (bool, error) {
	id := filepath.Join(srcDir, filepath.FromSlash(rel))
	if !c.plugin.ShouldInclude(id) {
		return false, nil
	}

	content, err := os.ReadFile(id)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", id, err)
	}

	res, err := c.plugin.Transform(otel.WithHost(ctx, otel.HostConvert), string(content), id)
	if err != nil {
		return false, err
	}
	if res == nil {
		return false, nil
	}

	if err := writeAtomic(c.OutputPath(rel), []byte(res.Code)); err != nil {
		return false, err
	}
	return true, nil
}

// OutputPath returns where the module for the slash separated source path
// rel is written
func (c *Converter) OutputPath(rel string) string {
	out := strings.TrimSuffix(rel, path.Ext(rel)) + c.extension
	return filepath.Join(c.outDir, filepath.FromSlash(out))
}

func (c *Converter) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(c.outDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fl := flock.New(filepath.Join(c.outDir, LockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			c.logger.Warn("Failed to unlock output directory", "error", err)
		}
	}, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mxn-svg-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
