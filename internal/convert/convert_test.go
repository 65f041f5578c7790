package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/mxn-svg/internal/status"
	"github.com/stacklok/mxn-svg/internal/status/mocks"
	"github.com/stacklok/mxn-svg/pkg/cleaner"
	"github.com/stacklok/mxn-svg/pkg/plugin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newPlugin(t *testing.T, opts ...plugin.Option) *plugin.Plugin {
	t.Helper()
	p, err := plugin.New(opts...)
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Parallel()

	p := newPlugin(t)

	tests := []struct {
		name     string
		plugin   *plugin.Plugin
		outDir   string
		opts     []Option
		errorMsg string
	}{
		{name: "defaults", plugin: p, outDir: "out"},
		{name: "missing plugin", outDir: "out", errorMsg: "plugin is required"},
		{name: "missing output", plugin: p, errorMsg: "output directory is required"},
		{name: "zero concurrency", plugin: p, outDir: "out", opts: []Option{WithConcurrency(0)}, errorMsg: "concurrency must be at least 1"},
		{name: "extension without dot", plugin: p, outDir: "out", opts: []Option{WithExtension("tsx")}, errorMsg: "extension must start with a dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New(tt.plugin, tt.outDir, tt.opts...)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 4, c.concurrency)
			assert.Equal(t, DefaultExtension, c.extension)
		})
	}
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	c, err := New(newPlugin(t), "out", WithExtension(".tsx"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("out", "icons", "arrow.tsx"), c.OutputPath("icons/arrow.svg"))
	assert.Equal(t, filepath.Join("out", "logo.tsx"), c.OutputPath("logo.SVG"))
}

func TestRun(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "components")

	writeFile(t, filepath.Join(src, "icons", "arrow.svg"), `<?xml version="1.0"?><svg viewBox="0 0 1 1"><path/></svg>`)
	writeFile(t, filepath.Join(src, "icons", "nested", "logo.SVG"), `<svg></svg>`)
	writeFile(t, filepath.Join(src, "icons", "badge.Svg"), `<svg></svg>`)
	writeFile(t, filepath.Join(src, "icons", "broken.svg"), `<svg>broken</svg>`)
	writeFile(t, filepath.Join(src, "photos", "cat.svg"), `<svg></svg>`)
	writeFile(t, filepath.Join(src, "icons", "readme.txt"), `not an svg`)

	p := newPlugin(t,
		plugin.WithInclude("icons/**"),
		plugin.WithCleanFunc(func(s string) (string, error) {
			if strings.Contains(s, "broken") {
				return "", errors.New("cannot clean")
			}
			return s, nil
		}),
	)

	c, err := New(p, out, WithConcurrency(2))
	require.NoError(t, err)

	report, err := c.Run(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrTransform)
	assert.Contains(t, err.Error(), "cannot clean")

	require.NotNil(t, report)
	_, uuidErr := uuid.Parse(report.RunID)
	assert.NoError(t, uuidErr)
	assert.Equal(t, []string{"icons/arrow.svg", "icons/badge.Svg", "icons/nested/logo.SVG"}, report.Converted)
	assert.Equal(t, []string{"photos/cat.svg"}, report.Skipped)
	assert.Equal(t, []string{"icons/broken.svg"}, report.Failed)

	arrow, err := os.ReadFile(filepath.Join(out, "icons", "arrow.jsx"))
	require.NoError(t, err)
	assert.Equal(t,
		"import { h } from 'preact';\nexport default ( props ) => (<?xml version=\"1.0\"?><svg viewBox=\"0 0 1 1\" {...props}><path/></svg>);",
		string(arrow))

	assert.FileExists(t, filepath.Join(out, "icons", "nested", "logo.jsx"))
	assert.FileExists(t, filepath.Join(out, "icons", "badge.jsx"))
	assert.NoFileExists(t, filepath.Join(out, "icons", "broken.jsx"))
	assert.NoFileExists(t, filepath.Join(out, "photos", "cat.jsx"))

	st, err := status.ForOutput(out).LoadStatus(context.Background(), status.Key(src))
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseFailed, st.Phase)
	assert.Equal(t, report.RunID, st.RunID)
	assert.Equal(t, 1, st.AttemptCount)
	assert.Equal(t, 3, st.Converted)
	assert.Equal(t, []string{"icons/broken.svg"}, st.FailedFiles)
	assert.Contains(t, st.Message, "cannot clean")
	assert.Nil(t, st.LastSuccess)
}

func TestRun_StatusAfterSuccess(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "a.svg"), `<svg></svg>`)
	key := status.Key(src)
	persistence := status.ForOutput(out)

	// A previous failed attempt is counted until a run completes
	require.NoError(t, persistence.SaveStatus(context.Background(), key, &status.RunStatus{
		Phase:        status.RunPhaseFailed,
		AttemptCount: 3,
	}))

	c, err := New(newPlugin(t), out)
	require.NoError(t, err)

	_, err = c.Run(context.Background(), src)
	require.NoError(t, err)

	st, err := persistence.LoadStatus(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseComplete, st.Phase)
	assert.Zero(t, st.AttemptCount)
	assert.Empty(t, st.Message)
	require.NotNil(t, st.LastSuccess)
	require.NotNil(t, st.LastAttempt)
	assert.Equal(t, 1, st.Converted)
}

func TestRun_StatusAfterCancel(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	for _, name := range []string{"a.svg", "b.svg", "c.svg"} {
		writeFile(t, filepath.Join(src, name), `<svg></svg>`)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The first file stops the run; the remaining ones never start
	p := newPlugin(t, plugin.WithCleanFunc(func(_ context.Context, raw string) (string, error) {
		cancel()
		return raw, nil
	}))
	c, err := New(p, out, WithConcurrency(1))
	require.NoError(t, err)

	report, err := c.Run(ctx, src)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Equal(t, []string{"a.svg"}, report.Converted)

	st, err := status.ForOutput(out).LoadStatus(context.Background(), status.Key(src))
	require.NoError(t, err)
	assert.Equal(t, status.RunPhaseFailed, st.Phase)
	assert.Equal(t, report.RunID, st.RunID)
	assert.Contains(t, st.Message, "context canceled")
	assert.Equal(t, 1, st.Converted)
	assert.Equal(t, 1, st.AttemptCount)
	assert.Nil(t, st.LastSuccess)
}

func TestRun_StatusFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	persistence := mocks.NewMockPersistence(ctrl)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.svg"), `<svg></svg>`)

	persistence.EXPECT().LoadStatus(gomock.Any(), status.Key(src)).Return(nil, errors.New("disk on fire"))
	persistence.EXPECT().SaveStatus(gomock.Any(), status.Key(src), gomock.Any()).Return(errors.New("read-only")).Times(2)

	c, err := New(newPlugin(t), t.TempDir(), WithStatus(persistence))
	require.NoError(t, err)

	report, err := c.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.svg"}, report.Converted)
}

func TestRun_StatusDisabled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(src, "a.svg"), `<svg></svg>`)

	c, err := New(newPlugin(t), out, WithStatus(nil))
	require.NoError(t, err)

	_, err = c.Run(context.Background(), src)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(out, status.DirName))
}

func TestRun_EmptySource(t *testing.T) {
	t.Parallel()

	c, err := New(newPlugin(t), t.TempDir())
	require.NoError(t, err)

	report, err := c.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, report.Converted)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)
}

func TestRun_Locked(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	held := flock.New(filepath.Join(out, LockFileName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = held.Unlock() })

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.svg"), `<svg></svg>`)

	c, err := New(newPlugin(t), out)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	_, err = c.Run(ctx, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to lock output directory")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoFileExists(t, filepath.Join(out, "a.jsx"))
}

func TestWatch(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	out := filepath.Join(src, "out")
	writeFile(t, filepath.Join(src, "first.svg"), `<svg></svg>`)

	c, err := New(newPlugin(t, plugin.WithCleaner(cleaner.None)), out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, src) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "first.jsx"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// New directories are picked up as well
	require.Eventually(t, func() bool {
		writeFile(t, filepath.Join(src, "later", "second.svg"), `<svg id="2"></svg>`)
		data, err := os.ReadFile(filepath.Join(out, "later", "second.jsx"))
		return err == nil && strings.Contains(string(data), `<svg id="2" {...props}>`)
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
