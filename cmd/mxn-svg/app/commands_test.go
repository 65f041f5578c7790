package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// execute runs the root command with args and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, runtime.Version(), info["go_version"])
	assert.Contains(t, info, "version")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mxn-svg ")

	_, err = execute(t, "version", "--format", "xml")
	assert.ErrorContains(t, err, `unsupported format "xml"`)
}

func TestConfigCmd(t *testing.T) {
	t.Parallel()

	t.Run("schema", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, "config", "schema")
		require.NoError(t, err)
		assert.Contains(t, out, `"$schema"`)
	})

	t.Run("validate", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "mxn-svg.yaml"), "include: icons/**\n")

		out, err := execute(t, "config", "validate", "-C", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "mxn-svg.yaml is valid")
	})

	t.Run("validate explicit path relative to workdir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "conf", "svg.jsonc"), `{"jsx": "react", /* trailing */ }`)

		out, err := execute(t, "config", "validate", "-C", dir, "--config", "conf/svg.jsonc")
		require.NoError(t, err)
		assert.Contains(t, out, "svg.jsonc is valid")
	})

	t.Run("validate reports errors", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "mxn-svg.yaml"), "cleaner:\n  type: exec\n")

		_, err := execute(t, "config", "validate", "-C", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cleaner.command is required")
	})

	t.Run("show applies overrides", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "mxn-svg.yaml"), "include: icons/**\njsx: preact\n")

		out, err := execute(t, "config", "show", "-C", dir, "--include", "assets/**", "--jsx", "react")
		require.NoError(t, err)
		assert.Contains(t, out, "assets/**")
		assert.NotContains(t, out, "icons/**")
		assert.Contains(t, out, "jsx: react")
	})

	t.Run("invalid override", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "config", "show", "-C", t.TempDir(), "--include", "icons/[a-")
		assert.ErrorContains(t, err, "invalid pattern")
	})
}

func TestMatchCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "icons", "arrow.svg"), "<svg/>")
	writeFile(t, filepath.Join(dir, "photos", "cat.svg"), "<svg/>")

	out, err := execute(t, "match", "-C", dir, "--include", "icons/**")
	require.NoError(t, err)
	assert.Contains(t, out, "icons/arrow.svg")
	assert.Contains(t, out, "photos/cat.svg")
	assert.Contains(t, out, "included by pattern 'icons/**'")

	out, err = execute(t, "match", "-C", dir, "--exclude", "**/*.svg", "logo.svg")
	require.NoError(t, err)
	assert.Contains(t, out, "logo.svg")
	assert.Contains(t, out, "excluded by pattern '**/*.svg'")
	assert.NotContains(t, out, "arrow.svg")
}

func TestConvertCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "assets", "icons", "arrow.svg"), `<svg viewBox="0 0 1 1"></svg>`)
	writeFile(t, filepath.Join(dir, "assets", "photos", "cat.svg"), `<svg></svg>`)

	out, err := execute(t, "convert", "assets", "-C", dir, "--include", "icons/**", "--outdir", "out", "--ext", ".tsx", "--jsx", "react")
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 1, skipped 1, failed 0")

	data, err := os.ReadFile(filepath.Join(dir, "out", "icons", "arrow.tsx"))
	require.NoError(t, err)
	assert.Equal(t,
		"import React from 'react';\nexport default ( props ) => (<svg viewBox=\"0 0 1 1\" {...props}></svg>);",
		string(data))

	_, err = execute(t, "convert", "assets", "-C", dir, "--concurrency", "0")
	assert.ErrorContains(t, err, "concurrency must be at least 1")
}

func TestBuildCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "icon.svg"), `<?xml version="1.0"?><svg viewBox="0 0 24 24"><path d="M0 0"/></svg>`)
	writeFile(t, filepath.Join(dir, "src", "index.jsx"), "import Icon from './icon.svg';\nexport default Icon;\n")

	_, err := execute(t, "build", "src/index.jsx", "-C", dir, "--outdir", "dist", "--external", "preact")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "dist", "index.js"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "preact")
	assert.Contains(t, string(data), "props")
	assert.Contains(t, string(data), "viewBox")
	assert.NotContains(t, string(data), "<?xml")
}

func TestBuildCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{
			name:     "unknown format",
			args:     []string{"--format", "amd"},
			errorMsg: `unsupported format "amd"`,
		},
		{
			name:     "unknown sourcemap mode",
			args:     []string{"--sourcemap", "hidden"},
			errorMsg: `unsupported sourcemap mode "hidden"`,
		},
		{
			name:     "missing entry point",
			args:     []string{"--outfile", "out.js"},
			errorMsg: "build failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"build", "missing.jsx", "-C", t.TempDir()}, tt.args...)
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}

	_, err := execute(t, "build")
	assert.Error(t, err)
}

func TestStatusCmd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "icons", "a.svg"), `<svg></svg>`)

	out, err := execute(t, "status", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No convert runs recorded")

	_, err = execute(t, "convert", "icons", "-C", dir)
	require.NoError(t, err)

	out, err = execute(t, "status", "components", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Complete")
	assert.Contains(t, out, "icons")
}
