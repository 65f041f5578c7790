package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompiler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		syntax  Syntax
		want    Compiler
		wantErr bool
	}{
		{name: "empty syntax defaults to glob", syntax: "", want: globCompiler{}},
		{name: "glob", syntax: SyntaxGlob, want: globCompiler{}},
		{name: "doublestar", syntax: SyntaxDoublestar, want: doublestarCompiler{}},
		{name: "unknown syntax", syntax: "regex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := NewCompiler(tt.syntax)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestExpandOptionalSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern  string
		expected []string
	}{
		{pattern: "*.svg", expected: []string{"*.svg"}},
		{pattern: "**/*.svg", expected: []string{"**/*.svg", "*.svg"}},
		{pattern: "**/icons/**", expected: []string{"**/icons/**", "icons/**"}},
		{pattern: "src/**/icons/*.svg", expected: []string{"src/**/icons/*.svg", "src/icons/*.svg"}},
		{pattern: "**/**/*.svg", expected: []string{"**/**/*.svg", "**/*.svg", "*.svg"}},
		{pattern: "a**/b", expected: []string{"a**/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, expandOptionalSegments(tt.pattern))
		})
	}
}

func TestCompilers_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{name: "prefixed dir matches nested", pattern: "**/icons/**", path: "src/icons/logo.svg", expected: true},
		{name: "prefixed dir matches top level", pattern: "**/icons/**", path: "icons/logo.svg", expected: true},
		{name: "prefixed dir does not match sibling", pattern: "**/icons/**", path: "src/other/logo.svg", expected: false},
		{name: "extension at root", pattern: "**/*.svg", path: "logo.svg", expected: true},
		{name: "extension nested", pattern: "**/*.svg", path: "a/b/c/logo.svg", expected: true},
		{name: "extension mismatch", pattern: "**/*.svg", path: "a/b/logo.png", expected: false},
		{name: "middle doublestar zero dirs", pattern: "src/**/icons/*.svg", path: "src/icons/a.svg", expected: true},
		{name: "middle doublestar many dirs", pattern: "src/**/icons/*.svg", path: "src/a/b/icons/a.svg", expected: true},
		{name: "single star stays in segment", pattern: "icons/*.svg", path: "icons/sub/a.svg", expected: false},
		{name: "question mark", pattern: "**/logo?.svg", path: "img/logo1.svg", expected: true},
		{name: "character class", pattern: "**/logo[0-9].svg", path: "img/logo7.svg", expected: true},
		{name: "alternatives", pattern: "**/*.{svg,SVG}", path: "img/LOGO.SVG", expected: true},
	}

	for _, syntax := range []Syntax{SyntaxGlob, SyntaxDoublestar} {
		compiler, err := NewCompiler(syntax)
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(string(syntax)+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				m, err := compiler.Compile(tt.pattern)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, m.Match(tt.path), "pattern %q path %q", tt.pattern, tt.path)
			})
		}
	}
}

func TestCompilers_InvalidPattern(t *testing.T) {
	t.Parallel()

	for _, syntax := range []Syntax{SyntaxGlob, SyntaxDoublestar} {
		t.Run(string(syntax), func(t *testing.T) {
			t.Parallel()

			compiler, err := NewCompiler(syntax)
			require.NoError(t, err)

			_, err = compiler.Compile("**/icons/[a-")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPattern)
		})
	}
}
