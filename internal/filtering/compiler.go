package filtering

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// ErrInvalidPattern indicates a glob pattern that could not be compiled.
var ErrInvalidPattern = errors.New("invalid pattern")

// Syntax selects the glob dialect used to compile patterns.
type Syntax string

const (
	// SyntaxGlob compiles patterns with github.com/gobwas/glob
	SyntaxGlob Syntax = "glob"

	// SyntaxDoublestar compiles patterns with github.com/bmatcuk/doublestar/v4
	SyntaxDoublestar Syntax = "doublestar"
)

// maxOptionalSegments bounds the number of "**/" segments expanded into
// zero-directory alternatives for the glob syntax.
const maxOptionalSegments = 6

// Matcher is a compiled pattern matching normalized, slash-separated paths.
type Matcher interface {
	Match(path string) bool
}

// Compiler turns one glob pattern into a Matcher.
type Compiler interface {
	Compile(pattern string) (Matcher, error)
}

// NewCompiler returns the compiler for the given syntax. An empty syntax
// selects SyntaxGlob.
func NewCompiler(syntax Syntax) (Compiler, error) {
	switch syntax {
	case "", SyntaxGlob:
		return globCompiler{}, nil
	case SyntaxDoublestar:
		return doublestarCompiler{}, nil
	default:
		return nil, fmt.Errorf("unsupported pattern syntax %q (want %q or %q)", syntax, SyntaxGlob, SyntaxDoublestar)
	}
}

// globCompiler compiles patterns with gobwas/glob using "/" as separator.
type globCompiler struct{}

// Compile compiles pattern and each of its zero-directory variants.
// gobwas treats the "/" after "**" as a literal, so "**/x" would not match a
// top-level "x" on its own.
func (globCompiler) Compile(pattern string) (Matcher, error) {
	variants := expandOptionalSegments(pattern)

	globs := make(anyOf, 0, len(variants))
	for _, variant := range variants {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		globs = append(globs, g)
	}

	return globs, nil
}

// anyOf matches when at least one of its matchers does.
type anyOf []glob.Glob

func (a anyOf) Match(path string) bool {
	for _, g := range a {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// expandOptionalSegments returns pattern plus every variant obtained by
// dropping any subset of its "**/" segments. Duplicates are removed and the
// original pattern is always first.
func expandOptionalSegments(pattern string) []string {
	var positions []int
	for i := 0; i+3 <= len(pattern) && len(positions) < maxOptionalSegments; i++ {
		if pattern[i:i+3] != "**/" {
			continue
		}
		if i > 0 && pattern[i-1] != '/' {
			continue
		}
		positions = append(positions, i)
		i += 2
	}

	if len(positions) == 0 {
		return []string{pattern}
	}

	seen := make(map[string]struct{}, 1<<len(positions))
	out := make([]string, 0, 1<<len(positions))
	for mask := 0; mask < 1<<len(positions); mask++ {
		var b strings.Builder
		last := 0
		for bit, pos := range positions {
			if mask&(1<<bit) == 0 {
				continue
			}
			b.WriteString(pattern[last:pos])
			last = pos + 3
		}
		b.WriteString(pattern[last:])

		variant := b.String()
		if _, ok := seen[variant]; ok {
			continue
		}
		seen[variant] = struct{}{}
		out = append(out, variant)
	}

	return out
}

// doublestarCompiler validates patterns up front and matches with doublestar.
type doublestarCompiler struct{}

func (doublestarCompiler) Compile(pattern string) (Matcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return doublestarMatcher(pattern), nil
}

type doublestarMatcher string

func (m doublestarMatcher) Match(path string) bool {
	// The pattern was validated at compile time, so the error is always nil.
	ok, _ := doublestar.Match(string(m), path)
	return ok
}
