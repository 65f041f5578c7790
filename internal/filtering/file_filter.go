package filtering

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultPrepend is the path prefix applied to every pattern unless configured otherwise.
const DefaultPrepend = "**/"

// Config defines the include/exclude rules of a FileFilter
type Config struct {
	// Include patterns; empty means every identifier is included by default
	Include []string

	// Exclude patterns; a match always wins over an include match
	Exclude []string

	// Prepend is prefixed to every pattern before compilation, as-is
	Prepend string

	// Syntax selects the pattern compiler, SyntaxGlob when empty
	Syntax Syntax
}

// compiledPattern keeps the user-facing pattern next to its matcher for decision reasons
type compiledPattern struct {
	source  string
	matcher Matcher
}

// FileFilter decides whether module identifiers are handled by the plugin.
// It is immutable after construction and safe for concurrent use.
type FileFilter struct {
	include []compiledPattern
	exclude []compiledPattern
}

// NewFileFilter compiles the configured patterns into a FileFilter
func NewFileFilter(cfg Config) (*FileFilter, error) {
	compiler, err := NewCompiler(cfg.Syntax)
	if err != nil {
		return nil, err
	}

	include, err := compilePatterns(compiler, cfg.Prepend, cfg.Include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}

	exclude, err := compilePatterns(compiler, cfg.Prepend, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}

	return &FileFilter{
		include: include,
		exclude: exclude,
	}, nil
}

func compilePatterns(compiler Compiler, prepend string, patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		m, err := compiler.Compile(prepend + pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{source: pattern, matcher: m})
	}
	return compiled, nil
}

// ShouldInclude reports whether the identifier should be processed
func (f *FileFilter) ShouldInclude(id string) bool {
	included, _ := f.Decide(id)
	return included
}

// Decide determines if an identifier should be included and explains why
//
// Logic:
// 1. Identifiers containing a NUL byte are never included
// 2. If include patterns are specified, the identifier must match at least one of them
// 3. If no include patterns are specified, the identifier is included by default
// 4. If the identifier matches any exclude pattern it is excluded (exclude takes precedence)
func (f *FileFilter) Decide(id string) (bool, string) {
	if strings.ContainsRune(id, 0) {
		return false, "identifier contains a NUL byte"
	}

	normalized := filepath.ToSlash(id)

	included := len(f.include) == 0
	reason := "no include patterns specified"
	if !included {
		reason = fmt.Sprintf("no match found in include patterns %v", sources(f.include))
	}

	for _, p := range f.include {
		if p.matcher.Match(normalized) {
			included = true
			reason = fmt.Sprintf("included by pattern '%s'", p.source)
			break
		}
	}

	for _, p := range f.exclude {
		if p.matcher.Match(normalized) {
			return false, fmt.Sprintf("excluded by pattern '%s'", p.source)
		}
	}

	return included, reason
}

func sources(patterns []compiledPattern) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, p.source)
	}
	return out
}
