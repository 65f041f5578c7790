// Package filtering decides which module identifiers the SVG plugin handles.
//
// A FileFilter is built once from include and exclude glob patterns. Every
// pattern is prefixed with a path prefix (DefaultPrepend, "**/", unless
// configured otherwise) so that user patterns match anywhere under a
// directory tree, then compiled into a Matcher by a Compiler.
//
// # Filtering Logic
//
//  1. Identifiers containing a NUL byte are rejected (bundler virtual modules)
//  2. Identifiers are normalized to forward slashes
//  3. If no include patterns are configured the identifier is included by default,
//     otherwise it must match at least one include pattern
//  4. If any exclude pattern matches, the identifier is excluded (exclude takes precedence)
//
// # Pattern Syntax
//
// Two compilers are available:
//
//   - SyntaxGlob (default) uses github.com/gobwas/glob with "/" as separator:
//     "*" and "?" stop at "/", "**" crosses directories
//   - SyntaxDoublestar uses github.com/bmatcuk/doublestar/v4 path semantics
//
// With both syntaxes a "**/" segment also matches zero directories, so
// "**/icons/**" matches both "src/icons/a.svg" and "icons/a.svg".
//
// # Usage Example
//
//	filter, err := filtering.NewFileFilter(filtering.Config{
//		Include: []string{"icons/**"},
//		Exclude: []string{"icons/private/**"},
//		Prepend: filtering.DefaultPrepend,
//	})
//	if err != nil {
//		return err
//	}
//	included, reason := filter.Decide("src/icons/logo.svg")
package filtering
