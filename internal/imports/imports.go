// Package imports produces the import statements placed at the top of every
// generated component module.
package imports

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// LibraryPreact is the default JSX library
	LibraryPreact = "preact"
	// LibraryReact selects React with a default import of React
	LibraryReact = "react"

	// fallbackFactory is imported from libraries without a table entry
	fallbackFactory = "h"

	// DefaultStatement is emitted when no raw statements are configured
	DefaultStatement = "import { h } from 'preact';"
)

// ErrNoFactory indicates a library for which no factory name could be resolved
var ErrNoFactory = errors.New("factory couldn't be set from the provided options")

// Producer yields the import statements of a generated module
type Producer interface {
	// Statements returns the statements in emission order, one per line
	Statements() []string
	// JSXFactory returns the expression used to create elements, or "" when unknown
	JSXFactory() string
}

type libraryDefaults struct {
	factory       string
	defaultImport bool
	jsxFactory    string
}

var knownLibraries = map[string]libraryDefaults{
	LibraryPreact: {factory: "h", defaultImport: false, jsxFactory: "h"},
	LibraryReact:  {factory: "React", defaultImport: true, jsxFactory: "React.createElement"},
}

// Library imports a single factory from a JSX library
type Library struct {
	jsx           string
	factory       string
	defaultImport bool
	jsxFactory    string
}

// NewLibrary resolves the import of factory from the jsx library. An empty jsx
// selects preact. Known libraries supply the factory and import style, other
// libraries get a default import of h. A non-empty factory or non-nil
// defaultImport overrides them; a factory of only whitespace is rejected.
func NewLibrary(jsx, factory string, defaultImport *bool) (*Library, error) {
	jsx = strings.TrimSpace(jsx)
	if jsx == "" {
		jsx = LibraryPreact
	}

	lib := &Library{jsx: jsx, factory: fallbackFactory, defaultImport: true, jsxFactory: fallbackFactory}
	if d, ok := knownLibraries[jsx]; ok {
		lib.factory = d.factory
		lib.defaultImport = d.defaultImport
		lib.jsxFactory = d.jsxFactory
	}

	if factory != "" {
		factory = strings.TrimSpace(factory)
		if factory == "" {
			return nil, fmt.Errorf("%w: blank factory for jsx library %q", ErrNoFactory, jsx)
		}
		if lib.factory != factory {
			lib.jsxFactory = factory
		}
		lib.factory = factory
	}
	if defaultImport != nil {
		lib.defaultImport = *defaultImport
	}
	return lib, nil
}

// Statements returns the single import statement
func (l *Library) Statements() []string {
	binding := l.factory
	if !l.defaultImport {
		binding = "{ " + l.factory + " }"
	}
	return []string{fmt.Sprintf("import %s from '%s';", binding, l.jsx)}
}

// JSXFactory returns the element factory matching the import
func (l *Library) JSXFactory() string { return l.jsxFactory }

// Library returns the imported module name
func (l *Library) Library() string { return l.jsx }

// Raw emits user supplied import statements verbatim
type Raw struct {
	statements []string
	jsxFactory string
}

var singleBinding = regexp.MustCompile(`^\s*import\s+(?:\{\s*([A-Za-z_$][\w$]*)\s*\}|([A-Za-z_$][\w$]*))\s+from\s`)

// NewRaw returns a producer for the given statements. Blank statements are
// ignored and no statements at all selects DefaultStatement. The JSX factory
// is taken from the first statement importing a single binding.
func NewRaw(statements ...string) *Raw {
	r := &Raw{}
	for _, s := range statements {
		if strings.TrimSpace(s) != "" {
			r.statements = append(r.statements, s)
		}
	}
	if len(r.statements) == 0 {
		r.statements = []string{DefaultStatement}
	}

	for _, s := range r.statements {
		m := singleBinding.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		name := m[1] + m[2]
		if name == "React" {
			name = "React.createElement"
		}
		r.jsxFactory = name
		break
	}
	return r
}

// Statements returns a copy of the configured statements
func (r *Raw) Statements() []string {
	return append([]string(nil), r.statements...)
}

// JSXFactory returns the factory detected from the statements, or ""
func (r *Raw) JSXFactory() string { return r.jsxFactory }
