// Package rewrite turns cleaned SVG markup into a function-component module.
package rewrite

import (
	"regexp"
	"strings"
)

// PropsMarker is spliced into the root svg tag so the component forwards its props.
const PropsMarker = "{...props}"

// svgOpenTag matches the first opening svg tag, non-greedy on its attributes.
var svgOpenTag = regexp.MustCompile(`(?i)<svg([\s\S]*?)>`)

// ReplaceFirst replaces only the leftmost match of re in src. template may
// reference submatches as in regexp.Regexp.Expand.
func ReplaceFirst(re *regexp.Regexp, src, template string) string {
	loc := re.FindStringSubmatchIndex(src)
	if loc == nil {
		return src
	}

	expanded := re.ExpandString(nil, template, src, loc)

	var b strings.Builder
	b.Grow(len(src) + len(expanded))
	b.WriteString(src[:loc[0]])
	b.Write(expanded)
	b.WriteString(src[loc[1]:])
	return b.String()
}

// InjectProps inserts PropsMarker right before the closing ">" of the first
// svg opening tag. Markup without an svg tag is returned unchanged.
func InjectProps(markup string) string {
	return ReplaceFirst(svgOpenTag, markup, "<svg${1} "+PropsMarker+">")
}

// Module emits the component module: the import statements, one per line,
// followed by a default-exported arrow function wrapping markup.
func Module(imports []string, markup string) string {
	var b strings.Builder
	for _, stmt := range imports {
		b.WriteString(stmt)
		b.WriteByte('\n')
	}
	b.WriteString("export default ( props ) => (")
	b.WriteString(markup)
	b.WriteString(");")
	return b.String()
}
