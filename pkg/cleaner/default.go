package cleaner

import (
	"context"
	"regexp"

	"github.com/stacklok/mxn-svg/internal/rewrite"
)

// space matches the whitespace of JavaScript regular expressions, which adds
// vertical tab, no-break spaces and the byte order mark to RE2's \s
const space = `[\s\v\x{A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

var (
	xmlDeclaration      = regexp.MustCompile(space + `*<\?xml[\s\S]+?\?>` + space + `*`)
	doctypeDeclaration  = regexp.MustCompile(`(?i)` + space + `*<!DOCTYPE[\s\S]*?>` + space + `*`)
	namespacedAttribute = regexp.MustCompile(`(?i)[a-z]+:[a-z]+` + space + `*=` + space + `*"[\s\S]+?"`)
	commentBlock        = regexp.MustCompile(space + `*<!--[\s\S]*?-->` + space + `*`)
)

// Strip applies the default removals in order: the first XML declaration,
// the first DOCTYPE, every namespace:name="value" attribute and every comment.
func Strip(raw string) string {
	out := rewrite.ReplaceFirst(xmlDeclaration, raw, "")
	out = rewrite.ReplaceFirst(doctypeDeclaration, out, "")
	out = namespacedAttribute.ReplaceAllLiteralString(out, "")
	return commentBlock.ReplaceAllLiteralString(out, "")
}

// Default is the cleaner used when none is configured
var Default Cleaner = Func(func(_ context.Context, raw string) (string, error) {
	return Strip(raw), nil
})
