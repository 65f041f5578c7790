package cleaner

import (
	"context"
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

// Minify returns a cleaner that minifies the SVG and then applies Strip,
// which drops the namespaced attributes the minifier keeps.
func Minify() Cleaner {
	m := minify.New()
	m.AddFunc(svgMediaType, svg.Minify)

	return Func(func(_ context.Context, raw string) (string, error) {
		out, err := m.String(svgMediaType, raw)
		if err != nil {
			return "", fmt.Errorf("failed to minify svg: %w", err)
		}
		return Strip(out), nil
	})
}
