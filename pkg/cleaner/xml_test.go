package cleaner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{
			name:     "declaration and comments",
			raw:      `<?xml version="1.0"?><svg width="10"><!-- c --><rect/></svg>`,
			expected: `<svg width="10"><rect/></svg>`,
		},
		{
			name:     "namespaced attributes",
			raw:      `<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a" x="1"/></svg>`,
			expected: `<svg><use x="1"/></svg>`,
		},
		{
			name:     "doctype",
			raw:      "<!DOCTYPE svg>\n<svg/>",
			expected: `<svg/>`,
		},
		{
			name:    "malformed document",
			raw:     `<svg><g></svg>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := XML().Clean(context.Background(), tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to parse svg")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
