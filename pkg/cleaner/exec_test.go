package cleaner

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec(t *testing.T) {
	t.Parallel()

	t.Run("empty command", func(t *testing.T) {
		t.Parallel()

		_, err := Exec(nil, 0)
		assert.ErrorIs(t, err, ErrEmptyCommand)

		_, err = Exec([]string{""}, 0)
		assert.ErrorIs(t, err, ErrEmptyCommand)
	})

	t.Run("stdout becomes the cleaned text", func(t *testing.T) {
		t.Parallel()
		if _, err := exec.LookPath("cat"); err != nil {
			t.Skip("cat not available")
		}

		c, err := Exec([]string{"cat"}, time.Second)
		require.NoError(t, err)

		got, err := c.Clean(context.Background(), "<svg/>")
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", got)
	})

	t.Run("failing command", func(t *testing.T) {
		t.Parallel()
		if _, err := exec.LookPath("sh"); err != nil {
			t.Skip("sh not available")
		}

		c, err := Exec([]string{"sh", "-c", "echo broken >&2; exit 3"}, time.Second)
		require.NoError(t, err)

		_, err = c.Clean(context.Background(), "<svg/>")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to run sh")
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		c, err := Exec([]string{"mxn-svg-no-such-cleaner"}, time.Second)
		require.NoError(t, err)

		_, err = c.Clean(context.Background(), "<svg/>")
		require.Error(t, err)
	})
}
