package cleaner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolved(t *testing.T) {
	t.Parallel()

	d := Resolved("<svg/>")

	got, err := d.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", got)

	// An available value wins over a cancelled context.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err = d.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", got)
}

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("resolves after a delay", func(t *testing.T) {
		t.Parallel()

		d := Go(context.Background(), func(context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "<svg/>", nil
		})

		got, err := d.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", got)
	})

	t.Run("error is returned to every waiter", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		d := Go(context.Background(), func(context.Context) (string, error) { return "", boom })

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := d.Await(context.Background())
				assert.ErrorIs(t, err, boom)
			}()
		}
		wg.Wait()
	})

	t.Run("await stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		defer close(release)

		d := Go(context.Background(), func(context.Context) (string, error) {
			<-release
			return "late", nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := d.Await(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
