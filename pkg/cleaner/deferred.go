package cleaner

import "context"

// Deferred is a string that becomes available later
type Deferred interface {
	// Await blocks until the value is available or ctx is done
	Await(ctx context.Context) (string, error)
}

// Resolved returns a Deferred that is already available
func Resolved(s string) Deferred {
	return &future{done: closedChan, value: s}
}

// Go runs fn on its own goroutine and returns its eventual result.
// fn receives ctx and is expected to stop when it is cancelled.
func Go(ctx context.Context, fn func(context.Context) (string, error)) Deferred {
	f := &future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type future struct {
	done  chan struct{}
	value string
	err   error
}

// Await may be called any number of times and from several goroutines
func (f *future) Await(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
