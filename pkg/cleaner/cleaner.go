package cleaner

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -destination=mocks/mock_cleaner.go -package=mocks -source=cleaner.go Cleaner

var (
	// ErrInvalidResult indicates a cleaning function produced neither a string nor a deferred string.
	ErrInvalidResult = errors.New("clean did not return a string or a deferred string")

	// ErrNotCallable indicates a value that cannot be used as a cleaning function.
	ErrNotCallable = errors.New("clean should be a function")
)

// Cleaner prepares raw SVG text for the component rewrite
type Cleaner interface {
	// Clean returns the cleaned text, blocking until it is available
	Clean(ctx context.Context, raw string) (string, error)
}

// Func adapts an ordinary function to the Cleaner interface
type Func func(ctx context.Context, raw string) (string, error)

// Clean satisfies Cleaner
func (fn Func) Clean(ctx context.Context, raw string) (string, error) { return fn(ctx, raw) }

// FromFunc adapts a user supplied cleaning function to a Cleaner.
//
// Accepted shapes:
//   - Cleaner
//   - func(context.Context, string) (string, error)
//   - func(string) (string, error)
//   - func(string) string
//   - func(string) Deferred
//   - func(string) <-chan string
//   - func(string) any, whose result is checked on every call
//
// Anything else, including nil, fails with ErrNotCallable.
func FromFunc(fn any) (Cleaner, error) {
	switch f := fn.(type) {
	case nil:
		return nil, ErrNotCallable
	case Cleaner:
		return f, nil
	case func(context.Context, string) (string, error):
		return Func(f), nil
	case func(string) (string, error):
		return Func(func(_ context.Context, raw string) (string, error) {
			return f(raw)
		}), nil
	case func(string) string:
		return Func(func(_ context.Context, raw string) (string, error) {
			return f(raw), nil
		}), nil
	case func(string) Deferred:
		return Func(func(ctx context.Context, raw string) (string, error) {
			return awaitDeferred(ctx, f(raw))
		}), nil
	case func(string) <-chan string:
		return Func(func(ctx context.Context, raw string) (string, error) {
			return receive(ctx, f(raw))
		}), nil
	case func(string) any:
		return Func(func(ctx context.Context, raw string) (string, error) {
			return Resolve(ctx, f(raw))
		}), nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrNotCallable, fn)
	}
}

// Resolve turns the untyped result of a cleaning function into a string,
// waiting for deferred values.
func Resolve(ctx context.Context, v any) (string, error) {
	switch r := v.(type) {
	case string:
		return r, nil
	case Deferred:
		return awaitDeferred(ctx, r)
	case <-chan string:
		return receive(ctx, r)
	case chan string:
		return receive(ctx, r)
	default:
		return "", fmt.Errorf("%w, got %T", ErrInvalidResult, v)
	}
}

func awaitDeferred(ctx context.Context, d Deferred) (string, error) {
	if d == nil {
		return "", fmt.Errorf("%w, got nil deferred", ErrInvalidResult)
	}
	return d.Await(ctx)
}

func receive(ctx context.Context, ch <-chan string) (string, error) {
	if ch == nil {
		return "", fmt.Errorf("%w, got nil channel", ErrInvalidResult)
	}
	select {
	case s, ok := <-ch:
		if !ok {
			return "", fmt.Errorf("%w, channel closed without a value", ErrInvalidResult)
		}
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Chain applies cleaners in order, feeding each one the output of the previous
func Chain(cleaners ...Cleaner) Cleaner {
	return Func(func(ctx context.Context, raw string) (string, error) {
		out := raw
		for _, c := range cleaners {
			var err error
			out, err = c.Clean(ctx, out)
			if err != nil {
				return "", err
			}
		}
		return out, nil
	})
}

// None returns its input unchanged
var None Cleaner = Func(func(_ context.Context, raw string) (string, error) {
	return raw, nil
})
