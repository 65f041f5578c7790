package cleaner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultExecTimeout bounds a single run of an external cleaning command
const DefaultExecTimeout = 30 * time.Second

// ErrEmptyCommand indicates an Exec cleaner configured without a command
var ErrEmptyCommand = errors.New("exec cleaner requires a command")

// Exec returns a cleaner running command with the raw SVG on stdin and
// using its stdout as the cleaned text, for example
// []string{"svgo", "--input", "-", "--output", "-"}. A zero timeout selects
// DefaultExecTimeout. Output that is not valid UTF-8 is an invalid result.
func Exec(command []string, timeout time.Duration) (Cleaner, error) {
	if len(command) == 0 || command[0] == "" {
		return nil, ErrEmptyCommand
	}
	if timeout <= 0 {
		timeout = DefaultExecTimeout
	}

	name := command[0]
	args := append([]string(nil), command[1:]...)

	return Func(func(ctx context.Context, raw string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var stdout, stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdin = strings.NewReader(raw)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return "", fmt.Errorf("failed to run %s: %w: %s", name, err, msg)
			}
			return "", fmt.Errorf("failed to run %s: %w", name, err)
		}

		if !utf8.Valid(stdout.Bytes()) {
			return "", fmt.Errorf("%w, %s wrote non UTF-8 output", ErrInvalidResult, name)
		}
		return stdout.String(), nil
	}), nil
}
