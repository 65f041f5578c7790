// Package main is the entry point of the mxn-svg command line tool.
package main

import (
	"log/slog"
	"os"

	"github.com/stacklok/mxn-svg/cmd/mxn-svg/app"
	"github.com/stacklok/mxn-svg/internal/logging"
)

func main() {
	// Logs go to stderr so stdout stays clean for command output
	logging.Setup()

	if err := app.NewRootCmd().Execute(); err != nil {
		slog.Debug("Command failed", "error", err)
		os.Exit(1)
	}
}
