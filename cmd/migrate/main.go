package main

import (
	"os"

	"github.com/zeedivx/web-starter/internal/cli"
	"github.com/zeedivx/web-starter/internal/migration"
)

func main() {
	// Cobra already printed the error; the exit status carries the
	// engine's own code when the invocation failed.
	if err := cli.Execute(); err != nil {
		os.Exit(migration.ExitCode(err))
	}
}
