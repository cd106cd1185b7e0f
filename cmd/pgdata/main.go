package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/avibot-labs/pgdata/internal/cli"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgdata.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgdata.ExitCodeForError(err))
	}
}
