// Package cli implements the pgdata developer tool: small commands for
// checking connectivity and watching notification channels. It is thin glue
// over the core in internal/db, in the same position as the bot process that
// consumes this library in production.
package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avibot-labs/pgdata/internal/config"
	"github.com/avibot-labs/pgdata/internal/logging"
	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

var rootCmd = &cobra.Command{
	Use:   "pgdata",
	Short: "Resilient PostgreSQL access layer utilities",
	Long: `pgdata connects to PostgreSQL with the same pool manager the library
provides to applications: automatic pool recreation after transport
failures, bounded query retry, and LISTEN/NOTIFY subscriptions on a
dedicated connection.

Credentials come from POSTGRES_PASSWORD, POSTGRES_HOST, POSTGRES_USER,
POSTGRES_DB and POSTGRES_PORT (a .env file is honored), optionally layered
over a pgdata.yaml in the working directory.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or schema parameters
  11 - Database connection failed
  13 - Statement execution failed`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

func newLogger(cmd *cobra.Command) pgdata.Logger {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to get verbose flag: %v\n", err)
		verbose = false
	}
	return logging.NewConsoleLogger(verbose)
}

// resolveConfig layers environment variables over an optional pgdata.yaml in
// the current directory and prompts for a password when none is configured
// and stdin is a terminal.
func resolveConfig() (*pgdata.ConnectionConfig, error) {
	base, err := config.Load(".")
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}

	cfg, err := config.FromEnv(base)
	if err != nil {
		return nil, err
	}

	if cfg.Password == "" && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Fprintf(os.Stderr, "Password for %s@%s: ", cfg.Username, cfg.Host)
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = string(pw)
	}

	return cfg, nil
}
