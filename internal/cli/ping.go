package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avibot-labs/pgdata/internal/db"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Connect to the configured database and report the server version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		mgr, err := db.NewManager(cfg, db.WithLogger(logger))
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := mgr.Start(ctx); err != nil {
			return err
		}
		defer mgr.Close()

		exec := db.NewExecutor(mgr, db.WithQueryLogger(logger))
		rows, err := exec.Query(ctx, "SELECT version() AS version")
		if err != nil {
			return err
		}

		for _, row := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", row["version"])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
