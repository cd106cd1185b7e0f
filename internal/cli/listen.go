package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cobra"

	"github.com/avibot-labs/pgdata/internal/db"
)

var listenCmd = &cobra.Command{
	Use:   "listen CHANNEL [CHANNEL...]",
	Short: "Subscribe to notification channels and print incoming payloads",
	Args:  cobra.MinimumNArgs(1),
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

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := mgr.Start(ctx); err != nil {
			return err
		}
		defer mgr.Close()

		out := cmd.OutOrStdout()
		listeners := make([]db.Listener, 0, len(args))
		for _, channel := range args {
			listeners = append(listeners, db.NewListener(channel, func(_ context.Context, n *pgconn.Notification) {
				fmt.Fprintf(out, "%s: %s\n", n.Channel, n.Payload)
			}))
		}

		if err := mgr.AddListeners(ctx, listeners...); err != nil {
			return err
		}

		logger.Info("listening on %d channel(s), press Ctrl-C to stop", len(args))
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
}
