package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/market-clock/internal/di"
	"github.com/dgnsrekt/market-clock/internal/modules/alerts"
	"github.com/spf13/cobra"
)

func newPollCmd(opts *rootOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run the alert poll loop (or a single cycle with --once)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, _, err := di.Wire(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := container.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close dedup store")
				}
			}()

			if once {
				renderCycle(cmd.OutOrStdout(), container.Poller.RunCycle(ctx))
				return nil
			}
			return container.Poller.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single poll cycle and exit")
	return cmd
}

func renderCycle(w io.Writer, result alerts.CycleResult) {
	fmt.Fprintf(w, "Cycle %s: %d regions, %d sent, %d suppressed, %d failed, %d store errors\n",
		result.ID, result.Regions, len(result.Sent), result.Suppressed, result.Failed, result.StoreErrors)
	for _, msg := range result.Sent {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}
