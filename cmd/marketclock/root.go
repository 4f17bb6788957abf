package main

import (
	"github.com/dgnsrekt/market-clock/internal/config"
	"github.com/dgnsrekt/market-clock/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "marketclock",
		Short:         "Exchange session clock and open/close alerts",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newStatusCmd(opts), newPollCmd(opts))
	return cmd
}

// setup loads the environment configuration and a stderr logger
func (o *rootOptions) setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	log := logger.NewWithWriter(logger.Config{
		Level:  o.logLevel,
		Pretty: true,
	}, cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		return nil, log, err
	}
	return cfg, log, nil
}
