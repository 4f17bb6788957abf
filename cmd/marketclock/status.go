package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/market-clock/internal/di"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours"
	"github.com/dgnsrekt/market-clock/internal/modules/market_hours/handlers"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var (
		at     string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:               "status [region]",
		Short:             "Show session state for every region, or a single region",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRegion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
			}

			registry, err := di.BuildRegistry(cfg, now.UTC().Year(), log)
			if err != nil {
				return err
			}

			var snapshots []market_hours.Snapshot
			if len(args) == 1 {
				s, err := registry.RefreshRegion(args[0], now)
				if err != nil {
					return err
				}
				snapshots = []market_hours.Snapshot{s}
			} else {
				snapshots, err = registry.RefreshSnapshots(now)
				if err != nil {
					log.Warn().Err(err).Msg("Some regions failed to refresh")
				}
			}

			if asJSON {
				return writeStatusJSON(cmd.OutOrStdout(), snapshots)
			}
			renderStatus(cmd.OutOrStdout(), snapshots)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate at this RFC3339 instant instead of now")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// completeRegion offers lower-case region identifiers for the first argument.
func completeRegion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, id := range market_hours.RegionIDs() {
		name := strings.ToLower(string(id))
		if strings.HasPrefix(name, strings.ToLower(toComplete)) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func renderStatus(w io.Writer, snapshots []market_hours.Snapshot) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Region", "Exchange", "Hours", "Status", "Opens in", "Closes in", "Next trading day"})
	table.SetBorder(false)

	for _, s := range snapshots {
		status := "CLOSED"
		if s.State.IsOpen {
			status = "OPEN"
		}
		table.Append([]string{
			s.Name,
			s.Exchange,
			s.Open.String() + "-" + s.Close.String(),
			status,
			words(s.State.TimeToOpen),
			words(s.State.TimeToClose),
			s.State.NextTradingDay.String(),
		})
	}

	table.Render()
}

func words(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return market_hours.DurationWords(*d)
}

func writeStatusJSON(w io.Writer, snapshots []market_hours.Snapshot) error {
	out := make([]handlers.RegionResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, handlers.NewRegionResponse(s))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
