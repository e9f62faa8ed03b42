package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"idlepond/internal/game"
	"idlepond/internal/telemetry"
	"idlepond/internal/ui"
)

func newFishCmd(opts *rootOptions) *cobra.Command {
	var (
		tick      time.Duration
		eventsCSV string
	)
	cmd := &cobra.Command{
		Use:   "fish",
		Short: "Fish live for one session, one cast every catch interval",
		Long: `Run a live fishing session. The countdown ticks once per --tick and casts
every catch_interval_seconds ticks until session_minutes run out.

Interrupting the session records the exit time, so "resume" can later
replay the time spent away.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tick <= 0 {
				return errors.New("--tick must be positive")
			}
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			bal := a.Config.Balance
			fmt.Fprintln(out, ui.Heading(ui.IconRod, fmt.Sprintf("Fishing at %s for %d min", a.Engine.Pond(), bal.SessionMinutes)))

			start := time.Now()
			ticker := time.NewTicker(tick)
			defer ticker.Stop()
			sum, err := a.Engine.RunSession(ctx, ticker.C, 0)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, ui.Warn.Render(ui.IconMoon+" leaving the pond"))
				if err := a.Engine.RecordExit(context.WithoutCancel(ctx)); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			printSummary(out, "Session", sum)
			events, err := a.Events.Events(telemetry.Query{Since: start})
			if err != nil {
				return err
			}
			stats, err := telemetry.CalculateStats(events, start)
			if err != nil {
				return err
			}
			a.Logger.Debug("session stats", "stats", stats)
			if stats.FishCaught > 0 {
				fmt.Fprintln(out, ui.LabelValue("Mean fish weight", fmt.Sprintf("%.2fkg (sd %.2f)", stats.MeanFishWeight, stats.StdFishWeight)))
			}
			if eventsCSV != "" {
				return writeFile(eventsCSV, func(w io.Writer) error { return telemetry.WriteCSV(w, events) })
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "wall time per countdown second")
	cmd.Flags().StringVar(&eventsCSV, "events-csv", "", "write the session's events to this CSV file")
	return cmd
}

func printSummary(out io.Writer, title string, sum game.Summary) {
	fmt.Fprintln(out, ui.H2.Render(title))
	fmt.Fprintf(out, "- %s %d  %s %d  %s %d  %s\n",
		ui.IconFish, sum.FishCount,
		ui.IconGarbage, sum.GarbageCount,
		ui.IconTreasure, sum.TreasureCount,
		ui.Muted.Render(fmt.Sprintf("(%d casts, %d misses)", sum.Attempts, sum.Misses)))
	if sum.XPGained > 0 {
		fmt.Fprintln(out, "- "+ui.LabelValue("XP", fmt.Sprintf("+%d", sum.XPGained)))
	}
	if sum.LevelsGained > 0 {
		fmt.Fprintf(out, "- %s +%d\n", ui.BadgeLevelUp, sum.LevelsGained)
	}
	if sum.Capped {
		fmt.Fprintln(out, "- "+ui.Warn.Render(fmt.Sprintf("%s %d casts forfeited (offline cap)", ui.IconWarn, sum.Forfeited)))
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
