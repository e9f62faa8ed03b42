package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"idlepond/internal/ui"
)

func newResumeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Collect the catches made while you were away",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			sum, err := a.Engine.HandleOfflineCatches(ctx, a.Config.Balance.CatchIntervalSeconds)
			if err != nil {
				return err
			}
			if sum.Attempts == 0 {
				fmt.Fprintln(out, ui.Muted.Render("nothing to collect"))
				return nil
			}
			away := (time.Duration(sum.OfflineSeconds) * time.Second).String()
			printSummary(out, fmt.Sprintf("%s Away for %s", ui.IconMoon, away), sum)
			return nil
		},
	}
}
