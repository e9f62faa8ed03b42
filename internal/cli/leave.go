package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"idlepond/internal/ui"
)

func newLeaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Record that you left the pond; resume replays the time away",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Engine.RecordExit(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s left %s at %s\n", ui.IconMoon, a.Engine.Pond(), a.Engine.Session().LastExitAt.Format("15:04:05"))
			return nil
		},
	}
}
