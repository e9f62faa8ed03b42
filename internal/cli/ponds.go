package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"idlepond/internal/ui"
)

func newPondsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ponds [name]",
		Short: "List ponds, or move to one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := a.Engine.SelectPond(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s now fishing at %s\n", ui.IconRod, ui.Key.Render(args[0]))
				return nil
			}

			current := a.Engine.Pond()
			fmt.Fprintln(out, ui.Heading(ui.IconWave, "Ponds"))
			for _, p := range a.Engine.Ponds() {
				odds := a.Config.Balance.OddsFor(p)
				name := p
				if p == current {
					name = ui.Good.Render(p + " *")
				}
				fmt.Fprintf(out, "- %s %s\n", name, ui.Muted.Render(fmt.Sprintf("(fish %g / garbage %g / treasure %g, %d species)",
					odds.Fish, odds.Garbage, odds.Treasure, len(a.Catalog.FishInPond(p)))))
			}
			return nil
		},
	}
}
