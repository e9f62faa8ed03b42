package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"idlepond/internal/ledger"
	"idlepond/internal/ui"
)

func newSellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "sell <garbage|treasure|basket|library>",
		Short:     "Sell everything in one section",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"garbage", "treasure", "basket", "library"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sec, err := ledger.ParseSection(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			coins, err := a.Engine.Sell(ctx, sec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s sold %s for %s %s\n", ui.Good.Render("✔"), sec, ui.Coins(coins),
				ui.Muted.Render(fmt.Sprintf("(wallet %d)", a.Engine.Inventory().Coins)))
			return nil
		},
	}
}
