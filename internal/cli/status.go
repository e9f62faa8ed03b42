package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"idlepond/internal/progress"
	"idlepond/internal/ui"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, wallet, pond and guide progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			st := a.Engine.Progress()
			next := progress.XPForNextLevel(st.Level)
			inv := a.Engine.Inventory()

			found, total := 0, 0
			for _, g := range a.Engine.Guide() {
				total++
				if g.Discovered {
					found++
				}
			}

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Angler Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", st.Level))
			fmt.Fprintf(out, "%s %s %d/%d\n", ui.Key.Render("XP:"), ui.Bar(st.CurrentXP, next, 20), st.CurrentXP, next)
			fmt.Fprintln(out, ui.LabelValue("Wallet", ui.Coins(inv.Coins)))
			fmt.Fprintln(out, ui.LabelValue("Pond", a.Engine.Pond()))
			fmt.Fprintln(out, ui.LabelValue("Guide", fmt.Sprintf("%d/%d species", found, total)))
			fmt.Fprintln(out, ui.LabelValue("Bag", fmt.Sprintf("%d basket, %d library, %d garbage slots, %d treasure slots",
				len(inv.Basket), len(inv.Library), len(inv.Garbage), len(inv.Treasure))))
			if s := a.Engine.Session(); s.LastExitAt != nil {
				fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%s away since %s, run resume to collect", ui.IconMoon, s.LastExitAt.Format("2006-01-02 15:04:05"))))
			}
			return nil
		},
	}
}
