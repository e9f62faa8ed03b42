package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"idlepond/internal/game"
	"idlepond/internal/ui"
)

func newGuideCmd(opts *rootOptions) *cobra.Command {
	var resync, reset bool
	cmd := &cobra.Command{
		Use:   "guide [species]",
		Short: "Show the fish guide",
		Args:  cobra.MaximumNArgs(1),
		Long: `Show every species with what you know about it, or one species in detail.

--resync recounts each species from the fish in your basket and library.
--reset clears the guide and needs --admin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resync && reset {
				return errors.New("--resync and --reset are exclusive")
			}
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			switch {
			case resync:
				unknown, err := a.Engine.ResyncGuide(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Good.Render("guide recounted"))
				for _, n := range unknown {
					fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("%s %s is not in the guide", ui.IconWarn, n)))
				}
			case reset:
				if err := a.Engine.ResetGuide(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Warn.Render("guide reset"))
				return nil
			}

			if len(args) == 1 {
				return printSpecies(out, a.Engine, args[0])
			}

			fmt.Fprintln(out, ui.Heading(ui.IconBook, "Fish Guide"))
			pond := ""
			for _, g := range a.Engine.Guide() {
				if g.Pond != pond {
					pond = g.Pond
					fmt.Fprintln(out, ui.H2.Render(pond))
				}
				if !g.Discovered {
					fmt.Fprintf(out, "- %s %s\n", ui.Muted.Render("???"), ui.RarityText(g.Rarity))
					continue
				}
				caught := ""
				if g.CaughtMinWeight != nil && g.CaughtMaxWeight != nil {
					caught = fmt.Sprintf("%.2f-%.2fkg", *g.CaughtMinWeight, *g.CaughtMaxWeight)
				}
				fmt.Fprintf(out, "- %s %s x%d %s %s\n", ui.Key.Render(g.Name), ui.RarityText(g.Rarity), g.CaughtCount, caught,
					ui.Muted.Render(fmt.Sprintf("(%.2f-%.2fkg possible)", g.MinWeightPossible, g.MaxWeightPossible)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resync, "resync", false, "recount species from the basket and library")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the guide (admin)")
	return cmd
}

func printSpecies(out io.Writer, e *game.Engine, name string) error {
	f, g, err := e.Species(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ui.Heading(ui.IconFish, f.Name))
	fmt.Fprintln(out, ui.LabelValue("Pond", f.Pond))
	fmt.Fprintln(out, ui.LabelValue("Rarity", ui.RarityText(f.Rarity)))
	if !g.Discovered {
		fmt.Fprintln(out, ui.Muted.Render("not caught yet"))
		return nil
	}
	fmt.Fprintln(out, ui.LabelValue("Base price", ui.Coins(f.Price)))
	fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprint(f.Exp)))
	fmt.Fprintln(out, ui.LabelValue("Weight", fmt.Sprintf("%.2f-%.2fkg", f.MinWeight, f.MaxWeight)))
	fmt.Fprintln(out, ui.LabelValue("Caught", fmt.Sprint(g.CaughtCount)))
	if g.CaughtMinWeight != nil && g.CaughtMaxWeight != nil {
		fmt.Fprintln(out, ui.LabelValue("Your range", fmt.Sprintf("%.2f-%.2fkg", *g.CaughtMinWeight, *g.CaughtMaxWeight)))
	}
	return nil
}
