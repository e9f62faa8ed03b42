package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"idlepond/internal/catch"
	"idlepond/internal/ui"
)

func newCatchCmd(opts *rootOptions) *cobra.Command {
	var times int
	cmd := &cobra.Command{
		Use:   "catch",
		Short: "Cast once (or --times N) in the current pond",
		RunE: func(cmd *cobra.Command, args []string) error {
			if times <= 0 {
				return errors.New("--times must be positive")
			}
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			before := a.Engine.Progress().Level
			for i := 0; i < times; i++ {
				c, err := a.Engine.CatchOnce(ctx)
				switch {
				case errors.Is(err, catch.ErrNoSelection):
					fmt.Fprintln(out, ui.Muted.Render(ui.IconWave+" nothing bites"))
					continue
				case err != nil:
					return err
				}
				printCatch(out, c)
			}
			if after := a.Engine.Progress().Level; after > before {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.LabelValue("Level", after))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&times, "times", "n", 1, "number of casts")
	return cmd
}

func printCatch(out io.Writer, c catch.Catch) {
	switch v := c.(type) {
	case *catch.FishCatch:
		fmt.Fprintf(out, "%s %s %s %s %.2fkg %s\n",
			ui.IconFish, ui.Key.Render(v.Name), ui.RarityText(v.Rarity), ui.QualityText(v.Quality), v.Weight, ui.Coins(v.Price))
	case *catch.TreasureCatch:
		fmt.Fprintf(out, "%s %s %s %s\n", ui.IconTreasure, ui.Key.Render(v.Name), ui.RarityText(v.Rarity), ui.Coins(v.Price))
	case *catch.GarbageCatch:
		fmt.Fprintf(out, "%s %s %s\n", ui.IconGarbage, v.Name, ui.Muted.Render(v.Description))
	}
}
