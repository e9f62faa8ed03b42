package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"idlepond/internal/ledger"
	"idlepond/internal/ui"
)

func newBagCmd(opts *rootOptions) *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:       "bag [garbage|treasure|basket|library]",
		Short:     "List the backpack, or one section of it",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"garbage", "treasure", "basket", "library"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := ledger.Sections
			if len(args) == 1 {
				sec, err := ledger.ParseSection(args[0])
				if err != nil {
					return err
				}
				sections = []ledger.Section{sec}
			}

			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if sortBy != "" {
				key, err := ledger.ParseSortKey(sortBy)
				if err != nil {
					return err
				}
				for _, sec := range sections {
					err := a.Engine.Sort(ctx, sec, key)
					if errors.Is(err, ledger.ErrUnsupportedSort) && len(sections) > 1 {
						continue
					}
					if err != nil {
						return err
					}
				}
			}

			out := cmd.OutOrStdout()
			inv := a.Engine.Inventory()
			for _, sec := range sections {
				value, err := a.Engine.TotalValue(sec)
				if err != nil {
					return err
				}
				note := fmt.Sprintf("worth %d", value)
				if sec == ledger.Garbage || sec == ledger.Treasure {
					note += fmt.Sprintf(", stacks of %d", a.Engine.StackLimit())
				}
				fmt.Fprintf(out, "%s %s\n", ui.H2.Render(sectionTitle(sec)), ui.Muted.Render(note))
				switch sec {
				case ledger.Garbage:
					printStacks(out, inv.Garbage)
				case ledger.Treasure:
					printStacks(out, inv.Treasure)
				case ledger.Basket:
					printFish(out, inv.Basket)
				case ledger.Library:
					printFish(out, inv.Library)
				}
			}
			if gear := a.Engine.Gear(); len(gear) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconRod+" Gear"))
				names := make([]string, 0, len(gear))
				for name := range gear {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s x%d\n", name, gear[name])
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Wallet", ui.Coins(inv.Coins)))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort first: name, price-asc, price-desc, quantity, rarity, quality, weight-asc, weight-desc")
	return cmd
}

func sectionTitle(sec ledger.Section) string {
	switch sec {
	case ledger.Garbage:
		return ui.IconGarbage + " Garbage"
	case ledger.Treasure:
		return ui.IconTreasure + " Treasure"
	case ledger.Basket:
		return ui.IconFish + " Basket"
	case ledger.Library:
		return ui.IconBook + " Library"
	}
	return sec.String()
}

func printStacks(out io.Writer, slots []ledger.StackSlot) {
	if len(slots) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("  (empty)"))
	}
	for _, s := range slots {
		fmt.Fprintf(out, "  %s x%d %s\n", s.Name, s.Quantity, ui.Muted.Render(fmt.Sprintf("@%d", s.Price)))
	}
}

func printFish(out io.Writer, fish []ledger.FishSlot) {
	if len(fish) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("  (empty)"))
	}
	for _, f := range fish {
		fmt.Fprintf(out, "  %s %s %s %.2fkg %s %s\n",
			ui.Key.Render(f.Name), ui.RarityText(f.Rarity), ui.QualityText(f.Quality), f.Weight, ui.Coins(f.Price), ui.Muted.Render(f.ID.String()))
	}
}
