package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"idlepond/internal/shop"
	"idlepond/internal/ui"
)

func newShopCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "List what the tackle shop sells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCoin, "Tackle Shop"))
			for _, tab := range shop.Tabs {
				fmt.Fprintln(out, ui.H2.Render(string(tab)))
				for _, it := range a.Shop.Items(tab) {
					fmt.Fprintf(out, "  %s %s %s\n", ui.Key.Render(it.Name), ui.Coins(it.Price), ui.Muted.Render(it.Description))
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Wallet", ui.Coins(a.Engine.Inventory().Coins)))
			return nil
		},
	}
	cmd.AddCommand(newShopBuyCmd(opts))
	return cmd
}

func newShopBuyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <item[:qty]>...",
		Short: "Buy items, all or nothing",
		Example: `  idlepond shop buy "Bamboo Rod"
  idlepond shop buy "Bait Box:3" "Tackle Bag"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var cart shop.Cart
			for _, arg := range args {
				name, qty, err := parseCartArg(arg)
				if err != nil {
					return err
				}
				it, err := a.Shop.Lookup(name)
				if err != nil {
					return err
				}
				cart.Add(it, qty)
			}
			lines := cart.Lines()
			paid, err := a.Engine.Checkout(ctx, &cart)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintf(out, "%s %s x%d\n", ui.Good.Render("✔"), l.Item.Name, l.Quantity)
			}
			fmt.Fprintf(out, "paid %s %s\n", ui.Coins(paid),
				ui.Muted.Render(fmt.Sprintf("(wallet %d)", a.Engine.Inventory().Coins)))
			return nil
		},
	}
}

// parseCartArg splits "Bait Box:3" into a name and a quantity (default 1).
func parseCartArg(arg string) (string, int, error) {
	name, qty := arg, 1
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		n, err := strconv.Atoi(strings.TrimSpace(arg[i+1:]))
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("bad quantity in %q", arg)
		}
		name, qty = arg[:i], n
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, fmt.Errorf("no item name in %q", arg)
	}
	return name, qty, nil
}
