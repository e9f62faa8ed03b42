package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"idlepond/internal/ui"
)

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <fish-id>",
		Short: "Move a fish from the basket into the library",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("fish id is required")
			}
			if _, err := uuid.Parse(args[0]); err != nil {
				return errors.New("fish id must be a UUID (see bag basket)")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.MustParse(args[0])
			ctx := cmd.Context()
			a, cleanup, err := opts.openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			moved, err := a.Engine.Archive(ctx, id)
			if err != nil {
				return err
			}
			if !moved {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("no such fish in the basket"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconBook+" archived"))
			return nil
		},
	}
}
