package cli

import (
	"io"

	"github.com/spf13/cobra"

	"idlepond/internal/ledger"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:       "export <garbage|treasure|basket|library>",
		Short:     "Write one section as CSV",
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

			if outPath == "" || outPath == "-" {
				return a.Engine.ExportCSV(cmd.OutOrStdout(), sec)
			}
			return writeFile(outPath, func(w io.Writer) error { return a.Engine.ExportCSV(w, sec) })
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
