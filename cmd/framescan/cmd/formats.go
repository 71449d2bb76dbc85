package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/spf13/cobra"
)

// formatsCmd lists the supported barcode formats and their wire codes.
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported barcode formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		decodable := barcode.DecodableFormats()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tCODE\tDECODED")
		for _, f := range barcode.SupportedFormats() {
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", f, f.Code(), yesNo(decodable.Has(f)))
		}
		_, _ = fmt.Fprintf(tw, "all\t%d\t\n", barcode.AllFormatsCode)
		return tw.Flush()
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
