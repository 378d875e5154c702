package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rahul/finbot/internal/catalog"
	"github.com/spf13/cobra"
)

var formulasNamesOnly bool

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "List the formula catalogue",
	Long: `List every formula a calculation plan may use, grouped by family, with
its parameters and display template.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := catalog.Default()
		out := cmd.OutOrStdout()

		if formulasNamesOnly {
			for _, name := range cat.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, fam := range cat.Families {
			fmt.Fprintf(tw, "%s\n", fam.Title)
			for _, f := range fam.Formulas {
				fmt.Fprintf(tw, "  %s\t(%s)\t%s\n", f.Name, strings.Join(f.Params, ", "), f.Template)
			}
			fmt.Fprintln(tw)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(formulasCmd)
	formulasCmd.Flags().BoolVar(&formulasNamesOnly, "names", false, "Print only the formula identifiers")
}
