package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cupsDeleteCode string

var cupsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one supply point.",
	Example: `
  carbonreport cups delete --cups ES0021000000000001AB
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := cupsStore()
		if err != nil {
			return err
		}

		if err := store.Delete(cupsDeleteCode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Supply point deleted: %s\n", cupsDeleteCode)
		return nil
	},
}

func init() {
	cupsCmd.AddCommand(cupsDeleteCmd)

	cupsDeleteCmd.Flags().StringVar(&cupsDeleteCode, "cups", "", "CUPS code to delete")

	_ = cupsDeleteCmd.MarkFlagRequired("cups")
}
