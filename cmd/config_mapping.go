package cmd

import "github.com/spf13/cobra"

var configMappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage saved column mappings in config.",
	Long: `Manage column mappings stored under config key mappings.

A mapping tells which spreadsheet column holds each field of an energy type.
When its file_template matches the input file name, export uses it without
any --map flags.`,
}

func init() {
	configCmd.AddCommand(configMappingCmd)
}
