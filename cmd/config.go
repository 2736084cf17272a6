package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage carbonreport configuration file values.",
	Long: `Create, edit, display, and delete the carbonreport configuration file.

The configuration stores application-wide values and saved column mappings:
- data.dir
- report.year / report.language / report.no_center_label
- mappings[].name / energy_type / file_template / sheet / columns`,
	Example: `
  # Create default config in $HOME/.carbonreport.yaml
  carbonreport config create

  # Show active config and source file
  carbonreport config show

  # Open active config in editor (creates example if missing)
  carbonreport config edit

  # Save a column mapping for a supplier file layout
  carbonreport config mapping add --name iberdrola --type electricity --template "Iberdrola_*.xlsx" \
    --map center=A --map invoice=C --map provider=D --map start=E --map end=F --map consumption=G

  # Delete active config file
  carbonreport config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
