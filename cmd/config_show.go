package cmd

import (
	"fmt"
	"strings"

	"carbonreport/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  carbonreport config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("data.dir: %s\n", cfg.Data.Dir)
		fmt.Printf("report.year: %d\n", cfg.Report.Year)
		fmt.Printf("report.language: %s\n", cfg.Report.Language)
		fmt.Printf("report.no_center_label: %s\n", cfg.Report.NoCenterLabel)
		fmt.Printf("mappings: %d\n", len(cfg.Mappings))
		for i, preset := range cfg.Mappings {
			fmt.Printf("mappings[%d].name: %s\n", i, preset.Name)
			fmt.Printf("mappings[%d].energy_type: %s\n", i, preset.EnergyType)
			if preset.FileTemplate != "" {
				fmt.Printf("mappings[%d].file_template: %s\n", i, preset.FileTemplate)
			}
			if preset.Sheet != "" {
				fmt.Printf("mappings[%d].sheet: %s\n", i, preset.Sheet)
			}
			fmt.Printf("mappings[%d].columns: %s\n", i, strings.Join(preset.SortedColumns(), " "))
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
