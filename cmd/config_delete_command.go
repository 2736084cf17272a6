package cmd

import (
	"fmt"
	"os"

	"carbonreport/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by carbonreport.

Only the configuration file is removed. Emission factor files and the CUPS
registry below data.dir are kept; the command prints where they live so they
can be reused by a new configuration or removed by hand.

If no configuration file is active, the command returns an error.`,
	Example: `
  # Delete active config
  carbonreport config delete

  # Delete config at a custom path
  carbonreport --configFile ./custom-carbonreport.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		dataDir, err := deleteConfigFile(configPath)
		if err != nil {
			return err
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		if dataDir != "" {
			fmt.Printf("Factor and CUPS data kept in: %s\n", dataDir)
		}
		return nil
	},
}

// deleteConfigFile removes the config file at path and returns the data
// directory it pointed to. An unreadable or invalid file is still removed;
// the data directory is then unknown and returned empty.
func deleteConfigFile(path string) (string, error) {
	dataDir := ""
	if content, err := os.ReadFile(path); err == nil {
		if cfg, err := config.ValidateYAMLContent(content); err == nil {
			dataDir = cfg.Data.Dir
		}
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("error deleting configuration file: %w", err)
	}
	return dataDir, nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
