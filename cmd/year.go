package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"carbonreport/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var yearCmd = &cobra.Command{
	Use:   "year",
	Short: "Show or change the reporting year.",
	Long: `The reporting year selects the factor files and the period every invoice is
pro-rated into. It is stored as report.year in the config file; --year on
export and the factor commands overrides it for one run.`,
	Example: `
  # Show the reporting year
  carbonreport year

  # Switch to 2024
  carbonreport year set 2024
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reporting year: %d\n", cfg.Report.Year)
		return nil
	},
}

var yearSetCmd = &cobra.Command{
	Use:   "set <year>",
	Short: "Store a new reporting year in the config file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}

		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		if _, err := ensureConfigFileWithTemplate(configPath); err != nil {
			return err
		}

		current, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		updated, err := setYearInConfigYAML(current, year)
		if err != nil {
			return err
		}
		if err := os.WriteFile(configPath, updated, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reporting year set to %d in %s\n", year, configPath)
		return nil
	},
}

func setYearInConfigYAML(content []byte, year int) ([]byte, error) {
	doc := map[string]any{}
	if strings.TrimSpace(string(content)) != "" {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	reportSection, err := ensureMapAny(doc, "report")
	if err != nil {
		return nil, err
	}
	reportSection["year"] = year

	updated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}

func init() {
	rootCmd.AddCommand(yearCmd)
	yearCmd.AddCommand(yearSetCmd)
}
