package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"carbonreport/config"
	"carbonreport/cups"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configCreateDataDir  string
	configCreateYear     int
	configCreateLanguage string
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file and the factor data directory.",
	Long: `Create a new configuration file and the data directory layout it points to.

The file is seeded with the data directory, report year and report language
given as flags. The year folder that holds the emission factor files
(<data.dir>/<year>/) is created as well, so factor CSV files can be dropped in
right away.

If a configuration file is already in use, no new file is written. The data
directory of the existing file is still created when missing.`,
	Example: `
  # Create default config at $HOME/.carbonreport.yaml
  carbonreport config create

  # Create a config for the 2024 report with factor data on a shared drive
  carbonreport config create --data-dir /srv/carbon --year 2024 --language en
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		result, err := createConfig(configPath, configCreateDataDir, configCreateYear, configCreateLanguage)
		if err != nil {
			return err
		}

		if result.Created {
			fmt.Printf("New config file created at: %s\n", configPath)
		} else {
			fmt.Printf("Config file already exists at: %s\n", configPath)
		}
		fmt.Printf("Report year: %d\n", result.Year)
		fmt.Printf("Emission factor files go in: %s\n", result.YearDir)
		fmt.Printf("CUPS registry: %s\n", filepath.Join(result.DataDir, cups.FileName))
		return nil
	},
}

type createConfigResult struct {
	Created bool
	DataDir string
	Year    int
	YearDir string
}

// createConfig writes a seeded template at path unless a file already exists
// there, then creates <data.dir>/<year>/ for the configuration in effect.
func createConfig(path, dataDir string, year int, language string) (createConfigResult, error) {
	result := createConfigResult{}
	if strings.TrimSpace(dataDir) == "" {
		dataDir = config.DefaultDataDir
	}
	if year == 0 {
		year = time.Now().Year()
	}
	if strings.TrimSpace(language) == "" {
		language = config.DefaultLanguage
	}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		content = []byte(config.ExampleYAMLFor(dataDir, year, strings.ToLower(strings.TrimSpace(language))))
		if _, err := config.ValidateYAMLContent(content); err != nil {
			return result, fmt.Errorf("invalid config values: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return result, fmt.Errorf("creating config directory failed: %w", err)
		}
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return result, fmt.Errorf("creating config file failed: %w", err)
		}
		result.Created = true
	default:
		return result, fmt.Errorf("checking config file failed: %w", err)
	}

	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return result, fmt.Errorf("config validation failed in %s: %w", path, err)
	}

	result.DataDir = cfg.Data.Dir
	result.Year = cfg.Report.Year
	result.YearDir = filepath.Join(result.DataDir, strconv.Itoa(cfg.Report.Year))
	if err := os.MkdirAll(result.YearDir, 0o755); err != nil {
		return result, fmt.Errorf("creating data directory failed: %w", err)
	}
	return result, nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
	configCreateCmd.Flags().StringVar(&configCreateDataDir, "data-dir", "", "Directory for emission factor and CUPS files (default ./data)")
	configCreateCmd.Flags().IntVar(&configCreateYear, "year", 0, "Report year (default current year)")
	configCreateCmd.Flags().StringVar(&configCreateLanguage, "language", "", "Report language: es or en (default es)")
}
