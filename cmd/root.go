/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"carbonreport/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "carbonreport",
	Short: "Turn supplier invoice spreadsheets into carbon emission workbooks.",
	Long: `
**********************************************
*              CARBON REPORT                 *
**********************************************

This CLI reads supplier spreadsheets (electricity, natural gas, fuel and
refrigerant invoices), pro-rates every invoice into the reporting year,
applies the emission factors stored per year and writes Excel workbooks whose
per-center and total sheets are live formulas over the extended sheet.

Supported input formats:
- Excel: .xlsx, .xlsm, .xls
- CSV: .csv (comma or semicolon, UTF-8 or Windows-1252)
`,
	Example: `
  # Create configuration file
  carbonreport config create

  # Look at a supplier file and the mapping guessed for it
  carbonreport inspect -i Iberdrola_2024.xlsx

  # Export the electricity module with an explicit mapping
  carbonreport export -i Iberdrola_2024.xlsx --type electricity \
    --map center=A --map invoice=C --map provider=D --map start=E --map end=F --map consumption=G \
    --output ./electricidad_2024.xlsx

  # Export using a saved mapping preset
  carbonreport export -i Iberdrola_2024.xlsx --preset iberdrola --output ./electricidad_2024.xlsx

  # Store an emission factor
  carbonreport factors set --type gas --year 2024 --entity "Naturgy" --market 0.182 --location 0.202

  # Merge module workbooks into the general report
  carbonreport general --source electricity=./electricidad_2024.xlsx --source gas=./gas_2024.xlsx --output ./general_2024.xlsx
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.carbonreport.yaml, then ./.carbonreport.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Base directory of the emission factor and CUPS files (overrides data.dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped rows and other details to stderr")

	_ = viper.BindPFlag(config.KeyDataDir, rootCmd.PersistentFlags().Lookup("data-dir"))
}

// requiresConfig reports whether cmd reads settings that must validate
// before it runs. The config commands manage the file itself.
func requiresConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current == configCmd {
			return false
		}
	}
	return cmd != nil && cmd != rootCmd && cmd.Runnable()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".carbonreport" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".carbonreport")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil && verbose {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: carbonreport config create")
	}
}

// newLogger writes engine warnings to stderr; --verbose adds debug detail.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
