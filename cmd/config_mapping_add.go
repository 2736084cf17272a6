package cmd

import (
	"fmt"
	"os"
	"strings"

	"carbonreport/config"
	"carbonreport/energy"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	configMappingAddName     string
	configMappingAddType     string
	configMappingAddTemplate string
	configMappingAddSheet    string
	configMappingAddColumns  []string
)

var configMappingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one saved column mapping.",
	Long: `Store a new entry under mappings in the active config file.

Every --map flag assigns one field to a column, given as a letter (A, AB) or a
zero-based index. Field names follow the energy type:
- electricity, gas: center, cups, invoice, provider, invoice_date, start, end, consumption
- fuel: center, responsible, invoice, provider, invoice_date, start, end, fuel_type, vehicle_type, amount
- refrigerant: center, invoice, provider, invoice_date, start, end, refrigerant_type, quantity`,
	Example: `
  # Save the Iberdrola layout
  carbonreport config mapping add --name iberdrola --type electricity --template "Iberdrola_*.xlsx" \
    --map center=A --map invoice=C --map provider=D --map start=E --map end=F --map consumption=G

  # Save a fuel card layout read from a named sheet
  carbonreport config mapping add --name solred --type fuel --sheet Movimientos \
    --map center=B --map responsible=C --map invoice=A --map provider=D --map invoice_date=E \
    --map fuel_type=F --map vehicle_type=G --map amount=H
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		if _, err := ensureConfigFileWithTemplate(configPath); err != nil {
			return err
		}

		preset, err := buildMappingPreset(configMappingAddName, configMappingAddType, configMappingAddTemplate, configMappingAddSheet, configMappingAddColumns)
		if err != nil {
			return err
		}

		current, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}

		updated, err := appendMappingToConfigYAML(current, preset)
		if err != nil {
			return err
		}

		if err := os.WriteFile(configPath, updated, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		mapping, _ := preset.ColumnMapping()
		fmt.Println("Mapping added successfully.")
		fmt.Printf("Config:   %s\n", configPath)
		fmt.Printf("Name:     %s\n", preset.Name)
		fmt.Printf("Type:     %s\n", preset.EnergyType)
		if preset.FileTemplate != "" {
			fmt.Printf("Template: %s\n", preset.FileTemplate)
		}
		if preset.Sheet != "" {
			fmt.Printf("Sheet:    %s\n", preset.Sheet)
		}
		fmt.Printf("Columns:  %s\n", mapping)
		if missing := mapping.Missing(); len(missing) > 0 {
			fmt.Printf("Warning: required fields without column: %s\n", joinFields(missing))
		}
		return nil
	},
}

// buildMappingPreset turns field=column flags into a preset, storing the
// columns as letters.
func buildMappingPreset(name, energyType, template, sheet string, assignments []string) (config.MappingPreset, error) {
	typ, err := energy.ParseType(energyType)
	if err != nil {
		return config.MappingPreset{}, err
	}
	columns := make(map[string]string, len(assignments))
	for _, raw := range assignments {
		field, index, err := energy.ParseAssignment(typ, raw)
		if err != nil {
			return config.MappingPreset{}, err
		}
		letter, err := columnLetter(index)
		if err != nil {
			return config.MappingPreset{}, err
		}
		columns[string(field)] = letter
	}
	return config.MappingPreset{
		Name:         strings.TrimSpace(name),
		EnergyType:   string(typ),
		FileTemplate: strings.TrimSpace(template),
		Sheet:        strings.TrimSpace(sheet),
		Columns:      columns,
	}, nil
}

func appendMappingToConfigYAML(content []byte, preset config.MappingPreset) ([]byte, error) {
	if strings.TrimSpace(preset.Name) == "" {
		return nil, fmt.Errorf("mapping name is required")
	}
	if strings.TrimSpace(preset.EnergyType) == "" {
		return nil, fmt.Errorf("energy type is required")
	}
	if len(preset.Columns) == 0 {
		return nil, fmt.Errorf("at least one column assignment is required")
	}

	doc := map[string]any{}
	if strings.TrimSpace(string(content)) != "" {
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	mappingsList, err := ensureSliceAny(doc, "mappings")
	if err != nil {
		return nil, err
	}

	for _, existing := range mappingsList {
		mappingMap, ok := existing.(map[string]any)
		if !ok {
			continue
		}
		existingName, _ := mappingMap["name"].(string)
		if strings.EqualFold(strings.TrimSpace(existingName), strings.TrimSpace(preset.Name)) {
			return nil, fmt.Errorf("mapping with name %q already exists", preset.Name)
		}
	}

	columns := make(map[string]any, len(preset.Columns))
	for field, column := range preset.Columns {
		columns[field] = column
	}
	entry := map[string]any{
		"name":        preset.Name,
		"energy_type": preset.EnergyType,
		"columns":     columns,
	}
	if preset.FileTemplate != "" {
		entry["file_template"] = preset.FileTemplate
	}
	if preset.Sheet != "" {
		entry["sheet"] = preset.Sheet
	}
	mappingsList = append(mappingsList, entry)
	doc["mappings"] = mappingsList

	updated, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal updated config yaml: %w", err)
	}
	if _, err := config.ValidateYAMLContent(updated); err != nil {
		return nil, fmt.Errorf("updated config is invalid: %w", err)
	}
	return updated, nil
}

func ensureSliceAny(doc map[string]any, key string) ([]any, error) {
	raw, exists := doc[key]
	if !exists || raw == nil {
		result := []any{}
		doc[key] = result
		return result, nil
	}
	result, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("config key %q must be a list", key)
	}
	return result, nil
}

// ensureMapAny returns the nested map stored under key, creating it.
func ensureMapAny(doc map[string]any, key string) (map[string]any, error) {
	raw, exists := doc[key]
	if !exists || raw == nil {
		result := map[string]any{}
		doc[key] = result
		return result, nil
	}
	result, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config key %q must be a mapping", key)
	}
	return result, nil
}

func init() {
	configMappingCmd.AddCommand(configMappingAddCmd)

	configMappingAddCmd.Flags().StringVar(&configMappingAddName, "name", "", "Unique mapping name")
	configMappingAddCmd.Flags().StringVarP(&configMappingAddType, "type", "t", "", "Energy type: electricity|gas|fuel|refrigerant")
	configMappingAddCmd.Flags().StringVar(&configMappingAddTemplate, "template", "", "File name pattern the mapping applies to (example: Iberdrola_*.xlsx)")
	configMappingAddCmd.Flags().StringVar(&configMappingAddSheet, "sheet", "", "Sheet to read (default: first sheet)")
	configMappingAddCmd.Flags().StringArrayVar(&configMappingAddColumns, "map", nil, "Field to column assignment field=column (repeatable)")

	_ = configMappingAddCmd.MarkFlagRequired("name")
	_ = configMappingAddCmd.MarkFlagRequired("type")
	_ = configMappingAddCmd.MarkFlagRequired("map")
}
