package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"carbonreport/energy"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDataDir             = "data.dir"
	KeyReportYear          = "report.year"
	KeyReportLanguage      = "report.language"
	KeyReportNoCenterLabel = "report.no_center_label"
	KeyMappings            = "mappings"

	DefaultDataDir       = "./data"
	DefaultLanguage      = "es"
	DefaultNoCenterLabel = "NO_CENTER"
)

var validate = validator.New()

type Config struct {
	Data     DataConfig      `mapstructure:"data"`
	Report   ReportConfig    `mapstructure:"report"`
	Mappings []MappingPreset `mapstructure:"mappings"`
}

type DataConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

type ReportConfig struct {
	Year          int    `mapstructure:"year" validate:"gte=1990,lte=2100"`
	Language      string `mapstructure:"language" validate:"oneof=es en"`
	NoCenterLabel string `mapstructure:"no_center_label" validate:"required"`
}

// MappingPreset is a saved column mapping. Columns values are zero-based
// indexes or spreadsheet letters.
type MappingPreset struct {
	Name         string            `mapstructure:"name" yaml:"name"`
	EnergyType   string            `mapstructure:"energy_type" yaml:"energy_type"`
	FileTemplate string            `mapstructure:"file_template" yaml:"file_template,omitempty"`
	Sheet        string            `mapstructure:"sheet" yaml:"sheet,omitempty"`
	Columns      map[string]string `mapstructure:"columns" yaml:"columns"`
}

func (p MappingPreset) Type() (energy.Type, error) {
	return energy.ParseType(p.EnergyType)
}

// ColumnMapping converts the preset into a mapping for its energy type. The
// result may still be incomplete; callers validate before exporting.
func (p MappingPreset) ColumnMapping() (energy.ColumnMapping, error) {
	typ, err := p.Type()
	if err != nil {
		return energy.ColumnMapping{}, err
	}
	columns := make(map[energy.Field]int, len(p.Columns))
	for name, ref := range p.Columns {
		field, err := energy.ParseField(typ, name)
		if err != nil {
			return energy.ColumnMapping{}, err
		}
		index, err := energy.ParseColumnRef(ref)
		if err != nil {
			return energy.ColumnMapping{}, fmt.Errorf("column for %s: %w", field, err)
		}
		columns[field] = index
	}
	return energy.NewColumnMapping(typ, columns), nil
}

// FindMapping looks a preset up by name, case-insensitively.
func (c Config) FindMapping(name string) (MappingPreset, bool) {
	for _, preset := range c.Mappings {
		if strings.EqualFold(strings.TrimSpace(preset.Name), strings.TrimSpace(name)) {
			return preset, true
		}
	}
	return MappingPreset{}, false
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return ExampleYAMLFor(DefaultDataDir, time.Now().Year(), DefaultLanguage)
}

// ExampleYAMLFor renders the configuration template with the given data
// directory, report year and language, keeping the explanatory comments.
func ExampleYAMLFor(dataDir string, year int, language string) string {
	return fmt.Sprintf(`# carbonreport configuration
data:
  # Emission factor and CUPS files live below this directory:
  #   <dir>/<year>/electricity_factors.csv, gas_factors.csv, ...
  #   <dir>/cups_centers.csv
  dir: %q

report:
  year: %d
  language: "%s"
  no_center_label: "%s"

# Saved column mappings. Columns accept zero-based indexes or letters.
#
# mappings:
#   - name: "iberdrola"
#     energy_type: "electricity"
#     file_template: "Iberdrola_*.xlsx"
#     columns:
#       center: A
#       cups: B
#       invoice: C
#       provider: D
#       start: E
#       end: F
#       consumption: G
mappings: []
`, dataDir, year, language, DefaultNoCenterLabel)
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Report.Language = strings.ToLower(strings.TrimSpace(cfg.Report.Language))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateMappings(cfg.Mappings); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, DefaultDataDir)
	v.SetDefault(KeyReportYear, time.Now().Year())
	v.SetDefault(KeyReportLanguage, DefaultLanguage)
	v.SetDefault(KeyReportNoCenterLabel, DefaultNoCenterLabel)
	v.SetDefault(KeyMappings, []map[string]any{})
}

func validateMappings(presets []MappingPreset) error {
	seen := make(map[string]struct{}, len(presets))
	for i, preset := range presets {
		name := strings.TrimSpace(preset.Name)
		if name == "" {
			return fmt.Errorf("validation failed: mappings[%d].name is required", i)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate mapping name %q", name)
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(preset.EnergyType) == "" {
			return fmt.Errorf("validation failed: mappings[%d].energy_type is required", i)
		}
		if _, err := preset.Type(); err != nil {
			return fmt.Errorf(
				"validation failed: mappings[%d].energy_type %q is not supported (valid: %s)",
				i,
				preset.EnergyType,
				strings.Join(energy.SupportedTypeNames(), ", "),
			)
		}
		if len(preset.Columns) == 0 {
			return fmt.Errorf("validation failed: mappings[%d].columns must not be empty", i)
		}
		if _, err := preset.ColumnMapping(); err != nil {
			return fmt.Errorf("validation failed: mappings[%d]: %w", i, err)
		}
	}
	return nil
}

// SortedColumns returns the preset columns ordered by field name for stable
// output.
func (p MappingPreset) SortedColumns() []string {
	keys := make([]string, 0, len(p.Columns))
	for key := range p.Columns {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = key + "=" + p.Columns[key]
	}
	return lines
}
