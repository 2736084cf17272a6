package cmd

import (
	"strings"
	"testing"

	"carbonreport/config"
)

const mappingConfigYAML = `data:
  dir: "./data"
report:
  year: 2024
  language: "es"
  no_center_label: "NO_CENTER"
mappings:
  - name: "iberdrola"
    energy_type: "electricity"
    file_template: "Iberdrola_*.xlsx"
    columns:
      center: A
      invoice: C
      provider: D
      start: E
      end: F
      consumption: G
`

func TestAppendMappingToConfigYAML_AppendsMapping(t *testing.T) {
	t.Parallel()

	preset, err := buildMappingPreset("solred", "fuel", "Solred_*.xlsx", "Movimientos", []string{
		"center=B", "responsible=C", "invoice=0", "provider=D", "invoice_date=E",
		"fuel_type=F", "vehicle_type=G", "amount=H",
	})
	if err != nil {
		t.Fatalf("build preset failed: %v", err)
	}

	updated, err := appendMappingToConfigYAML([]byte(mappingConfigYAML), preset)
	if err != nil {
		t.Fatalf("append mapping failed: %v", err)
	}

	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if len(cfg.Mappings) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(cfg.Mappings))
	}
	last := cfg.Mappings[1]
	if last.Name != "solred" || last.EnergyType != "fuel" || last.FileTemplate != "Solred_*.xlsx" || last.Sheet != "Movimientos" {
		t.Fatalf("unexpected last mapping: %+v", last)
	}
	if last.Columns["invoice"] != "A" || last.Columns["amount"] != "H" {
		t.Fatalf("expected columns stored as letters, got %v", last.Columns)
	}
	if cfg.Report.Year != 2024 {
		t.Fatalf("expected report section to survive, got year %d", cfg.Report.Year)
	}
}

func TestAppendMappingToConfigYAML_DuplicateName(t *testing.T) {
	t.Parallel()

	_, err := appendMappingToConfigYAML([]byte(mappingConfigYAML), config.MappingPreset{
		Name:       "IBERDROLA",
		EnergyType: "gas",
		Columns:    map[string]string{"center": "A"},
	})
	if err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAppendMappingToConfigYAML_EmptyConfig(t *testing.T) {
	t.Parallel()

	updated, err := appendMappingToConfigYAML(nil, config.MappingPreset{
		Name:       "gas",
		EnergyType: "gas",
		Columns:    map[string]string{"center": "A", "consumption": "F"},
	})
	if err != nil {
		t.Fatalf("append mapping failed: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if len(cfg.Mappings) != 1 || cfg.Data.Dir != config.DefaultDataDir {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestBuildMappingPreset_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		energyType  string
		assignments []string
	}{
		{name: "unknown type", energyType: "water", assignments: []string{"center=A"}},
		{name: "field of another type", energyType: "electricity", assignments: []string{"fuel_type=A"}},
		{name: "missing separator", energyType: "gas", assignments: []string{"center"}},
		{name: "bad column", energyType: "gas", assignments: []string{"center=#"}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := buildMappingPreset("x", tc.energyType, "", "", tc.assignments); err == nil {
				t.Fatalf("expected error for %v", tc.assignments)
			}
		})
	}
}
