package cmd

import (
	"errors"
	"strings"
	"testing"

	"carbonreport/config"
	"carbonreport/energy"
	"carbonreport/importer"
)

func exportTestConfig() config.Config {
	return config.Config{
		Mappings: []config.MappingPreset{
			{
				Name:         "iberdrola",
				EnergyType:   "electricity",
				FileTemplate: "Iberdrola_*.xlsx",
				Columns:      map[string]string{"center": "A", "invoice": "C", "provider": "D", "start": "E", "end": "F", "consumption": "G"},
			},
			{
				Name:         "repsol-gas",
				EnergyType:   "gas",
				FileTemplate: "Repsol_*.xlsx",
				Columns:      map[string]string{"center": "A", "invoice": "B", "provider": "C", "start": "D", "end": "E", "consumption": "F"},
			},
		},
	}
}

func TestResolveExportPreset(t *testing.T) {
	t.Parallel()

	cfg := exportTestConfig()
	tests := []struct {
		name       string
		input      string
		preset     string
		energyType string
		wantName   string
		wantFound  bool
		wantErr    bool
	}{
		{name: "template match", input: "/in/Iberdrola_2024.xlsx", wantName: "iberdrola", wantFound: true},
		{name: "explicit name", input: "/in/anything.csv", preset: "REPSOL-GAS", wantName: "repsol-gas", wantFound: true},
		{name: "type filter excludes", input: "/in/Iberdrola_2024.xlsx", energyType: "gas"},
		{name: "type filter keeps", input: "/in/Repsol_01.xlsx", energyType: " GAS ", wantName: "repsol-gas", wantFound: true},
		{name: "no match", input: "/in/Endesa.xlsx"},
		{name: "unknown preset", input: "/in/Endesa.xlsx", preset: "endesa", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			preset, found, err := resolveExportPreset(cfg, tc.input, tc.preset, tc.energyType)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tc.wantFound || preset.Name != tc.wantName {
				t.Fatalf("got preset %q found=%v, want %q found=%v", preset.Name, found, tc.wantName, tc.wantFound)
			}
		})
	}
}

func TestResolveExportMapping_PresetWithOverride(t *testing.T) {
	t.Parallel()

	preset, _ := exportTestConfig().FindMapping("iberdrola")
	mapping, origin, err := resolveExportMapping(preset, true, "", []string{"consumption=H", "cups=B"}, nil)
	if err != nil {
		t.Fatalf("resolve mapping failed: %v", err)
	}
	if origin != "preset iberdrola" {
		t.Fatalf("unexpected origin %q", origin)
	}
	if mapping.Index(energy.FieldConsumption) != 7 || mapping.Index(energy.FieldCUPS) != 1 || mapping.Index(energy.FieldCenter) != 0 {
		t.Fatalf("unexpected mapping: %s", mapping)
	}
}

func TestResolveExportMapping_PresetTypeMismatch(t *testing.T) {
	t.Parallel()

	preset, _ := exportTestConfig().FindMapping("iberdrola")
	_, _, err := resolveExportMapping(preset, true, "fuel", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "not fuel") {
		t.Fatalf("expected type mismatch error, got %v", err)
	}
}

func TestResolveExportMapping_DetectsHeaders(t *testing.T) {
	t.Parallel()

	table := importer.NewTable("gas.csv", "gas", [][]string{
		{"Centro", "Factura", "Comercializadora", "Fecha inicio", "Fecha fin", "Consumo kWh"},
		{"Sede", "F1", "Naturgy", "01/01/2024", "31/01/2024", "1.200"},
	})

	mapping, origin, err := resolveExportMapping(config.MappingPreset{}, false, "gas", nil, table)
	if err != nil {
		t.Fatalf("resolve mapping failed: %v", err)
	}
	if origin != "detected headers" {
		t.Fatalf("unexpected origin %q", origin)
	}
	if !mapping.IsComplete() {
		t.Fatalf("expected complete mapping, missing %v", mapping.Missing())
	}
	if mapping.Index(energy.FieldConsumption) != 5 {
		t.Fatalf("unexpected consumption column: %d", mapping.Index(energy.FieldConsumption))
	}
}

func TestResolveExportMapping_FlagsOnly(t *testing.T) {
	t.Parallel()

	table := importer.NewTable("r.csv", "r", [][]string{{"Centro", "Refrigerante"}})
	mapping, origin, err := resolveExportMapping(config.MappingPreset{}, false, "refrigerant", []string{"center=A", "quantity=2"}, table)
	if err != nil {
		t.Fatalf("resolve mapping failed: %v", err)
	}
	if origin != "flags" {
		t.Fatalf("unexpected origin %q", origin)
	}
	if mapping.Index(energy.FieldRefrigerantType) != -1 {
		t.Fatalf("expected headers to be ignored when --map is given")
	}
	if mapping.Index(energy.FieldQuantity) != 2 {
		t.Fatalf("unexpected quantity column: %d", mapping.Index(energy.FieldQuantity))
	}
}

func TestResolveExportMapping_NeedsTypeOrPreset(t *testing.T) {
	t.Parallel()

	if _, _, err := resolveExportMapping(config.MappingPreset{}, false, "", nil, nil); err == nil {
		t.Fatalf("expected error without type or preset")
	}
}

func TestCheckExportMapping(t *testing.T) {
	t.Parallel()

	sourceErr := errors.New("open excel file: no such file")
	typeOnly, origin, err := resolveExportMapping(config.MappingPreset{}, false, "gas", nil, nil)
	if err != nil {
		t.Fatalf("resolveExportMapping: %v", err)
	}

	tests := []struct {
		name      string
		mapping   energy.ColumnMapping
		sourceErr error
		wantErr   string
	}{
		{name: "unreadable source accepts type only", mapping: typeOnly, sourceErr: sourceErr},
		{name: "readable source needs every field", mapping: typeOnly, wantErr: "column mapping is incomplete"},
		{name: "unknown type still fails", mapping: energy.NewColumnMapping(energy.Type("water"), nil), sourceErr: sourceErr, wantErr: "unsupported energy type"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := checkExportMapping(tc.mapping, origin, tc.sourceErr)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
