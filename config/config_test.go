package config

import (
	"strings"
	"testing"

	"carbonreport/energy"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Data.Dir != DefaultDataDir {
		t.Fatalf("unexpected data dir: %q", cfg.Data.Dir)
	}
	if cfg.Report.Language != "es" || cfg.Report.NoCenterLabel != "NO_CENTER" {
		t.Fatalf("unexpected report defaults: %+v", cfg.Report)
	}
}

func TestExampleYAMLFor_SeedsValues(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAMLFor(`C:\carbon\datos`, 2023, "en")))
	if err != nil {
		t.Fatalf("expected seeded example to validate: %v", err)
	}
	if cfg.Data.Dir != `C:\carbon\datos` {
		t.Fatalf("unexpected data dir: %q", cfg.Data.Dir)
	}
	if cfg.Report.Year != 2023 || cfg.Report.Language != "en" {
		t.Fatalf("unexpected report values: %+v", cfg.Report)
	}
}

func TestValidateYAMLContent_RejectsUnsupportedEnergyType(t *testing.T) {
	t.Parallel()

	content := []byte(`report:
  year: 2025
mappings:
  - name: "iberdrola"
    energy_type: "water"
    columns:
      center: A
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected validation error for unsupported energy type")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	content := []byte(`mappings:
  - name: "repsol"
    energy_type: "gas"
    columns:
      vehicle_type: C
`)

	_, err := ValidateYAMLContent(content)
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestValidateYAMLContent_RejectsDuplicateMappingNames(t *testing.T) {
	t.Parallel()

	content := []byte(`mappings:
  - name: "endesa"
    energy_type: "electricity"
    columns: {center: A}
  - name: "Endesa"
    energy_type: "gas"
    columns: {center: A}
`)

	_, err := ValidateYAMLContent(content)
	if err == nil || !strings.Contains(err.Error(), "duplicate mapping name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestValidateYAMLContent_RejectsUnsupportedLanguage(t *testing.T) {
	t.Parallel()

	if _, err := ValidateYAMLContent([]byte("report:\n  language: fr\n")); err == nil {
		t.Fatalf("expected validation error for language fr")
	}
}

func TestValidateYAMLContent_RejectsYearOutOfRange(t *testing.T) {
	t.Parallel()

	if _, err := ValidateYAMLContent([]byte("report:\n  year: 25\n")); err == nil {
		t.Fatalf("expected validation error for year 25")
	}
}

func TestMappingPreset_ColumnMapping(t *testing.T) {
	t.Parallel()

	content := []byte(`report:
  language: EN
mappings:
  - name: "fleet"
    energy_type: "combustible"
    file_template: "Solred_*.xlsx"
    columns:
      center: 0
      responsible: B
      invoice: c
      provider: 3
      invoice_date: E
      fuel_type: F
      vehicle_type: G
      amount: H
`)

	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Report.Language != "en" {
		t.Fatalf("expected language to be normalised, got %q", cfg.Report.Language)
	}

	preset, ok := cfg.FindMapping("FLEET")
	if !ok {
		t.Fatalf("expected to find preset by name")
	}
	mapping, err := preset.ColumnMapping()
	if err != nil {
		t.Fatalf("ColumnMapping returned error: %v", err)
	}
	if mapping.Type() != energy.Fuel {
		t.Fatalf("unexpected type: %s", mapping.Type())
	}
	if !mapping.IsComplete() {
		t.Fatalf("expected complete mapping, missing %v", mapping.Missing())
	}
	if mapping.Index(energy.FieldInvoice) != 2 || mapping.Index(energy.FieldAmount) != 7 {
		t.Fatalf("unexpected indexes: %s", mapping)
	}
}
