package cmd

import (
	"testing"

	"carbonreport/config"
)

func TestSetYearInConfigYAML_KeepsOtherSettings(t *testing.T) {
	t.Parallel()

	updated, err := setYearInConfigYAML([]byte(mappingConfigYAML), 2023)
	if err != nil {
		t.Fatalf("set year failed: %v", err)
	}

	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if cfg.Report.Year != 2023 {
		t.Fatalf("expected year 2023, got %d", cfg.Report.Year)
	}
	if cfg.Report.NoCenterLabel != "NO_CENTER" || len(cfg.Mappings) != 1 {
		t.Fatalf("expected other settings to survive: %+v", cfg)
	}
}

func TestSetYearInConfigYAML_CreatesReportSection(t *testing.T) {
	t.Parallel()

	updated, err := setYearInConfigYAML([]byte("data:\n  dir: \"/srv/factors\"\n"), 2022)
	if err != nil {
		t.Fatalf("set year failed: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(updated)
	if err != nil {
		t.Fatalf("updated yaml should validate: %v", err)
	}
	if cfg.Report.Year != 2022 || cfg.Data.Dir != "/srv/factors" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSetYearInConfigYAML_RejectsOutOfRange(t *testing.T) {
	t.Parallel()

	if _, err := setYearInConfigYAML([]byte(mappingConfigYAML), 1800); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSetYearInConfigYAML_ReportMustBeMapping(t *testing.T) {
	t.Parallel()

	if _, err := setYearInConfigYAML([]byte("report: 2024\n"), 2024); err == nil {
		t.Fatalf("expected error for scalar report section")
	}
}
