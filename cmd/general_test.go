package cmd

import (
	"reflect"
	"testing"

	"carbonreport/energy"
	"carbonreport/report"
)

func TestParseGeneralSources(t *testing.T) {
	t.Parallel()

	sources, err := parseGeneralSources(
		[]string{"electricidad=out/elec.xlsx", "fuel= out/fuel.xlsx "},
		[]string{"fuel=Combustibles - Total", "combustibles=Combustibles - Extendido"},
	)
	if err != nil {
		t.Fatalf("parse sources failed: %v", err)
	}

	want := []report.GeneralSource{
		{Type: energy.Electricity, Path: "out/elec.xlsx"},
		{Type: energy.Fuel, Path: "out/fuel.xlsx", Sheets: []string{"Combustibles - Total", "Combustibles - Extendido"}},
	}
	if !reflect.DeepEqual(sources, want) {
		t.Fatalf("unexpected sources:\n got %+v\nwant %+v", sources, want)
	}
}

func TestParseGeneralSources_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []string
		sheets  []string
	}{
		{name: "no sources"},
		{name: "missing path", sources: []string{"gas="}},
		{name: "missing separator", sources: []string{"gas.xlsx"}},
		{name: "unknown type", sources: []string{"water=w.xlsx"}},
		{name: "duplicate type", sources: []string{"gas=a.xlsx", "GAS=b.xlsx"}},
		{name: "sheet without source", sources: []string{"gas=a.xlsx"}, sheets: []string{"fuel=Total"}},
		{name: "empty sheet", sources: []string{"gas=a.xlsx"}, sheets: []string{"gas= "}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := parseGeneralSources(tc.sources, tc.sheets); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
