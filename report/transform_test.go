package report

import (
	"math"
	"reflect"
	"testing"

	"carbonreport/cups"
	"carbonreport/energy"
	"carbonreport/factors"
)

func TestTransform_Electricity(t *testing.T) {
	t.Parallel()

	table := schemaOrderTable(energy.Electricity,
		// center, cups, invoice, provider, invoice date, start, end, consumption
		[]string{"Centro Norte", "", "F-1", "Iberdrola", "", "01/01/2024", "31/12/2024", "1000"},
		[]string{"", "es 0021 0000 0000 0001 ab", "F-2", "endesa", "", "2024-07-01", "2024-12-31", "500"},
		[]string{"", "", "", "", "", "", "", ""},
		[]string{"Centro Norte", "", "F-3", "Otra Comercializadora", "", "01/01/2024", "31/12/2024", "200"},
		[]string{"", "", "F-4", "Iberdrola", "", "no date", "31/12/2024", "abc"},
	)

	req := Request{
		Mapping: schemaOrderMapping(energy.Electricity),
		Year:    2024,
		Factors: factors.Table{
			factors.Key("Iberdrola", ""): {Entity: "Iberdrola", Year: 2024, Market: 0.2, Location: 0.25},
			factors.Key("Endesa", ""):    {Entity: "Endesa", Year: 2024, Market: 0.3, Location: 0.25},
		},
		LocationFallback: 0.25,
		Centers: map[string]cups.Entry{
			cups.Key("ES0021000000000001AB"): {CUPS: "ES0021000000000001AB", CenterName: "Centro Sur"},
		},
	}

	rows, stats, err := Transform(req, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if stats.RowsRead != 5 || stats.RowsWritten != 4 || stats.RowsSkipped != 1 {
		t.Fatalf("unexpected row counters: %+v", stats)
	}
	if stats.InvalidDates != 1 || stats.InvalidAmounts != 1 {
		t.Fatalf("unexpected invalid counters: %+v", stats)
	}
	if want := []string{"Centro Norte", "Centro Sur", "F-4"}; !reflect.DeepEqual(stats.Centers, want) {
		t.Fatalf("unexpected centers: %#v", stats.Centers)
	}
	if want := []string{"Otra Comercializadora"}; !reflect.DeepEqual(stats.UnmatchedEntities, want) {
		t.Fatalf("unexpected unmatched entities: %#v", stats.UnmatchedEntities)
	}

	first := rows[0]
	assertClose(t, "applicable", first.Applicable, 1000)
	assertClose(t, "market", first.Market, 0.2)
	assertClose(t, "location", first.Location, 0.25)

	second := rows[1]
	if second.Center != "Centro Sur" {
		t.Fatalf("expected center from CUPS registry, got %q", second.Center)
	}
	assertClose(t, "market", second.Market, 500*0.3/1000)

	unmatched := rows[2]
	if unmatched.Matched {
		t.Fatalf("expected unmatched factor")
	}
	assertClose(t, "market", unmatched.Market, 0)
	assertClose(t, "location", unmatched.Location, 200*0.25/1000)

	broken := rows[3]
	if broken.AmountOK || broken.Applicable != 0 || broken.Market != 0 {
		t.Fatalf("expected zero-valued row for unparsable input, got %+v", broken)
	}
}

func TestTransform_FuelUsesInvoiceDateAndQualifier(t *testing.T) {
	t.Parallel()

	table := schemaOrderTable(energy.Fuel,
		// center, responsible, invoice, provider, invoice date, start, end, fuel, vehicle, amount
		[]string{"Flota", "Ana", "C-1", "Repsol", "10/03/2024", "", "", "Gasóleo A", "Turismo", "50"},
		[]string{"Flota", "Ana", "C-2", "Repsol", "10/03/2024", "", "", "Gasóleo A", "Furgoneta", "40"},
		[]string{"Flota", "Ana", "C-3", "Repsol", "15/12/2023", "", "", "Gasóleo A", "Turismo", "30"},
	)
	req := Request{
		Mapping: schemaOrderMapping(energy.Fuel),
		Year:    2024,
		Factors: factors.Table{
			factors.Key("Gasoleo A", "turismo"): {Entity: "Gasóleo A", Qualifier: "Turismo", Market: 2.5, Location: 2.5},
			factors.Key("Gasoleo A", ""):        {Entity: "Gasóleo A", Market: 2.0, Location: 2.0},
		},
	}

	rows, _, err := Transform(req, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	assertClose(t, "qualified", rows[0].Market, 50*2.5/1000)
	assertClose(t, "fallback to fuel only", rows[1].Market, 40*2.0/1000)
	if rows[1].Location != rows[1].Market {
		t.Fatalf("single-factor modules report the same emissions twice")
	}
	assertClose(t, "previous year", rows[2].Applicable, 0)
}

func TestTransform_InvoiceFilter(t *testing.T) {
	t.Parallel()

	table := schemaOrderTable(energy.Refrigerant,
		[]string{"Sede", "R-1", "Frio SL", "01/06/2024", "", "", "R-410A", "3"},
		[]string{"Sede", "R-2", "Frio SL", "01/06/2024", "", "", "R-410A", "2"},
	)
	req := Request{
		Mapping:       schemaOrderMapping(energy.Refrigerant),
		Year:          2024,
		ValidInvoices: []string{" r-2 "},
	}

	rows, stats, err := Transform(req, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(rows) != 1 || rows[0].Values[energy.FieldInvoice] != "R-2" {
		t.Fatalf("expected only invoice R-2, got %+v", rows)
	}
	if stats.RowsFiltered != 1 {
		t.Fatalf("expected 1 filtered row, got %d", stats.RowsFiltered)
	}
}

func TestTransform_NoCenterLabel(t *testing.T) {
	t.Parallel()

	mapping := schemaOrderMapping(energy.Gas).With(energy.FieldInvoice, -1)
	table := schemaOrderTable(energy.Gas,
		[]string{"", "", "", "Naturgy", "", "01/01/2024", "31/01/2024", "100"},
	)

	rows, _, err := Transform(Request{Mapping: mapping, Year: 2024, NoCenterLabel: "SIN CENTRO"}, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if rows[0].Center != "SIN CENTRO" {
		t.Fatalf("expected placeholder center, got %q", rows[0].Center)
	}
}

func TestTransform_GroupsCenterSpellings(t *testing.T) {
	t.Parallel()

	table := schemaOrderTable(energy.Gas,
		[]string{"Centro A", "", "G-1", "Naturgy", "", "01/01/2024", "31/12/2024", "10"},
		[]string{"CENTRO  A", "", "G-2", "Naturgy", "", "01/01/2024", "31/12/2024", "20"},
		[]string{"Centró a", "", "G-3", "Naturgy", "", "01/01/2024", "31/12/2024", "30"},
		[]string{"Centro B", "", "G-4", "Naturgy", "", "01/01/2024", "31/12/2024", "40"},
	)

	rows, stats, err := Transform(Request{Mapping: schemaOrderMapping(energy.Gas), Year: 2024}, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if want := []string{"Centro A", "Centro B"}; !reflect.DeepEqual(stats.Centers, want) {
		t.Fatalf("unexpected centers: %#v", stats.Centers)
	}
	for _, row := range rows[:3] {
		if row.Center != "Centro A" {
			t.Fatalf("row %d: expected first spelling, got %q", row.SourceRow, row.Center)
		}
	}
}

func TestTransform_UnmappedCenterColumn(t *testing.T) {
	t.Parallel()

	mapping := schemaOrderMapping(energy.Electricity).With(energy.FieldCenter, -1)
	if err := mapping.Validate(); err != nil {
		t.Fatalf("center must be optional for electricity: %v", err)
	}
	table := schemaOrderTable(energy.Electricity,
		[]string{"ignored", "ES0021000000000001AB", "F-1", "Iberdrola", "", "01/01/2024", "31/12/2024", "100"},
		[]string{"ignored", "ES0099000000000009ZZ", "F-2", "Iberdrola", "", "01/01/2024", "31/12/2024", "200"},
	)
	req := Request{
		Mapping: mapping,
		Year:    2024,
		Centers: map[string]cups.Entry{
			cups.Key("ES0021000000000001AB"): {CUPS: "ES0021000000000001AB", CenterName: "Centro Sur"},
		},
	}

	rows, stats, err := Transform(req, table)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if rows[0].Center != "Centro Sur" {
		t.Fatalf("expected center from CUPS registry, got %q", rows[0].Center)
	}
	if rows[1].Center != "F-2" {
		t.Fatalf("expected invoice number as center, got %q", rows[1].Center)
	}
	if want := []string{"Centro Sur", "F-2"}; !reflect.DeepEqual(stats.Centers, want) {
		t.Fatalf("unexpected centers: %#v", stats.Centers)
	}
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}
