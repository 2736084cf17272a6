package report

import (
	"fmt"
	"strings"

	"carbonreport/energy"
)

// SheetKind is one of the three sheets every module report has.
type SheetKind int

const (
	SheetExtended SheetKind = iota
	SheetPerCenter
	SheetTotal
)

// Column identifies a titled column of the generated sheets.
type Column string

const (
	ColID                Column = "id"
	ColCenter            Column = "center"
	ColCUPS              Column = "cups"
	ColResponsible       Column = "responsible"
	ColInvoice           Column = "invoice"
	ColProvider          Column = "provider"
	ColInvoiceDate       Column = "invoice_date"
	ColStart             Column = "start"
	ColEnd               Column = "end"
	ColFuelType          Column = "fuel_type"
	ColVehicleType       Column = "vehicle_type"
	ColRefrigerantType   Column = "refrigerant_type"
	ColAmount            Column = "amount"
	ColApplicable        Column = "applicable"
	ColFactorMarket      Column = "factor_market"
	ColFactorLocation    Column = "factor_location"
	ColFactor            Column = "factor"
	ColEmissionsMarket   Column = "emissions_market"
	ColEmissionsLocation Column = "emissions_location"
	ColEmissions         Column = "emissions"
	ColModule            Column = "module"
)

// Labels is the localised text used for sheet names and column titles.
type Labels struct {
	Language string
	General  string
	Summary  string
	TotalRow string
	modules  map[energy.Type]string
	kinds    map[SheetKind]string
	columns  map[Column]string
	amounts  map[energy.Field]string
}

var spanish = Labels{
	Language: "es",
	General:  "General",
	Summary:  "Resumen",
	TotalRow: "Total",
	modules: map[energy.Type]string{
		energy.Electricity: "Electricidad",
		energy.Gas:         "Gas",
		energy.Fuel:        "Combustibles",
		energy.Refrigerant: "Refrigerantes",
	},
	kinds: map[SheetKind]string{
		SheetExtended:  "Extendido",
		SheetPerCenter: "Por centro",
		SheetTotal:     "Total",
	},
	columns: map[Column]string{
		ColID:                "Nº",
		ColCenter:            "Centro",
		ColCUPS:              "CUPS",
		ColResponsible:       "Responsable",
		ColInvoice:           "Nº factura",
		ColProvider:          "Proveedor",
		ColInvoiceDate:       "Fecha factura",
		ColStart:             "Fecha inicio",
		ColEnd:               "Fecha fin",
		ColFuelType:          "Tipo combustible",
		ColVehicleType:       "Tipo vehículo",
		ColRefrigerantType:   "Tipo refrigerante",
		ColFactorMarket:      "Factor mercado",
		ColFactorLocation:    "Factor localización",
		ColFactor:            "Factor",
		ColEmissionsMarket:   "Emisiones mercado",
		ColEmissionsLocation: "Emisiones localización",
		ColEmissions:         "Emisiones",
		ColModule:            "Módulo",
	},
	amounts: map[energy.Field]string{
		energy.FieldConsumption: "Consumo",
		energy.FieldAmount:      "Cantidad",
		energy.FieldQuantity:    "Cantidad",
	},
}

var english = Labels{
	Language: "en",
	General:  "General",
	Summary:  "Summary",
	TotalRow: "Total",
	modules: map[energy.Type]string{
		energy.Electricity: "Electricity",
		energy.Gas:         "Gas",
		energy.Fuel:        "Fuel",
		energy.Refrigerant: "Refrigerants",
	},
	kinds: map[SheetKind]string{
		SheetExtended:  "Extended",
		SheetPerCenter: "Per center",
		SheetTotal:     "Total",
	},
	columns: map[Column]string{
		ColID:                "No.",
		ColCenter:            "Center",
		ColCUPS:              "CUPS",
		ColResponsible:       "Responsible",
		ColInvoice:           "Invoice no.",
		ColProvider:          "Provider",
		ColInvoiceDate:       "Invoice date",
		ColStart:             "Start date",
		ColEnd:               "End date",
		ColFuelType:          "Fuel type",
		ColVehicleType:       "Vehicle type",
		ColRefrigerantType:   "Refrigerant type",
		ColFactorMarket:      "Market factor",
		ColFactorLocation:    "Location factor",
		ColFactor:            "Factor",
		ColEmissionsMarket:   "Market emissions",
		ColEmissionsLocation: "Location emissions",
		ColEmissions:         "Emissions",
		ColModule:            "Module",
	},
	amounts: map[energy.Field]string{
		energy.FieldConsumption: "Consumption",
		energy.FieldAmount:      "Amount",
		energy.FieldQuantity:    "Quantity",
	},
}

// LabelsFor returns the bundle for a language code, Spanish by default.
func LabelsFor(language string) Labels {
	if strings.EqualFold(strings.TrimSpace(language), "en") {
		return english
	}
	return spanish
}

// AllLabels lists every bundle, used when reading workbooks that may have
// been generated in another language.
func AllLabels() []Labels {
	return []Labels{spanish, english}
}

func (l Labels) Module(t energy.Type) string {
	if label, ok := l.modules[t]; ok {
		return label
	}
	return string(t)
}

func (l Labels) Kind(kind SheetKind) string {
	return l.kinds[kind]
}

// SheetName is "<Module> - <Kind>", cut to the sheet name limit.
func (l Labels) SheetName(t energy.Type, kind SheetKind) string {
	return truncateSheetName(l.Module(t) + " - " + l.Kind(kind))
}

func (l Labels) SummarySheetName() string {
	return truncateSheetName(l.General + " - " + l.Summary)
}

// Title returns the column title for a module. Quantities carry their unit.
func (l Labels) Title(schema energy.Schema, column Column) string {
	switch column {
	case ColAmount:
		return fmt.Sprintf("%s (%s)", l.amounts[schema.Amount], schema.AmountUnit)
	case ColApplicable:
		if l.Language == "en" {
			return fmt.Sprintf("Applicable %s (%s)", strings.ToLower(l.amounts[schema.Amount]), schema.AmountUnit)
		}
		return fmt.Sprintf("%s aplicable (%s)", l.amounts[schema.Amount], schema.AmountUnit)
	case ColFactorMarket, ColFactorLocation, ColFactor:
		return fmt.Sprintf("%s (%s)", l.columns[column], schema.FactorUnit)
	case ColEmissionsMarket, ColEmissionsLocation, ColEmissions:
		return fmt.Sprintf("%s (%s)", l.columns[column], schema.EmissionUnit)
	}
	if label, ok := l.columns[column]; ok {
		return label
	}
	return string(column)
}

const maxSheetName = 31

func truncateSheetName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxSheetName {
		return name
	}
	return strings.TrimSpace(string(runes[:maxSheetName]))
}
