package energy

import "fmt"

// Schema describes the input fields of one module and how its rows turn
// into emissions. The four modules share one engine and differ only here.
type Schema struct {
	Type     Type
	Fields   []Field
	Required []Field

	// Entity is the field whose value keys the emission factor lookup.
	Entity Field
	// Qualifier optionally narrows the factor lookup (vehicle type for fuel).
	Qualifier Field
	// Amount is the consumed quantity that gets pro-rated into the year.
	Amount Field

	AmountUnit   string
	FactorUnit   string
	EmissionUnit string

	// DualFactor is set when the module reports market- and location-based
	// emissions separately.
	DualFactor bool
	// Divisor converts factor units into EmissionUnit (kg -> t).
	Divisor float64

	// Aliases are header labels recognised when guessing a mapping.
	Aliases map[Field][]string
}

var commonAliases = map[Field][]string{
	FieldCenter:          {"centro", "center", "centre", "nombre centro", "edificio", "sede"},
	FieldCUPS:            {"cups", "codigo cups", "cups code"},
	FieldResponsible:     {"responsable", "responsible", "conductor", "titular"},
	FieldInvoice:         {"factura", "nº factura", "n factura", "numero factura", "número de factura", "invoice", "invoice number", "invoice no"},
	FieldProvider:        {"proveedor", "comercializadora", "empresa", "emisora", "provider", "supplier", "marketer", "trading company"},
	FieldInvoiceDate:     {"fecha factura", "fecha emision", "fecha de factura", "invoice date", "issue date"},
	FieldStart:           {"fecha inicio", "inicio", "desde", "fecha desde", "start", "start date", "period start"},
	FieldEnd:             {"fecha fin", "fin", "hasta", "fecha hasta", "end", "end date", "period end"},
	FieldConsumption:     {"consumo", "consumo kwh", "consumo (kwh)", "kwh", "energia", "consumption", "consumption kwh"},
	FieldFuelType:        {"tipo combustible", "combustible", "producto", "fuel", "fuel type"},
	FieldVehicleType:     {"tipo vehiculo", "vehiculo", "vehicle", "vehicle type"},
	FieldAmount:          {"litros", "cantidad", "importe litros", "liters", "litres", "amount", "quantity"},
	FieldRefrigerantType: {"tipo refrigerante", "refrigerante", "gas refrigerante", "refrigerant", "refrigerant type"},
	FieldQuantity:        {"cantidad", "kg", "carga", "cantidad (kg)", "quantity", "charge"},
}

var schemas = map[Type]Schema{
	Electricity: {
		Type:         Electricity,
		Fields:       []Field{FieldCenter, FieldCUPS, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldStart, FieldEnd, FieldConsumption},
		Required:     []Field{FieldInvoice, FieldProvider, FieldStart, FieldEnd, FieldConsumption},
		Entity:       FieldProvider,
		Amount:       FieldConsumption,
		AmountUnit:   "kWh",
		FactorUnit:   "kgCO2e/kWh",
		EmissionUnit: "tCO2e",
		DualFactor:   true,
		Divisor:      1000,
	},
	Gas: {
		Type:         Gas,
		Fields:       []Field{FieldCenter, FieldCUPS, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldStart, FieldEnd, FieldConsumption},
		Required:     []Field{FieldInvoice, FieldProvider, FieldStart, FieldEnd, FieldConsumption},
		Entity:       FieldProvider,
		Amount:       FieldConsumption,
		AmountUnit:   "kWh",
		FactorUnit:   "kgCO2e/kWh",
		EmissionUnit: "tCO2e",
		DualFactor:   true,
		Divisor:      1000,
	},
	Fuel: {
		Type:         Fuel,
		Fields:       []Field{FieldCenter, FieldResponsible, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldStart, FieldEnd, FieldFuelType, FieldVehicleType, FieldAmount},
		Required:     []Field{FieldCenter, FieldResponsible, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldFuelType, FieldVehicleType, FieldAmount},
		Entity:       FieldFuelType,
		Qualifier:    FieldVehicleType,
		Amount:       FieldAmount,
		AmountUnit:   "l",
		FactorUnit:   "kgCO2e/l",
		EmissionUnit: "tCO2e",
		Divisor:      1000,
	},
	Refrigerant: {
		Type:         Refrigerant,
		Fields:       []Field{FieldCenter, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldStart, FieldEnd, FieldRefrigerantType, FieldQuantity},
		Required:     []Field{FieldCenter, FieldInvoice, FieldProvider, FieldInvoiceDate, FieldRefrigerantType, FieldQuantity},
		Entity:       FieldRefrigerantType,
		Amount:       FieldQuantity,
		AmountUnit:   "kg",
		FactorUnit:   "kgCO2e/kg",
		EmissionUnit: "tCO2e",
		Divisor:      1000,
	},
}

func SchemaFor(t Type) (Schema, error) {
	schema, ok := schemas[t]
	if !ok {
		return Schema{}, fmt.Errorf("unsupported energy type: %s", t)
	}
	schema.Aliases = make(map[Field][]string, len(schema.Fields))
	for _, field := range schema.Fields {
		schema.Aliases[field] = commonAliases[field]
	}
	return schema, nil
}

// MustSchema is SchemaFor for the package-level constants.
func MustSchema(t Type) Schema {
	schema, err := SchemaFor(t)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s Schema) HasField(field Field) bool {
	for _, candidate := range s.Fields {
		if candidate == field {
			return true
		}
	}
	return false
}

func (s Schema) IsRequired(field Field) bool {
	for _, candidate := range s.Required {
		if candidate == field {
			return true
		}
	}
	return false
}
