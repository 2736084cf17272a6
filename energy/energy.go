package energy

import (
	"fmt"
	"strings"
)

// Type identifies one reporting module.
type Type string

const (
	Electricity Type = "electricity"
	Gas         Type = "gas"
	Fuel        Type = "fuel"
	Refrigerant Type = "refrigerant"
)

// Field is a logical input column the user maps to a spreadsheet column.
type Field string

const (
	FieldCenter          Field = "center"
	FieldCUPS            Field = "cups"
	FieldResponsible     Field = "responsible"
	FieldInvoice         Field = "invoice"
	FieldProvider        Field = "provider"
	FieldInvoiceDate     Field = "invoice_date"
	FieldStart           Field = "start"
	FieldEnd             Field = "end"
	FieldConsumption     Field = "consumption"
	FieldFuelType        Field = "fuel_type"
	FieldVehicleType     Field = "vehicle_type"
	FieldAmount          Field = "amount"
	FieldRefrigerantType Field = "refrigerant_type"
	FieldQuantity        Field = "quantity"
)

func Types() []Type {
	return []Type{Electricity, Gas, Fuel, Refrigerant}
}

func SupportedTypeNames() []string {
	return []string{string(Electricity), string(Gas), string(Fuel), string(Refrigerant)}
}

// ParseType accepts the canonical names plus the Spanish module names used
// in older configuration files.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "electricity", "electricidad", "elec":
		return Electricity, nil
	case "gas":
		return Gas, nil
	case "fuel", "combustible", "combustibles":
		return Fuel, nil
	case "refrigerant", "refrigerants", "refrigerante", "refrigerantes":
		return Refrigerant, nil
	default:
		return "", fmt.Errorf("unsupported energy type: %s (supported: %s)", name, strings.Join(SupportedTypeNames(), ", "))
	}
}
