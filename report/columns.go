package report

import "carbonreport/energy"

var fieldColumns = map[energy.Field]Column{
	energy.FieldCenter:          ColCenter,
	energy.FieldCUPS:            ColCUPS,
	energy.FieldResponsible:     ColResponsible,
	energy.FieldInvoice:         ColInvoice,
	energy.FieldProvider:        ColProvider,
	energy.FieldInvoiceDate:     ColInvoiceDate,
	energy.FieldStart:           ColStart,
	energy.FieldEnd:             ColEnd,
	energy.FieldFuelType:        ColFuelType,
	energy.FieldVehicleType:     ColVehicleType,
	energy.FieldRefrigerantType: ColRefrigerantType,
}

// DetailColumns is the layout of the extended sheet: sequence number and
// center first, then the input fields in schema order, then the computed
// columns.
func DetailColumns(schema energy.Schema) []Column {
	columns := []Column{ColID, ColCenter}
	for _, field := range schema.Fields {
		switch {
		case field == energy.FieldCenter:
		case field == schema.Amount:
			columns = append(columns, ColAmount)
		default:
			columns = append(columns, fieldColumns[field])
		}
	}
	columns = append(columns, ColApplicable)
	if schema.DualFactor {
		return append(columns, ColFactorMarket, ColFactorLocation, ColEmissionsMarket, ColEmissionsLocation)
	}
	return append(columns, ColFactor, ColEmissions)
}

// MetricColumns are the quantities summed per center and in the total.
func MetricColumns(schema energy.Schema) []Column {
	if schema.DualFactor {
		return []Column{ColApplicable, ColEmissionsMarket, ColEmissionsLocation}
	}
	return []Column{ColApplicable, ColEmissions}
}

func isDateColumn(column Column) bool {
	return column == ColInvoiceDate || column == ColStart || column == ColEnd
}

func isFactorColumn(column Column) bool {
	return column == ColFactorMarket || column == ColFactorLocation || column == ColFactor
}

func isEmissionColumn(column Column) bool {
	return column == ColEmissionsMarket || column == ColEmissionsLocation || column == ColEmissions
}
