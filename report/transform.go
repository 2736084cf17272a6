package report

import (
	"log/slog"
	"time"

	"carbonreport/cups"
	"carbonreport/energy"
	"carbonreport/factors"
	"carbonreport/importer"
	"carbonreport/internal/parse"
	"carbonreport/internal/textnorm"
)

// DetailRow is one accepted source row and the values computed from it.
type DetailRow struct {
	SourceRow   int
	Center      string
	Values      map[energy.Field]string
	InvoiceDate time.Time
	Start       time.Time
	End         time.Time
	Amount      float64
	AmountOK    bool
	Applicable  float64
	Factor      factors.Entry
	Matched     bool
	Market      float64
	Location    float64
}

// Stats counts what happened to the source rows.
type Stats struct {
	RowsRead          int
	RowsWritten       int
	RowsSkipped       int
	RowsFiltered      int
	InvalidDates      int
	InvalidAmounts    int
	Centers           []string
	UnmatchedEntities []string
}

type transformer struct {
	schema        energy.Schema
	mapping       energy.ColumnMapping
	year          int
	factors       factors.Table
	fallback      float64
	centers       map[string]cups.Entry
	validInvoices map[string]struct{}
	noCenter      string
	logger        *slog.Logger

	stats      Stats
	// seenCenter maps the folded center name to its first spelling.
	seenCenter map[string]string
	seenEntity map[string]struct{}
}

// Transform turns the data rows of table into detail rows. Rows that fail
// to parse still produce a row with zero applicable amount; blank rows and
// rows outside the invoice filter are dropped.
func Transform(req Request, table *importer.Table) ([]DetailRow, Stats, error) {
	schema, err := energy.SchemaFor(req.Mapping.Type())
	if err != nil {
		return nil, Stats{}, err
	}

	t := &transformer{
		schema:     schema,
		mapping:    req.Mapping,
		year:       req.Year,
		factors:    req.Factors,
		fallback:   req.LocationFallback,
		centers:    req.Centers,
		noCenter:   req.noCenterLabel(),
		logger:     req.logger(),
		seenCenter: make(map[string]string),
		seenEntity: make(map[string]struct{}),
	}
	if len(req.ValidInvoices) > 0 {
		t.validInvoices = make(map[string]struct{}, len(req.ValidInvoices))
		for _, invoice := range req.ValidInvoices {
			if key := textnorm.Fold(invoice); key != "" {
				t.validInvoices[key] = struct{}{}
			}
		}
	}

	if table == nil {
		return []DetailRow{}, t.stats, nil
	}

	rows := make([]DetailRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		t.stats.RowsRead++
		detail, ok := t.transformRow(row)
		if !ok {
			continue
		}
		rows = append(rows, detail)
		t.stats.RowsWritten++
	}
	return rows, t.stats, nil
}

func (t *transformer) transformRow(row importer.Row) (DetailRow, bool) {
	if row.IsBlank() {
		t.stats.RowsSkipped++
		return DetailRow{}, false
	}

	values := make(map[energy.Field]string, len(t.schema.Fields))
	for _, field := range t.schema.Fields {
		values[field] = textnorm.Clean(row.Cell(t.mapping.Index(field)))
	}

	if t.validInvoices != nil {
		if _, ok := t.validInvoices[textnorm.Fold(values[energy.FieldInvoice])]; !ok {
			t.stats.RowsFiltered++
			t.logger.Debug("row filtered by invoice list", "row", row.Number, "invoice", values[energy.FieldInvoice])
			return DetailRow{}, false
		}
	}

	detail := DetailRow{SourceRow: row.Number, Values: values}

	invalidDate := false
	readDate := func(field energy.Field) time.Time {
		text := values[field]
		if text == "" {
			return time.Time{}
		}
		parsed, ok := parse.Date(text)
		if !ok {
			invalidDate = true
			return time.Time{}
		}
		return parsed
	}
	detail.InvoiceDate = readDate(energy.FieldInvoiceDate)
	detail.Start = readDate(energy.FieldStart)
	detail.End = readDate(energy.FieldEnd)
	if invalidDate {
		t.stats.InvalidDates++
		t.logger.Debug("unparsable date", "row", row.Number)
	}

	start, end := detail.Start, detail.End
	if !t.schema.IsRequired(energy.FieldStart) && values[energy.FieldStart] == "" && values[energy.FieldEnd] == "" {
		start, end = detail.InvoiceDate, detail.InvoiceDate
	}

	detail.Amount, detail.AmountOK = parse.Number(values[t.schema.Amount])
	if !detail.AmountOK {
		detail.Amount = 0
		t.stats.InvalidAmounts++
		t.logger.Debug("unparsable amount", "row", row.Number, "value", values[t.schema.Amount])
	}
	detail.Applicable = ApplicableAmount(start, end, detail.Amount, t.year)

	detail.Center = t.canonicalCenter(t.resolveCenter(values))

	entity := values[t.schema.Entity]
	qualifier := ""
	if t.schema.Qualifier != "" {
		qualifier = values[t.schema.Qualifier]
	}
	detail.Factor, detail.Matched = t.factors.Lookup(entity, qualifier)
	if !detail.Matched {
		detail.Factor = factors.Entry{Entity: entity, Qualifier: qualifier, Year: t.year, Location: t.fallback}
		t.recordUnmatched(entity, qualifier)
	}

	divisor := t.schema.Divisor
	if divisor == 0 {
		divisor = 1
	}
	detail.Market = detail.Applicable * detail.Factor.Market / divisor
	detail.Location = detail.Applicable * detail.Factor.Location / divisor
	if !t.schema.DualFactor {
		detail.Location = detail.Market
	}
	return detail, true
}

// resolveCenter prefers the mapped center, then the center registered for
// the row's CUPS, then the invoice number, then the placeholder label.
func (t *transformer) resolveCenter(values map[energy.Field]string) string {
	if center := values[energy.FieldCenter]; center != "" {
		return center
	}
	if code := values[energy.FieldCUPS]; code != "" && t.centers != nil {
		if entry, ok := t.centers[cups.Key(code)]; ok && entry.CenterName != "" {
			return entry.CenterName
		}
	}
	if invoice := values[energy.FieldInvoice]; invoice != "" {
		return invoice
	}
	return t.noCenter
}

// canonicalCenter groups spellings that differ only in case, accents or
// spacing under the first one seen, so every center gets one per-center row.
func (t *transformer) canonicalCenter(center string) string {
	key := textnorm.Fold(center)
	if first, seen := t.seenCenter[key]; seen {
		return first
	}
	t.seenCenter[key] = center
	t.stats.Centers = append(t.stats.Centers, center)
	return center
}

func (t *transformer) recordUnmatched(entity, qualifier string) {
	key := factors.Key(entity, qualifier)
	if _, seen := t.seenEntity[key]; seen {
		return
	}
	t.seenEntity[key] = struct{}{}

	name := entity
	if qualifier != "" {
		name = entity + " / " + qualifier
	}
	t.stats.UnmatchedEntities = append(t.stats.UnmatchedEntities, name)
	t.logger.Warn("no emission factor, emissions computed as zero",
		"module", string(t.schema.Type),
		"year", t.year,
		"entity", entity,
		"qualifier", qualifier,
	)
}
