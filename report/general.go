package report

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"carbonreport/energy"
	"carbonreport/internal/textnorm"
	"carbonreport/output"

	"github.com/xuri/excelize/v2"
)

// GeneralSource is one module workbook to merge into the general report.
type GeneralSource struct {
	Type energy.Type
	Path string
	// Sheets to copy; empty copies every sheet. The per-center sheet is
	// always copied because the summary refers to it.
	Sheets []string
}

type GeneralRequest struct {
	Sources    []GeneralSource
	OutputPath string
	Labels     Labels
	Logger     *slog.Logger
}

type GeneralResult struct {
	OutputPath string
	Converted  bool
	Sheets     []string
	// Warnings lists sources, sheets or columns that could not be found.
	Warnings []string
}

// EnsurePrefix returns name prefixed with "<module> - " in the language of
// labels, unless it already starts with the module label of t in any
// supported language as a whole word.
func EnsurePrefix(name string, t energy.Type, labels Labels) string {
	name = strings.TrimSpace(name)
	foldedName := textnorm.Fold(name)
	for _, bundle := range AllLabels() {
		if hasModulePrefix(foldedName, textnorm.Fold(bundle.Module(t))) {
			return name
		}
	}
	return truncateSheetName(labels.Module(t) + " - " + name)
}

func hasModulePrefix(foldedName, foldedModule string) bool {
	if foldedModule == "" || !strings.HasPrefix(foldedName, foldedModule) {
		return false
	}
	rest := foldedName[len(foldedModule):]
	return rest == "" || rest[0] == ' ' || rest[0] == '-'
}

// FindPerCenterSheet picks the per-center sheet of module t among sheets.
// Reports generated by older versions named it "Por centro" or
// "<Module> Por centro"; current ones use "<Module> - Por centro". The most
// specific existing variant wins, in any supported language.
func FindPerCenterSheet(sheets []string, t energy.Type) (string, bool) {
	candidates := make([]string, 0, 6)
	for _, labels := range AllLabels() {
		module := labels.Module(t)
		kind := labels.Kind(SheetPerCenter)
		candidates = append(candidates, module+" - "+kind, module+" "+kind)
	}
	for _, labels := range AllLabels() {
		candidates = append(candidates, labels.Kind(SheetPerCenter))
	}

	for _, candidate := range candidates {
		if sheet, ok := findSheet(sheets, candidate); ok {
			return sheet, true
		}
	}
	return "", false
}

type summaryLine struct {
	module    string
	sheet     string
	market    string
	location  string
	lastRow   int
	available bool
}

// BuildGeneral copies the selected sheets of every source workbook into one
// workbook and adds a summary sheet whose cells are SUM formulas over each
// module's per-center sheet.
func BuildGeneral(req GeneralRequest) (*GeneralResult, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("no source workbooks given")
	}
	if err := output.ValidateFormat(req.OutputPath); err != nil {
		return nil, err
	}
	labels := req.Labels
	if labels.Language == "" {
		labels = LabelsFor("")
	}
	logger := req.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	out := excelize.NewFile()
	defer out.Close()

	summaryName := labels.SummarySheetName()
	if err := out.SetSheetName(out.GetSheetName(0), summaryName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := output.NewStyles(out)
	if err != nil {
		return nil, err
	}

	result := &GeneralResult{Sheets: []string{summaryName}}
	used := map[string]bool{textnorm.Fold(summaryName): true}
	lines := make([]summaryLine, 0, len(req.Sources))
	warn := func(message string, args ...any) {
		text := fmt.Sprintf(message, args...)
		result.Warnings = append(result.Warnings, text)
		logger.Warn(text)
	}

	for _, source := range req.Sources {
		module := labels.Module(source.Type)
		line := summaryLine{module: module}

		copied, err := copySource(out, source, labels, used)
		if err != nil {
			warn("skip %s workbook %s: %v", module, source.Path, err)
			lines = append(lines, line)
			continue
		}
		for _, sheet := range copied.missing {
			warn("%v: %q in %s", ErrNoSheet, sheet, source.Path)
		}
		result.Sheets = append(result.Sheets, copied.sheets...)

		if copied.perCenter == "" {
			warn("no per-center sheet for %s in %s", module, source.Path)
			lines = append(lines, line)
			continue
		}

		schema := energy.MustSchema(source.Type)
		market, okMarket := ResolveAnyColumn(copied.perCenterHeaders, emissionLabels(schema, ColEmissionsMarket)...)
		location, okLocation := ResolveAnyColumn(copied.perCenterHeaders, emissionLabels(schema, ColEmissionsLocation)...)
		if !okMarket || !okLocation {
			warn("no emission columns in %q of %s", copied.perCenter, source.Path)
			lines = append(lines, line)
			continue
		}
		line.sheet = copied.perCenter
		line.market = market
		line.location = location
		line.lastRow = copied.perCenterRows
		line.available = true
		lines = append(lines, line)
	}

	if err := writeSummary(out, summaryName, labels, styles, lines); err != nil {
		return nil, err
	}

	fullCalc := true
	if err := out.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return nil, fmt.Errorf("set calculation properties: %w", err)
	}
	out.SetActiveSheet(0)

	path, err := output.Save(out, req.OutputPath)
	if err != nil {
		return nil, err
	}
	result.OutputPath = path
	_, result.Converted = output.ResolvePath(req.OutputPath)
	return result, nil
}

// emissionLabels lists the titles a per-center emission column may carry:
// the dual-factor title first, then the single-factor one, in every
// language.
func emissionLabels(schema energy.Schema, column Column) []string {
	labels := make([]string, 0, 4)
	for _, bundle := range AllLabels() {
		labels = append(labels, bundle.Title(schema, column), bundle.Title(schema, ColEmissions))
	}
	return labels
}

type copiedSource struct {
	sheets           []string
	missing          []string
	perCenter        string
	perCenterHeaders []string
	perCenterRows    int
}

func copySource(out *excelize.File, source GeneralSource, labels Labels, used map[string]bool) (copiedSource, error) {
	var copied copiedSource

	src, err := excelize.OpenFile(source.Path)
	if err != nil {
		return copied, fmt.Errorf("open excel file %s: %w", source.Path, err)
	}
	defer src.Close()

	available := src.GetSheetList()
	perCenter, hasPerCenter := FindPerCenterSheet(available, source.Type)

	selected := make([]string, 0, len(available))
	if len(source.Sheets) == 0 {
		selected = append(selected, available...)
	} else {
		for _, want := range source.Sheets {
			name, ok := findSheet(available, want)
			if !ok {
				copied.missing = append(copied.missing, want)
				continue
			}
			selected = appendUnique(selected, name)
		}
		if hasPerCenter {
			selected = appendUnique(selected, perCenter)
		}
	}

	renames := make(map[string]string, len(selected))
	for _, name := range selected {
		target := uniqueSheetName(EnsurePrefix(name, source.Type, labels), used)
		used[textnorm.Fold(target)] = true
		renames[name] = target
	}
	// References to sheets that are not copied keep their name; they are
	// the user's selection.
	for _, name := range available {
		if _, ok := renames[name]; !ok {
			renames[name] = name
		}
	}

	styleCache := make(map[int]int)
	for _, name := range selected {
		target := renames[name]
		if _, err := out.NewSheet(target); err != nil {
			return copied, fmt.Errorf("create sheet %s: %w", target, err)
		}
		headers, rowCount, err := copySheet(src, name, out, target, renames, styleCache)
		if err != nil {
			return copied, err
		}
		copied.sheets = append(copied.sheets, target)
		if hasPerCenter && name == perCenter {
			copied.perCenter = target
			copied.perCenterHeaders = headers
			copied.perCenterRows = rowCount
		}
	}
	return copied, nil
}

// copySheet copies values, formulas, styles, column widths and frozen
// panes. It returns the header row and the number of used rows.
func copySheet(src *excelize.File, srcSheet string, dst *excelize.File, dstSheet string, renames map[string]string, styleCache map[int]int) ([]string, int, error) {
	rows, err := src.GetRows(srcSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("read rows from sheet %s: %w", srcSheet, err)
	}

	maxRow, maxCol := len(rows), 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	if dimension, err := src.GetSheetDimension(srcSheet); err == nil {
		if _, last, ok := strings.Cut(dimension, ":"); ok {
			if col, row, err := excelize.CellNameToCoordinates(last); err == nil {
				maxRow = max(maxRow, row)
				maxCol = max(maxCol, col)
			}
		}
	}

	for r := 1; r <= maxRow; r++ {
		for c := 1; c <= maxCol; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return nil, 0, err
			}
			value := ""
			if r-1 < len(rows) && c-1 < len(rows[r-1]) {
				value = rows[r-1][c-1]
			}
			if err := copyCell(src, srcSheet, dst, dstSheet, cell, value, renames); err != nil {
				return nil, 0, err
			}
			if err := copyCellStyle(src, srcSheet, dst, dstSheet, cell, styleCache); err != nil {
				return nil, 0, err
			}
		}
	}

	for c := 1; c <= maxCol; c++ {
		column, _ := excelize.ColumnNumberToName(c)
		width, err := src.GetColWidth(srcSheet, column)
		if err != nil {
			continue
		}
		if err := dst.SetColWidth(dstSheet, column, column, width); err != nil {
			return nil, 0, fmt.Errorf("size column %s: %w", column, err)
		}
	}

	if panes, err := src.GetPanes(srcSheet); err == nil && panes.Freeze {
		if err := dst.SetPanes(dstSheet, &panes); err != nil {
			return nil, 0, fmt.Errorf("freeze panes of %s: %w", dstSheet, err)
		}
	}

	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}
	return headers, maxRow, nil
}

func copyCell(src *excelize.File, srcSheet string, dst *excelize.File, dstSheet, cell, value string, renames map[string]string) error {
	formula, err := src.GetCellFormula(srcSheet, cell)
	if err != nil {
		return fmt.Errorf("read formula %s!%s: %w", srcSheet, cell, err)
	}
	if formula != "" {
		if err := dst.SetCellFormula(dstSheet, cell, RewriteSheetRefs(formula, renames)); err != nil {
			return fmt.Errorf("set formula %s: %w", cell, err)
		}
		return nil
	}
	if value == "" {
		return nil
	}

	cellType, err := src.GetCellType(srcSheet, cell)
	if err != nil {
		return fmt.Errorf("read cell type %s!%s: %w", srcSheet, cell, err)
	}
	var typed any = value
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
	case excelize.CellTypeBool:
		typed = value == "1" || strings.EqualFold(value, "true")
	default:
		if number, err := strconv.ParseFloat(value, 64); err == nil {
			typed = number
		}
	}
	if err := dst.SetCellValue(dstSheet, cell, typed); err != nil {
		return fmt.Errorf("set excel value %s: %w", cell, err)
	}
	return nil
}

func copyCellStyle(src *excelize.File, srcSheet string, dst *excelize.File, dstSheet, cell string, cache map[int]int) error {
	styleID, err := src.GetCellStyle(srcSheet, cell)
	if err != nil || styleID == 0 {
		return nil
	}
	target, ok := cache[styleID]
	if !ok {
		style, err := src.GetStyle(styleID)
		if err != nil {
			cache[styleID] = 0
			return nil
		}
		// Styles excelize cannot re-create are dropped; the value stays.
		if target, err = dst.NewStyle(style); err != nil {
			target = 0
		}
		cache[styleID] = target
	}
	if target == 0 {
		return nil
	}
	return dst.SetCellStyle(dstSheet, cell, cell, target)
}

func writeSummary(file *excelize.File, sheet string, labels Labels, styles output.Styles, lines []summaryLine) error {
	schema := energy.MustSchema(energy.Electricity)
	headers := []string{
		labels.Title(schema, ColModule),
		labels.Title(schema, ColEmissionsMarket),
		labels.Title(schema, ColEmissionsLocation),
	}
	if err := output.WriteHeader(file, sheet, headers, styles.Header); err != nil {
		return err
	}

	for i, line := range lines {
		row := i + 2
		if err := file.SetCellValue(sheet, fmt.Sprintf("A%d", row), line.module); err != nil {
			return fmt.Errorf("set module A%d: %w", row, err)
		}
		for j, column := range []string{line.market, line.location} {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if !line.available {
				if err := file.SetCellValue(sheet, cell, 0); err != nil {
					return fmt.Errorf("set excel value %s: %w", cell, err)
				}
				continue
			}
			if err := file.SetCellFormula(sheet, cell, SumFormula(line.sheet, column, 2, line.lastRow)); err != nil {
				return fmt.Errorf("set formula %s: %w", cell, err)
			}
		}
		if err := file.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row), styles.Emission); err != nil {
			return fmt.Errorf("style summary row %d: %w", row, err)
		}
	}

	totalRow := len(lines) + 2
	if err := file.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), labels.TotalRow); err != nil {
		return fmt.Errorf("set total label: %w", err)
	}
	for j, column := range []string{"B", "C"} {
		cell, _ := excelize.CoordinatesToCellName(j+2, totalRow)
		if err := file.SetCellFormula(sheet, cell, SumFormula(sheet, column, 2, totalRow-1)); err != nil {
			return fmt.Errorf("set formula %s: %w", cell, err)
		}
	}
	return file.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("C%d", totalRow), styles.Total)
}

func findSheet(sheets []string, want string) (string, bool) {
	for _, sheet := range sheets {
		if sheet == want {
			return sheet, true
		}
	}
	for _, sheet := range sheets {
		if textnorm.Equal(sheet, want) {
			return sheet, true
		}
	}
	return "", false
}

func appendUnique(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}

func uniqueSheetName(name string, used map[string]bool) string {
	if !used[textnorm.Fold(name)] {
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		base := []rune(name)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate := strings.TrimSpace(string(base)) + suffix
		if !used[textnorm.Fold(candidate)] {
			return candidate
		}
	}
}
