package factors

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"carbonreport/energy"
	"carbonreport/internal/atomicfile"
	"carbonreport/internal/parse"
	"carbonreport/internal/textnorm"
)

type layout struct {
	file   string
	header []string
	decode func(fields []string) (Entry, bool)
	encode func(Entry) []string
}

var layouts = map[energy.Type]layout{
	energy.Electricity: {
		file:   "electricity_factors.csv",
		header: []string{"entity", "market_factor", "gdo_type"},
		decode: func(fields []string) (Entry, bool) {
			factor, ok := factorValue(fields[1])
			gdo := strings.ToLower(strings.TrimSpace(fields[2]))
			if !ok || !validGdO(gdo) {
				return Entry{}, false
			}
			return Entry{Entity: fields[0], Market: factor, Location: factor, GdOType: gdo}, true
		},
		encode: func(e Entry) []string {
			return []string{e.Entity, formatFactor(e.Market), e.GdOType}
		},
	},
	energy.Gas: {
		file:   "gas_factors.csv",
		header: []string{"entity", "market_factor", "location_factor", "unit"},
		decode: func(fields []string) (Entry, bool) {
			market, okMarket := factorValue(fields[1])
			location, okLocation := factorValue(fields[2])
			if !okMarket || !okLocation {
				return Entry{}, false
			}
			return Entry{Entity: fields[0], Market: market, Location: location, Unit: fields[3]}, true
		},
		encode: func(e Entry) []string {
			return []string{e.Entity, formatFactor(e.Market), formatFactor(e.Location), e.Unit}
		},
	},
	energy.Fuel: {
		file:   "fuel_factors.csv",
		header: []string{"entity", "vehicle_type", "factor", "unit"},
		decode: func(fields []string) (Entry, bool) {
			factor, ok := factorValue(fields[2])
			if !ok {
				return Entry{}, false
			}
			return Entry{Entity: fields[0], Qualifier: fields[1], Market: factor, Location: factor, Unit: fields[3]}, true
		},
		encode: func(e Entry) []string {
			return []string{e.Entity, e.Qualifier, formatFactor(e.Market), e.Unit}
		},
	},
	energy.Refrigerant: {
		file:   "refrigerant_factors.csv",
		header: []string{"entity", "gwp", "unit"},
		decode: func(fields []string) (Entry, bool) {
			factor, ok := factorValue(fields[1])
			if !ok {
				return Entry{}, false
			}
			return Entry{Entity: fields[0], Market: factor, Location: factor, Unit: fields[2]}, true
		},
		encode: func(e Entry) []string {
			return []string{e.Entity, formatFactor(e.Market), e.Unit}
		},
	},
}

// Store reads and writes factor files below BaseDir:
//
//	<BaseDir>/<year>/electricity_factors.csv
//	<BaseDir>/<year>/electricity_general.csv
//	<BaseDir>/<year>/gas_factors.csv
//	<BaseDir>/<year>/fuel_factors.csv
//	<BaseDir>/<year>/refrigerant_factors.csv
type Store struct {
	BaseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

func (s *Store) Path(t energy.Type, year int) (string, error) {
	l, ok := layouts[t]
	if !ok {
		return "", fmt.Errorf("unsupported energy type: %s", t)
	}
	return filepath.Join(s.BaseDir, strconv.Itoa(year), l.file), nil
}

// Load returns the factors of one type and year. A missing file yields an
// empty table. Electricity entries are resolved against the year's general
// factors (see ElectricityGeneral.MarketFactor).
func (s *Store) Load(t energy.Type, year int) (Table, error) {
	table, _, err := s.LoadWithStats(t, year)
	return table, err
}

func (s *Store) LoadWithStats(t energy.Type, year int) (Table, LoadStats, error) {
	entries, stats, err := s.readEntries(t, year)
	if err != nil {
		return nil, stats, err
	}

	if t == energy.Electricity {
		general, _, err := s.LoadElectricityGeneral(year)
		if err != nil {
			return nil, stats, err
		}
		for i, entry := range entries {
			entries[i].Market = general.MarketFactor(TradingCompany{Name: entry.Entity, Factor: entry.Market, GdOType: entry.GdOType})
			entries[i].Location = general.LocationFactor
		}
	}

	table := make(Table, len(entries))
	for _, entry := range entries {
		table[entry.Key()] = entry
	}
	return table, stats, nil
}

// Save upserts entry into its year file and rewrites the file sorted by
// entity.
func (s *Store) Save(t energy.Type, entry Entry) error {
	entry = normalizeEntry(t, entry)
	if err := entry.Validate(); err != nil {
		return err
	}

	entries, _, err := s.readEntries(t, entry.Year)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].Key() == entry.Key() {
			entries[i] = entry
			replaced = true
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return s.writeEntries(t, entry.Year, dedupe(entries))
}

// Delete removes the rows of entity in year. An empty qualifier removes the
// entity for every qualifier. It returns the number of rows removed.
func (s *Store) Delete(t energy.Type, year int, entity, qualifier string) (int, error) {
	entries, stats, err := s.readEntries(t, year)
	if err != nil {
		return 0, err
	}
	if stats.Missing {
		return 0, fmt.Errorf("%w: %s in %d", ErrNotFound, entity, year)
	}

	entityKey := textnorm.Fold(entity)
	wanted := Key(entity, qualifier)
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		matches := entry.Key() == wanted
		if qualifier == "" {
			matches = textnorm.Fold(entry.Entity) == entityKey
		}
		if !matches {
			kept = append(kept, entry)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: %s in %d", ErrNotFound, entity, year)
	}
	return removed, s.writeEntries(t, year, kept)
}

// Years lists the years that have a factor file for t, ascending.
func (s *Store) Years(t energy.Type) ([]int, error) {
	l, ok := layouts[t]
	if !ok {
		return nil, fmt.Errorf("unsupported energy type: %s", t)
	}

	dirs, err := os.ReadDir(s.BaseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list factor directory %s: %w", s.BaseDir, err)
	}

	years := make([]int, 0, len(dirs))
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		year, err := strconv.Atoi(dir.Name())
		if err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.BaseDir, dir.Name(), l.file)); err == nil {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years, nil
}

func (s *Store) readEntries(t energy.Type, year int) ([]Entry, LoadStats, error) {
	path, err := s.Path(t, year)
	if err != nil {
		return nil, LoadStats{}, err
	}
	l := layouts[t]
	stats := LoadStats{Path: path}

	rows, lines, missing, err := readCSVFile(path)
	if err != nil {
		return nil, stats, err
	}
	stats.Missing = missing

	entries := make([]Entry, 0, len(rows))
	for i, fields := range rows {
		if len(fields) != len(l.header) {
			stats.SkippedLines = append(stats.SkippedLines, lines[i])
			continue
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		entry, ok := l.decode(fields)
		if !ok || entry.Entity == "" {
			stats.SkippedLines = append(stats.SkippedLines, lines[i])
			continue
		}
		entry.Year = year
		entries = append(entries, entry)
	}
	stats.Loaded = len(entries)
	return entries, stats, nil
}

func (s *Store) writeEntries(t energy.Type, year int, entries []Entry) error {
	path, err := s.Path(t, year)
	if err != nil {
		return err
	}
	l := layouts[t]

	sortEntries(entries)
	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = l.encode(entry)
	}
	return writeCSVFile(path, l.header, rows)
}

// readCSVFile returns the data rows after the header together with their
// 1-based line numbers. A missing file is not an error.
func readCSVFile(path string) ([][]string, []int, bool, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, true, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	rows := make([][]string, 0, 32)
	lines := make([]int, 0, 32)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	headerSeen := false
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		rows = append(rows, parse.CSVLine(line))
		lines = append(lines, lineNumber)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("scan %s: %w", path, err)
	}
	return rows, lines, false, nil
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	buf.WriteString(parse.FormatCSVLine(header))
	buf.WriteByte('\n')
	for _, row := range rows {
		buf.WriteString(parse.FormatCSVLine(row))
		buf.WriteByte('\n')
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func normalizeEntry(t energy.Type, entry Entry) Entry {
	entry.Entity = textnorm.Clean(entry.Entity)
	entry.Qualifier = textnorm.Clean(entry.Qualifier)
	entry.GdOType = strings.ToLower(strings.TrimSpace(entry.GdOType))
	entry.Unit = strings.TrimSpace(entry.Unit)
	if entry.Unit == "" && t != energy.Electricity {
		if schema, err := energy.SchemaFor(t); err == nil {
			entry.Unit = schema.FactorUnit
		}
	}
	if t != energy.Gas {
		entry.Location = entry.Market
	}
	return entry
}

// dedupe keeps the last entry per key so files edited by hand with
// duplicates collapse on the next save.
func dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if i, ok := index[entry.Key()]; ok {
			out[i] = entry
			continue
		}
		index[entry.Key()] = len(out)
		out = append(out, entry)
	}
	return out
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		left := textnorm.Fold(entries[i].Entity)
		right := textnorm.Fold(entries[j].Entity)
		if left != right {
			return left < right
		}
		return textnorm.Fold(entries[i].Qualifier) < textnorm.Fold(entries[j].Qualifier)
	})
}

func factorValue(raw string) (float64, bool) {
	value, ok := parse.Number(raw)
	if !ok || value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func formatFactor(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func validGdO(value string) bool {
	return value == GdONone || value == GdORenewable || value == GdOCogeneration
}
