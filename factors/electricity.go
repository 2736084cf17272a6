package factors

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"carbonreport/energy"
	"carbonreport/internal/textnorm"
)

const electricityGeneralFile = "electricity_general.csv"

var electricityGeneralHeader = []string{"mix_without_gdo", "location_factor", "gdo_renewable", "gdo_cogeneration"}

// TradingCompany is an electricity marketer with its own market-based
// factor. GdOType marks marketers whose supply is covered by guarantees of
// origin.
type TradingCompany struct {
	Name    string
	Factor  float64
	GdOType string
}

// ElectricityGeneral holds the year-wide electricity factors and the
// ordered list of trading companies.
type ElectricityGeneral struct {
	Year            int
	MixWithoutGdO   float64
	LocationFactor  float64
	GdORenewable    float64
	GdOCogeneration float64
	Companies       []TradingCompany
}

// MarketFactor resolves the market-based factor of a company: GdO coverage
// wins, then the company factor, then the residual mix without GdO.
func (g ElectricityGeneral) MarketFactor(company TradingCompany) float64 {
	switch strings.ToLower(strings.TrimSpace(company.GdOType)) {
	case GdORenewable:
		return g.GdORenewable
	case GdOCogeneration:
		return g.GdOCogeneration
	}
	if company.Factor > 0 {
		return company.Factor
	}
	return g.MixWithoutGdO
}

// AddCompany replaces the company with the same normalised name in place
// or appends it.
func (g *ElectricityGeneral) AddCompany(company TradingCompany) {
	company.Name = textnorm.Clean(company.Name)
	company.GdOType = strings.ToLower(strings.TrimSpace(company.GdOType))
	key := textnorm.Fold(company.Name)
	for i := range g.Companies {
		if textnorm.Fold(g.Companies[i].Name) == key {
			g.Companies[i] = company
			return
		}
	}
	g.Companies = append(g.Companies, company)
}

func (g *ElectricityGeneral) RemoveCompany(name string) bool {
	key := textnorm.Fold(name)
	for i := range g.Companies {
		if textnorm.Fold(g.Companies[i].Name) == key {
			g.Companies = append(g.Companies[:i], g.Companies[i+1:]...)
			return true
		}
	}
	return false
}

func (g ElectricityGeneral) Validate() error {
	general := Entry{Entity: "general", Year: g.Year, Market: g.MixWithoutGdO, Location: g.LocationFactor}
	if err := general.Validate(); err != nil {
		return err
	}
	for _, value := range []float64{g.GdORenewable, g.GdOCogeneration} {
		if err := (Entry{Entity: "gdo", Year: g.Year, Market: value, Location: value}).Validate(); err != nil {
			return err
		}
	}
	for _, company := range g.Companies {
		entry := Entry{Entity: company.Name, Year: g.Year, Market: company.Factor, Location: company.Factor, GdOType: company.GdOType}
		if err := entry.Validate(); err != nil {
			return fmt.Errorf("company %q: %w", company.Name, err)
		}
	}
	return nil
}

// LoadElectricityGeneral reads the general factors and the trading
// companies of year. Missing files yield zero values.
func (s *Store) LoadElectricityGeneral(year int) (ElectricityGeneral, LoadStats, error) {
	general := ElectricityGeneral{Year: year}
	path := s.electricityGeneralPath(year)
	stats := LoadStats{Path: path}

	rows, lines, missing, err := readCSVFile(path)
	if err != nil {
		return general, stats, err
	}
	stats.Missing = missing
	for i, fields := range rows {
		values, ok := generalValues(fields)
		if !ok {
			stats.SkippedLines = append(stats.SkippedLines, lines[i])
			continue
		}
		general.MixWithoutGdO = values[0]
		general.LocationFactor = values[1]
		general.GdORenewable = values[2]
		general.GdOCogeneration = values[3]
		stats.Loaded = 1
		break
	}

	entries, _, err := s.readEntries(energy.Electricity, year)
	if err != nil {
		return general, stats, err
	}
	for _, entry := range entries {
		general.AddCompany(TradingCompany{Name: entry.Entity, Factor: entry.Market, GdOType: entry.GdOType})
	}
	return general, stats, nil
}

// SaveElectricityGeneral rewrites both electricity files of g.Year.
func (s *Store) SaveElectricityGeneral(g ElectricityGeneral) error {
	if err := g.Validate(); err != nil {
		return err
	}

	row := []string{
		formatFactor(g.MixWithoutGdO),
		formatFactor(g.LocationFactor),
		formatFactor(g.GdORenewable),
		formatFactor(g.GdOCogeneration),
	}
	if err := writeCSVFile(s.electricityGeneralPath(g.Year), electricityGeneralHeader, [][]string{row}); err != nil {
		return err
	}

	entries := make([]Entry, 0, len(g.Companies))
	for _, company := range g.Companies {
		entries = append(entries, Entry{
			Entity:   textnorm.Clean(company.Name),
			Year:     g.Year,
			Market:   company.Factor,
			Location: company.Factor,
			GdOType:  strings.ToLower(strings.TrimSpace(company.GdOType)),
		})
	}
	return s.writeEntries(energy.Electricity, g.Year, dedupe(entries))
}

// LocationFactor returns the location-based factor that applies to every
// row of t in year regardless of the entity. Only electricity has one.
func (s *Store) LocationFactor(t energy.Type, year int) (float64, bool, error) {
	if t != energy.Electricity {
		return 0, false, nil
	}
	general, stats, err := s.LoadElectricityGeneral(year)
	if err != nil {
		return 0, false, err
	}
	return general.LocationFactor, stats.Loaded > 0, nil
}

func (s *Store) electricityGeneralPath(year int) string {
	return filepath.Join(s.BaseDir, strconv.Itoa(year), electricityGeneralFile)
}

func generalValues(fields []string) ([4]float64, bool) {
	var values [4]float64
	if len(fields) != len(electricityGeneralHeader) {
		return values, false
	}
	for i, field := range fields {
		value, ok := factorValue(strings.TrimSpace(field))
		if !ok {
			return values, false
		}
		values[i] = value
	}
	return values, true
}
