// Package cups keeps the mapping between supply points (CUPS codes) and the
// centers they belong to.
package cups

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"carbonreport/internal/atomicfile"
	"carbonreport/internal/parse"
	"carbonreport/internal/textnorm"

	"github.com/go-playground/validator/v10"
)

const FileName = "cups_centers.csv"

var (
	ErrNotFound     = errors.New("cups entry not found")
	ErrInvalidEntry = errors.New("invalid cups entry")
)

var validate = validator.New()

var header = []string{"id", "cups", "marketer", "centerName", "acronym", "energyType", "street", "postalCode", "city", "province"}

type Entry struct {
	ID         int
	CUPS       string `validate:"required"`
	Marketer   string
	CenterName string `validate:"required"`
	Acronym    string
	EnergyType string `validate:"omitempty,oneof=electricity gas"`
	Street     string
	PostalCode string
	City       string
	Province   string
}

func (e Entry) fields() []string {
	return []string{
		strconv.Itoa(e.ID), e.CUPS, e.Marketer, e.CenterName, e.Acronym,
		e.EnergyType, e.Street, e.PostalCode, e.City, e.Province,
	}
}

func (e Entry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}

// Key normalises a CUPS code: upper case, no separators, and only the 20
// characters that identify the supply point (the optional two-character
// border point suffix is dropped).
func Key(code string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(textnorm.Clean(code)) {
		if r == ' ' || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	key := b.String()
	if len(key) > 20 {
		key = key[:20]
	}
	return key
}

type LoadStats struct {
	Missing      bool
	Loaded       int
	SkippedLines []int
}

type Store struct {
	Path string
}

func NewStore(baseDir string) *Store {
	return &Store{Path: filepath.Join(baseDir, FileName)}
}

// Load returns all entries in file order. A missing file yields no entries.
func (s *Store) Load() ([]Entry, error) {
	entries, _, err := s.LoadWithStats()
	return entries, err
}

func (s *Store) LoadWithStats() ([]Entry, LoadStats, error) {
	stats := LoadStats{}
	content, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		stats.Missing = true
		return []Entry{}, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", s.Path, err)
	}

	entries, skipped, err := decode(content)
	if err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", s.Path, err)
	}
	stats.Loaded = len(entries)
	stats.SkippedLines = skipped
	return entries, stats, nil
}

// Save sorts entries by center name, reassigns IDs 1..N and replaces the
// file.
func (s *Store) Save(entries []Entry) error {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		left := textnorm.Fold(sorted[i].CenterName)
		right := textnorm.Fold(sorted[j].CenterName)
		if left != right {
			return left < right
		}
		return Key(sorted[i].CUPS) < Key(sorted[j].CUPS)
	})

	var buf bytes.Buffer
	buf.WriteString(parse.FormatCSVLine(header))
	buf.WriteByte('\n')
	for i := range sorted {
		sorted[i].ID = i + 1
		buf.WriteString(parse.FormatCSVLine(sorted[i].fields()))
		buf.WriteByte('\n')
	}
	if err := atomicfile.WriteFile(s.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", s.Path, err)
	}
	return nil
}

// Upsert adds entry or replaces the one with the same CUPS. It reports
// whether an existing entry was replaced.
func (s *Store) Upsert(entry Entry) (bool, error) {
	entry = normalize(entry)
	if err := entry.Validate(); err != nil {
		return false, err
	}

	entries, err := s.Load()
	if err != nil {
		return false, err
	}
	entries, replaced := upsert(entries, entry)
	return replaced, s.Save(entries)
}

func (s *Store) Delete(code string) error {
	entries, err := s.Load()
	if err != nil {
		return err
	}

	key := Key(code)
	kept := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if Key(entry.CUPS) != key {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return s.Save(kept)
}

// Index maps Key(CUPS) to its entry for row lookups.
func (s *Store) Index() (map[string]Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}
	index := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		index[Key(entry.CUPS)] = entry
	}
	return index, nil
}

// ImportCSV merges the entries of another CSV file with the same header
// names (any order, id optional). Invalid rows are skipped.
func (s *Store) ImportCSV(path string) (added, updated int, skipped []int, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("read %s: %w", path, err)
	}
	incoming, skipped, err := decode(content)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("read %s: %w", path, err)
	}

	entries, err := s.Load()
	if err != nil {
		return 0, 0, nil, err
	}
	for _, entry := range incoming {
		var replaced bool
		entries, replaced = upsert(entries, normalize(entry))
		if replaced {
			updated++
		} else {
			added++
		}
	}
	if err := s.Save(entries); err != nil {
		return 0, 0, nil, err
	}
	return added, updated, skipped, nil
}

func upsert(entries []Entry, entry Entry) ([]Entry, bool) {
	key := Key(entry.CUPS)
	for i := range entries {
		if Key(entries[i].CUPS) == key {
			entries[i] = entry
			return entries, true
		}
	}
	return append(entries, entry), false
}

func normalize(entry Entry) Entry {
	entry.CUPS = strings.ToUpper(strings.Join(strings.Fields(entry.CUPS), ""))
	entry.Marketer = textnorm.Clean(entry.Marketer)
	entry.CenterName = textnorm.Clean(entry.CenterName)
	entry.Acronym = textnorm.Clean(entry.Acronym)
	entry.EnergyType = strings.ToLower(strings.TrimSpace(entry.EnergyType))
	entry.Street = textnorm.Clean(entry.Street)
	entry.PostalCode = strings.TrimSpace(entry.PostalCode)
	entry.City = textnorm.Clean(entry.City)
	entry.Province = textnorm.Clean(entry.Province)
	return entry
}

// decode reads rows by header name. Rows without cups or centerName, or
// with an unknown energy type, are reported as skipped line numbers.
func decode(content []byte) ([]Entry, []int, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	entries := make([]Entry, 0, 64)
	skipped := make([]int, 0)
	columns := map[string]int(nil)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := parse.CSVLine(line)
		if columns == nil {
			columns = make(map[string]int, len(fields))
			for i, name := range fields {
				columns[textnorm.Fold(name)] = i
			}
			if _, ok := columns["cups"]; !ok {
				return nil, nil, fmt.Errorf("header has no cups column")
			}
			continue
		}

		get := func(name string) string {
			index, ok := columns[strings.ToLower(name)]
			if !ok || index >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[index])
		}
		entry := normalize(Entry{
			CUPS:       get("cups"),
			Marketer:   get("marketer"),
			CenterName: get("centerName"),
			Acronym:    get("acronym"),
			EnergyType: get("energyType"),
			Street:     get("street"),
			PostalCode: get("postalCode"),
			City:       get("city"),
			Province:   get("province"),
		})
		entry.ID, _ = strconv.Atoi(get("id"))
		if entry.Validate() != nil {
			skipped = append(skipped, lineNumber)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return entries, skipped, nil
}
