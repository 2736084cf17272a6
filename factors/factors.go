// Package factors stores emission factors as one CSV file per energy type
// and year below a base directory.
package factors

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"carbonreport/internal/textnorm"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidEntry = errors.New("invalid factor entry")
	ErrNotFound     = errors.New("factor entry not found")
)

const (
	GdONone         = ""
	GdORenewable    = "renewable"
	GdOCogeneration = "cogeneration"
)

// validate caches struct metadata across calls; it is safe for concurrent use.
var validate = validator.New()

// Entry is one emission factor. Single-factor types carry the same value in
// Market and Location.
type Entry struct {
	Entity    string  `validate:"required"`
	Qualifier string  `validate:"-"`
	Year      int     `validate:"gte=1990,lte=2100"`
	Market    float64 `validate:"gte=0"`
	Location  float64 `validate:"gte=0"`
	Unit      string  `validate:"-"`
	GdOType   string  `validate:"omitempty,oneof=renewable cogeneration"`
}

func (e Entry) Key() string {
	return Key(e.Entity, e.Qualifier)
}

// Validate rejects empty entities and negative or non-finite factors.
func (e Entry) Validate() error {
	for _, value := range []float64{e.Market, e.Location} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: factor must be a finite number", ErrInvalidEntry)
		}
	}
	if strings.TrimSpace(e.Entity) == "" {
		return fmt.Errorf("%w: entity is required", ErrInvalidEntry)
	}
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return nil
}

// Key is the lookup key of an entity, optionally narrowed by a qualifier
// such as the vehicle type.
func Key(entity, qualifier string) string {
	key := textnorm.Fold(entity)
	if q := textnorm.Fold(qualifier); q != "" {
		key += "|" + q
	}
	return key
}

// Table maps Key values to entries.
type Table map[string]Entry

// Lookup tries the qualified key first and then the bare entity.
func (t Table) Lookup(entity, qualifier string) (Entry, bool) {
	if qualifier != "" {
		if entry, ok := t[Key(entity, qualifier)]; ok {
			return entry, true
		}
	}
	entry, ok := t[Key(entity, "")]
	return entry, ok
}

// LoadStats reports what happened while reading one factor file.
type LoadStats struct {
	Path         string
	Missing      bool
	Loaded       int
	SkippedLines []int
}

func (s LoadStats) Skipped() int {
	return len(s.SkippedLines)
}

// Entries returns the table sorted by entity and qualifier.
func (t Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t))
	for _, entry := range t {
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries
}
