package reference

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/nutrigrade/backend/internal/domain"
)

// Table is the immutable additive reference table.
// It is built once and safe for concurrent reads without locking; returned records must not be modified.
type Table struct {
	records  map[string]*domain.AdditiveRecord
	byName   map[string]*domain.AdditiveRecord
	variants map[string]bool
	ordered  []*domain.AdditiveRecord
}

// NewTable validates records and indexes them by normalized code
func NewTable(records []domain.AdditiveRecord) (*Table, error) {
	t := &Table{
		records:  make(map[string]*domain.AdditiveRecord, len(records)),
		byName:   make(map[string]*domain.AdditiveRecord, len(records)),
		variants: make(map[string]bool),
		ordered:  make([]*domain.AdditiveRecord, 0, len(records)),
	}

	for i := range records {
		rec := records[i]

		if strings.TrimSpace(rec.InsNumber) == "" {
			return nil, entryError(i, "ins_number", "missing required field")
		}
		code, ok := domain.NormalizeCode(rec.InsNumber)
		if !ok {
			return nil, entryError(i, "ins_number", "not an additive code: "+strconv.Quote(rec.InsNumber))
		}
		if strings.TrimSpace(rec.Name) == "" {
			return nil, entryError(i, "name", "missing required field")
		}
		if rec.Status == "" {
			return nil, entryError(i, "status", "missing required field")
		}
		rec.Status = domain.AdditiveStatus(strings.ToLower(strings.TrimSpace(string(rec.Status))))
		if !rec.Status.Valid() {
			return nil, entryError(i, "status", "invalid status "+strconv.Quote(string(records[i].Status)))
		}
		if rec.MaxPPM != nil && *rec.MaxPPM < 0 {
			return nil, entryError(i, "max_ppm", "must not be negative")
		}
		if _, dup := t.records[code]; dup {
			return nil, entryError(i, "ins_number", "duplicate code "+code)
		}
		if rec.AllowedIn == nil {
			rec.AllowedIn = []string{}
		}

		rec.Code = code
		r := &rec
		t.records[code] = r
		t.ordered = append(t.ordered, r)

		nameKey := strings.ToLower(strings.TrimSpace(rec.Name))
		if _, taken := t.byName[nameKey]; !taken {
			t.byName[nameKey] = r
		}
		if core := domain.CodeCore(code); core != code {
			t.variants[core] = true
		}
	}

	return t, nil
}

// Lookup returns the record for a normalized code
func (t *Table) Lookup(code string) (*domain.AdditiveRecord, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.records[code]
	return r, ok
}

// LookupByName returns the record whose display name matches exactly, ignoring case
func (t *Table) LookupByName(name string) (*domain.AdditiveRecord, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// HasVariants reports whether the table lists suffixed entries (e.g. "150a") for a numeric core
func (t *Table) HasVariants(core string) bool {
	if t == nil {
		return false
	}
	return t.variants[core]
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ordered)
}

// All returns the records ordered by numeric code, then suffix
func (t *Table) All() []*domain.AdditiveRecord {
	if t == nil {
		return nil
	}
	out := make([]*domain.AdditiveRecord, len(t.ordered))
	copy(out, t.ordered)
	sort.Slice(out, func(i, j int) bool {
		ci, _ := strconv.Atoi(domain.CodeCore(out[i].Code))
		cj, _ := strconv.Atoi(domain.CodeCore(out[j].Code))
		if ci != cj {
			return ci < cj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// MarshalJSON writes the records in source order using the persisted file format
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.ordered)
}
