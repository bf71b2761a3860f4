// Package catalog holds the searchable MOF record catalog backing the
// search_mofs tool. Two stores exist: an in-memory store seeded with the
// built-in records, and a SQLite-backed store for externally curated catalogs.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Record is one MOF database entry.
type Record struct {
	Name        string  `json:"name"`
	Formula     string  `json:"formula"`
	SurfaceArea float64 `json:"surface_area"`
}

// Validate checks record field constraints.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("catalog: record name is required")
	}
	if strings.TrimSpace(r.Formula) == "" {
		return fmt.Errorf("catalog: record formula is required")
	}
	if r.SurfaceArea <= 0 {
		return fmt.Errorf("catalog: record surface area must be positive, got %v", r.SurfaceArea)
	}
	return nil
}

// Store lists catalog records in catalog order.
type Store interface {
	List(ctx context.Context) ([]Record, error)
}

// SeedRecords returns the built-in MOF catalog.
func SeedRecords() []Record {
	return []Record{
		{Name: "HKUST-1", Formula: "Cu3(BTC)2", SurfaceArea: 1850.0},
		{Name: "MOF-5", Formula: "Zn4O(BDC)3", SurfaceArea: 3800.0},
		{Name: "UiO-66", Formula: "Zr6O4(OH)4(BDC)6", SurfaceArea: 1187.0},
	}
}

// MemoryStore is an in-memory catalog with fixed contents.
type MemoryStore struct {
	records []Record
}

// NewMemoryStore creates a memory store seeded with the built-in records.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: SeedRecords()}
}

// NewMemoryStoreWith creates a memory store over the given records.
func NewMemoryStoreWith(records []Record) (*MemoryStore, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	out := make([]Record, len(records))
	copy(out, records)
	return &MemoryStore{records: out}, nil
}

// List returns the catalog records in catalog order.
func (s *MemoryStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}
