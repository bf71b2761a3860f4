package catalog

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryStoreSeedOrder(t *testing.T) {
	store := NewMemoryStore()

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].Name != "HKUST-1" || records[1].Name != "MOF-5" || records[2].Name != "UiO-66" {
		t.Fatalf("catalog order wrong: %v", records)
	}
}

func TestMemoryStoreWithRejectsInvalid(t *testing.T) {
	_, err := NewMemoryStoreWith([]Record{{Name: "Bad", Formula: "X", SurfaceArea: -1}})
	if err == nil {
		t.Fatal("NewMemoryStoreWith() expected error for negative surface area")
	}
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{name: "valid", record: Record{Name: "MOF-5", Formula: "Zn4O(BDC)3", SurfaceArea: 3800}},
		{name: "empty name", record: Record{Formula: "X", SurfaceArea: 1}, wantErr: true},
		{name: "empty formula", record: Record{Name: "X", SurfaceArea: 1}, wantErr: true},
		{name: "zero surface area", record: Record{Name: "X", Formula: "Y"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	store, err := NewSQLiteStore(SQLiteStoreConfig{DSN: path})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSeedsOnCreate(t *testing.T) {
	store := newTestSQLiteStore(t)

	records, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[1].Name != "MOF-5" {
		t.Fatalf("records[1].Name = %q, want MOF-5", records[1].Name)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	added := Record{Name: "ZIF-8", Formula: "Zn(MeIM)2", SurfaceArea: 1630}
	if err := store.Upsert(ctx, added); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len(records) = %d, want 4", len(records))
	}
	if records[3] != added {
		t.Fatalf("records[3] = %v, want %v", records[3], added)
	}

	// Upserting the same name must not grow the catalog.
	added.SurfaceArea = 1700
	if err := store.Upsert(ctx, added); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	records, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("len(records) after duplicate upsert = %d, want 4", len(records))
	}
	if records[3].SurfaceArea != 1700 {
		t.Fatalf("surface area not updated: %v", records[3].SurfaceArea)
	}
}
