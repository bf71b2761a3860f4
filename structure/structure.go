// Package structure defines the atomic-structure payload exchanged between the
// parse, static-calculation, and optimization tools, together with parsers for
// the common text formats (XYZ, CIF).
package structure

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Structure is a chemistry state: atomic numbers, Cartesian positions in Å,
// an optional 3x3 lattice cell, and per-axis periodicity flags.
type Structure struct {
	Numbers   []int
	Positions [][3]float64
	Cell      *[3][3]float64
	PBC       [3]bool
}

// NumAtoms returns the number of atoms in the structure.
func (s *Structure) NumAtoms() int {
	if s == nil {
		return 0
	}
	return len(s.Numbers)
}

// Validate checks the structural invariants: positions length matches atomic
// numbers, every atomic number is positive and known.
func (s *Structure) Validate() error {
	if s == nil {
		return fmt.Errorf("structure is nil")
	}
	if len(s.Numbers) == 0 {
		return fmt.Errorf("structure has no atoms")
	}
	if len(s.Positions) != len(s.Numbers) {
		return fmt.Errorf("positions length %d does not match atomic numbers length %d",
			len(s.Positions), len(s.Numbers))
	}
	for i, z := range s.Numbers {
		if z <= 0 || z > maxAtomicNumber {
			return fmt.Errorf("atom %d has invalid atomic number %d", i, z)
		}
	}
	return nil
}

// Formula returns the chemical formula in Hill order: carbon first, then
// hydrogen, then the remaining elements alphabetically. Without carbon all
// elements are sorted alphabetically.
func (s *Structure) Formula() string {
	counts := make(map[string]int)
	for _, z := range s.Numbers {
		counts[SymbolFor(z)]++
	}

	symbols := make([]string, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	if _, hasCarbon := counts["C"]; hasCarbon {
		ordered := []string{"C"}
		if _, hasHydrogen := counts["H"]; hasHydrogen {
			ordered = append(ordered, "H")
		}
		for _, sym := range symbols {
			if sym != "C" && sym != "H" {
				ordered = append(ordered, sym)
			}
		}
		symbols = ordered
	}

	var b strings.Builder
	for _, sym := range symbols {
		b.WriteString(sym)
		if n := counts[sym]; n > 1 {
			fmt.Fprintf(&b, "%d", n)
		}
	}
	return b.String()
}

// Clone returns a deep copy safe for independent mutation.
func (s *Structure) Clone() *Structure {
	if s == nil {
		return nil
	}
	out := &Structure{
		Numbers:   make([]int, len(s.Numbers)),
		Positions: make([][3]float64, len(s.Positions)),
		PBC:       s.PBC,
	}
	copy(out.Numbers, s.Numbers)
	copy(out.Positions, s.Positions)
	if s.Cell != nil {
		cell := *s.Cell
		out.Cell = &cell
	}
	return out
}

// Volume returns the cell volume in Å³, or 0 when no cell is set.
func (s *Structure) Volume() float64 {
	if s == nil || s.Cell == nil {
		return 0
	}
	c := *s.Cell
	// Scalar triple product a · (b × c).
	return c[0][0]*(c[1][1]*c[2][2]-c[1][2]*c[2][1]) -
		c[0][1]*(c[1][0]*c[2][2]-c[1][2]*c[2][0]) +
		c[0][2]*(c[1][0]*c[2][1]-c[1][1]*c[2][0])
}

// ToMap renders the structure as the atoms_dict wire payload. Cell serializes
// as null when absent; pbc always serializes as a 3-element vector.
func (s *Structure) ToMap() map[string]any {
	positions := make([]any, len(s.Positions))
	for i, p := range s.Positions {
		positions[i] = []any{p[0], p[1], p[2]}
	}
	numbers := make([]any, len(s.Numbers))
	for i, z := range s.Numbers {
		numbers[i] = z
	}

	var cell any
	if s.Cell != nil {
		rows := make([]any, 3)
		for i, row := range *s.Cell {
			rows[i] = []any{row[0], row[1], row[2]}
		}
		cell = rows
	}

	return map[string]any{
		"numbers":   numbers,
		"positions": positions,
		"cell":      cell,
		"pbc":       []any{s.PBC[0], s.PBC[1], s.PBC[2]},
	}
}

// FromMap reconstructs a structure from an atoms_dict wire payload, as decoded
// from JSON (numbers are float64, nested slices are []any).
func FromMap(m map[string]any) (*Structure, error) {
	if m == nil {
		return nil, fmt.Errorf("atoms_dict is missing")
	}

	rawNumbers, ok := m["numbers"]
	if !ok {
		return nil, fmt.Errorf("atoms_dict is missing \"numbers\"")
	}
	numbers, err := decodeIntSlice(rawNumbers)
	if err != nil {
		return nil, fmt.Errorf("atoms_dict numbers: %w", err)
	}

	rawPositions, ok := m["positions"]
	if !ok {
		return nil, fmt.Errorf("atoms_dict is missing \"positions\"")
	}
	positions, err := decodeVec3Slice(rawPositions)
	if err != nil {
		return nil, fmt.Errorf("atoms_dict positions: %w", err)
	}

	s := &Structure{Numbers: numbers, Positions: positions}

	if rawCell, ok := m["cell"]; ok && rawCell != nil {
		cell, err := decodeCell(rawCell)
		if err != nil {
			return nil, fmt.Errorf("atoms_dict cell: %w", err)
		}
		s.Cell = cell
	}

	if rawPBC, ok := m["pbc"]; ok && rawPBC != nil {
		pbc, err := decodePBC(rawPBC)
		if err != nil {
			return nil, fmt.Errorf("atoms_dict pbc: %w", err)
		}
		s.PBC = pbc
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeIntSlice(v any) ([]int, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]int, len(items))
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("element %d: expected an integer, got %v", i, f)
		}
		out[i] = int(f)
	}
	return out, nil
}

func decodeVec3Slice(v any) ([][3]float64, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([][3]float64, len(items))
	for i, item := range items {
		vec, err := decodeVec3(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func decodeVec3(v any) ([3]float64, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 3 {
		return [3]float64{}, fmt.Errorf("expected a 3-vector, got %v", v)
	}
	var out [3]float64
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return [3]float64{}, err
		}
		out[i] = f
	}
	return out, nil
}

func decodeCell(v any) (*[3][3]float64, error) {
	rows, ok := v.([]any)
	if !ok || len(rows) != 3 {
		return nil, fmt.Errorf("expected a 3x3 matrix")
	}
	var cell [3][3]float64
	for i, row := range rows {
		vec, err := decodeVec3(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		cell[i] = vec
	}
	return &cell, nil
}

func decodePBC(v any) ([3]bool, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 3 {
		return [3]bool{}, fmt.Errorf("expected a 3-element flag vector")
	}
	var out [3]bool
	for i, item := range items {
		b, ok := item.(bool)
		if !ok {
			return [3]bool{}, fmt.Errorf("element %d: expected bool, got %T", i, item)
		}
		out[i] = b
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
