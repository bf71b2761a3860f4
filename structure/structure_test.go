package structure

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormulaHillOrder(t *testing.T) {
	s := &Structure{
		Numbers: []int{6, 1, 1, 1, 1, 8},
		Positions: [][3]float64{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {2, 0, 0},
		},
	}
	if got := s.Formula(); got != "CH4O" {
		t.Fatalf("Formula() = %q, want %q", got, "CH4O")
	}
}

func TestFormulaNoCarbon(t *testing.T) {
	s := &Structure{
		Numbers:   []int{30, 8, 8},
		Positions: [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
	if got := s.Formula(); got != "O2Zn" {
		t.Fatalf("Formula() = %q, want %q", got, "O2Zn")
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	s := &Structure{
		Numbers:   []int{6, 8},
		Positions: [][3]float64{{0, 0, 0}},
	}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() expected error for mismatched lengths")
	}
}

func TestMapRoundTrip(t *testing.T) {
	cell := [3][3]float64{{10, 0, 0}, {0, 10, 0}, {0, 0, 10}}
	s := &Structure{
		Numbers:   []int{29, 8},
		Positions: [][3]float64{{0, 0, 0}, {1.5, 0, 0}},
		Cell:      &cell,
		PBC:       [3]bool{true, true, true},
	}

	decoded, err := FromMap(s.ToMap())
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}
	if decoded.NumAtoms() != 2 {
		t.Fatalf("NumAtoms() = %d, want 2", decoded.NumAtoms())
	}
	if decoded.Cell == nil {
		t.Fatal("Cell lost in round trip")
	}
	if got := decoded.Positions[1][0]; got != 1.5 {
		t.Fatalf("Positions[1][0] = %v, want 1.5", got)
	}
	if decoded.PBC != [3]bool{true, true, true} {
		t.Fatalf("PBC = %v, want all true", decoded.PBC)
	}
}

func TestFromMapMissingNumbers(t *testing.T) {
	_, err := FromMap(map[string]any{
		"positions": []any{[]any{0.0, 0.0, 0.0}},
	})
	if err == nil {
		t.Fatal("FromMap() expected error for missing numbers")
	}
}

func TestFromMapRejectsFractionalNumbers(t *testing.T) {
	_, err := FromMap(map[string]any{
		"numbers":   []any{1.7},
		"positions": []any{[]any{0.0, 0.0, 0.0}},
	})
	if err == nil {
		t.Fatal("FromMap() expected error for a non-integral atomic number")
	}
	if !strings.Contains(err.Error(), "numbers") {
		t.Fatalf("error %q does not name the numbers field", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Format
		wantErr bool
	}{
		{name: "cif data block", content: "data_MOF5\n_cell_length_a 25.0\n", want: FormatCIF},
		{name: "cif cell tag only", content: "_cell_length_a 25.0\n", want: FormatCIF},
		{name: "xyz count line", content: "2\ncomment\nH 0 0 0\nH 0 0 0.74\n", want: FormatXYZ},
		{name: "unknown", content: "this is not a structure\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("DetectFormat() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseXYZ(t *testing.T) {
	content := "2\nwater fragment\nO 0.0 0.0 0.0\nH 0.0 0.0 0.96\n"
	s, err := ParseXYZ(content)
	if err != nil {
		t.Fatalf("ParseXYZ() error = %v", err)
	}
	if s.NumAtoms() != 2 {
		t.Fatalf("NumAtoms() = %d, want 2", s.NumAtoms())
	}
	if s.Numbers[0] != 8 || s.Numbers[1] != 1 {
		t.Fatalf("Numbers = %v, want [8 1]", s.Numbers)
	}
	if s.Positions[1][2] != 0.96 {
		t.Fatalf("Positions[1][2] = %v, want 0.96", s.Positions[1][2])
	}
	if s.Cell != nil {
		t.Fatal("xyz structure should have no cell")
	}
	if s.PBC != [3]bool{false, false, false} {
		t.Fatalf("PBC = %v, want all false", s.PBC)
	}
}

func TestParseXYZTruncated(t *testing.T) {
	if _, err := ParseXYZ("3\ncomment\nH 0 0 0\n"); err == nil {
		t.Fatal("ParseXYZ() expected error for missing atom lines")
	}
}

const sampleCIF = `data_test
_cell_length_a 10.0
_cell_length_b 10.0
_cell_length_c 10.0
_cell_angle_alpha 90.0
_cell_angle_beta 90.0
_cell_angle_gamma 90.0
loop_
_atom_site_label
_atom_site_type_symbol
_atom_site_fract_x
_atom_site_fract_y
_atom_site_fract_z
Cu1 Cu 0.0 0.0 0.0
O1 O 0.5 0.0 0.0
`

func TestParseCIF(t *testing.T) {
	s, err := ParseCIF(sampleCIF)
	if err != nil {
		t.Fatalf("ParseCIF() error = %v", err)
	}
	if s.NumAtoms() != 2 {
		t.Fatalf("NumAtoms() = %d, want 2", s.NumAtoms())
	}
	if s.Cell == nil {
		t.Fatal("ParseCIF() dropped the cell")
	}
	if s.PBC != [3]bool{true, true, true} {
		t.Fatalf("PBC = %v, want all true", s.PBC)
	}
	if got := s.Positions[1][0]; math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("fractional conversion: Positions[1][0] = %v, want 5.0", got)
	}
	if got := s.Formula(); got != "CuO" {
		t.Fatalf("Formula() = %q, want %q", got, "CuO")
	}
}

func TestParseCIFNoAtoms(t *testing.T) {
	if _, err := ParseCIF("data_empty\n_cell_length_a 5.0\n"); err == nil {
		t.Fatal("ParseCIF() expected error for content without atom sites")
	}
}

func TestReadInlineContent(t *testing.T) {
	s, err := Read("2\ncomment\nH 0 0 0\nH 0 0 0.74\n")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.NumAtoms() != 2 {
		t.Fatalf("NumAtoms() = %d, want 2", s.NumAtoms())
	}
}

func TestReadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2.xyz")
	if err := os.WriteFile(path, []byte("2\nh2\nH 0 0 0\nH 0 0 0.74\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := s.Formula(); got != "H2" {
		t.Fatalf("Formula() = %q, want %q", got, "H2")
	}
}

func TestReadUnknownContent(t *testing.T) {
	if _, err := Read("not a structure at all\nstill not\n"); err == nil {
		t.Fatal("Read() expected error for unrecognized content")
	}
}

func TestVolume(t *testing.T) {
	cell := [3][3]float64{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}
	s := &Structure{Cell: &cell}
	if got := s.Volume(); math.Abs(got-24) > 1e-12 {
		t.Fatalf("Volume() = %v, want 24", got)
	}
	if got := (&Structure{}).Volume(); got != 0 {
		t.Fatalf("Volume() without cell = %v, want 0", got)
	}
}
