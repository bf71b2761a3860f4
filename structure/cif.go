package structure

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCIF parses a minimal single-block CIF file: cell parameters plus an
// atom_site loop with either fractional or Cartesian coordinates. Standard
// uncertainty suffixes like "1.234(5)" are stripped.
func ParseCIF(content string) (*Structure, error) {
	lines := strings.Split(content, "\n")

	cellParams := make(map[string]float64)
	var loopTags []string
	var loopRows [][]string

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "_cell_") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if v, err := parseCIFNumber(fields[1]); err == nil {
					cellParams[fields[0]] = v
				}
			}
			continue
		}

		if strings.EqualFold(line, "loop_") {
			tags, rows, next := parseCIFLoop(lines, i+1)
			if containsAtomSiteTags(tags) {
				loopTags, loopRows = tags, rows
			}
			i = next - 1
		}
	}

	if loopTags == nil {
		return nil, fmt.Errorf("cif: no atom_site loop found")
	}

	cell, err := cellFromParams(cellParams)
	if err != nil {
		return nil, err
	}

	return structureFromAtomSites(loopTags, loopRows, cell)
}

func parseCIFLoop(lines []string, start int) (tags []string, rows [][]string, next int) {
	i := start
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "_") {
			break
		}
		tags = append(tags, strings.ToLower(strings.Fields(line)[0]))
	}

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "_") ||
			strings.HasPrefix(line, "#") || strings.EqualFold(line, "loop_") ||
			strings.HasPrefix(line, "data_") {
			break
		}
		fields := strings.Fields(line)
		if len(fields) == len(tags) {
			rows = append(rows, fields)
		}
	}

	return tags, rows, i
}

func containsAtomSiteTags(tags []string) bool {
	for _, tag := range tags {
		if strings.HasPrefix(tag, "_atom_site_") {
			return true
		}
	}
	return false
}

// cellFromParams builds the lattice matrix from lengths a, b, c (Å) and angles
// alpha, beta, gamma (degrees) using the standard crystallographic convention.
func cellFromParams(params map[string]float64) (*[3][3]float64, error) {
	a, okA := params["_cell_length_a"]
	b, okB := params["_cell_length_b"]
	c, okC := params["_cell_length_c"]
	if !okA || !okB || !okC {
		if !okA && !okB && !okC {
			return nil, nil
		}
		return nil, fmt.Errorf("cif: incomplete cell lengths")
	}

	alpha := radians(paramOrDefault(params, "_cell_angle_alpha", 90))
	beta := radians(paramOrDefault(params, "_cell_angle_beta", 90))
	gamma := radians(paramOrDefault(params, "_cell_angle_gamma", 90))

	cosAlpha, cosBeta, cosGamma := math.Cos(alpha), math.Cos(beta), math.Cos(gamma)
	sinGamma := math.Sin(gamma)
	if sinGamma == 0 {
		return nil, fmt.Errorf("cif: degenerate cell angle gamma")
	}

	cx := c * cosBeta
	cy := c * (cosAlpha - cosBeta*cosGamma) / sinGamma
	czSquared := c*c - cx*cx - cy*cy
	if czSquared <= 0 {
		return nil, fmt.Errorf("cif: degenerate cell parameters")
	}

	cell := [3][3]float64{
		{a, 0, 0},
		{b * cosGamma, b * sinGamma, 0},
		{cx, cy, math.Sqrt(czSquared)},
	}
	return &cell, nil
}

func structureFromAtomSites(tags []string, rows [][]string, cell *[3][3]float64) (*Structure, error) {
	col := func(names ...string) int {
		for _, name := range names {
			for i, tag := range tags {
				if tag == name {
					return i
				}
			}
		}
		return -1
	}

	symbolCol := col("_atom_site_type_symbol", "_atom_site_label")
	if symbolCol < 0 {
		return nil, fmt.Errorf("cif: atom_site loop has no symbol column")
	}

	fractX := col("_atom_site_fract_x")
	fractY := col("_atom_site_fract_y")
	fractZ := col("_atom_site_fract_z")
	fractional := fractX >= 0 && fractY >= 0 && fractZ >= 0

	cartX := col("_atom_site_cartn_x")
	cartY := col("_atom_site_cartn_y")
	cartZ := col("_atom_site_cartn_z")
	cartesian := cartX >= 0 && cartY >= 0 && cartZ >= 0

	if !fractional && !cartesian {
		return nil, fmt.Errorf("cif: atom_site loop has no coordinate columns")
	}
	if fractional && cell == nil {
		return nil, fmt.Errorf("cif: fractional coordinates require cell parameters")
	}

	s := &Structure{}
	if cell != nil {
		s.Cell = cell
		s.PBC = [3]bool{true, true, true}
	}

	for rowIdx, row := range rows {
		z, err := NumberForSymbol(stripSiteLabel(row[symbolCol]))
		if err != nil {
			return nil, fmt.Errorf("cif: atom site %d: %w", rowIdx+1, err)
		}

		var coords [3]float64
		cols := [3]int{cartX, cartY, cartZ}
		if fractional {
			cols = [3]int{fractX, fractY, fractZ}
		}
		for j, c := range cols {
			v, err := parseCIFNumber(row[c])
			if err != nil {
				return nil, fmt.Errorf("cif: atom site %d: invalid coordinate %q", rowIdx+1, row[c])
			}
			coords[j] = v
		}

		pos := coords
		if fractional {
			pos = fracToCartesian(coords, *cell)
		}

		s.Numbers = append(s.Numbers, z)
		s.Positions = append(s.Positions, pos)
	}

	if len(s.Numbers) == 0 {
		return nil, fmt.Errorf("cif: atom_site loop has no atom rows")
	}
	return s, nil
}

func fracToCartesian(frac [3]float64, cell [3][3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = frac[0]*cell[0][i] + frac[1]*cell[1][i] + frac[2]*cell[2][i]
	}
	return out
}

// stripSiteLabel reduces site labels like "Cu1" or "O3A" to the element symbol.
func stripSiteLabel(label string) string {
	end := len(label)
	for i, r := range label {
		if r >= '0' && r <= '9' {
			end = i
			break
		}
	}
	return label[:end]
}

func parseCIFNumber(s string) (float64, error) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return strconv.ParseFloat(s, 64)
}

func paramOrDefault(params map[string]float64, key string, fallback float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
