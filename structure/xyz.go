package structure

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseXYZ parses plain XYZ content: an atom-count line, a comment line, then
// one "Symbol x y z" line per atom.
func ParseXYZ(content string) (*Structure, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("xyz: truncated content")
	}

	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, fmt.Errorf("xyz: invalid atom count line %q", strings.TrimSpace(lines[0]))
	}
	if count <= 0 {
		return nil, fmt.Errorf("xyz: atom count must be positive, got %d", count)
	}
	if len(lines) < 2+count {
		return nil, fmt.Errorf("xyz: expected %d atom lines, found %d", count, len(lines)-2)
	}

	s := &Structure{
		Numbers:   make([]int, 0, count),
		Positions: make([][3]float64, 0, count),
	}

	for i := 0; i < count; i++ {
		fields := strings.Fields(lines[2+i])
		if len(fields) < 4 {
			return nil, fmt.Errorf("xyz: atom line %d has %d fields, want at least 4", i+1, len(fields))
		}

		z, err := NumberForSymbol(fields[0])
		if err != nil {
			return nil, fmt.Errorf("xyz: atom line %d: %w", i+1, err)
		}

		var pos [3]float64
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[1+j], 64)
			if err != nil {
				return nil, fmt.Errorf("xyz: atom line %d: invalid coordinate %q", i+1, fields[1+j])
			}
			pos[j] = v
		}

		s.Numbers = append(s.Numbers, z)
		s.Positions = append(s.Positions, pos)
	}

	return s, nil
}
