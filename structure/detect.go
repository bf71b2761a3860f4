package structure

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a structure file format.
type Format string

const (
	FormatCIF Format = "cif"
	FormatXYZ Format = "xyz"
)

// DetectFormat sniffs the format of inline structure content:
//  1. A CIF data block header ("data_") or cell parameter tag
//     ("_cell_length_a") implies CIF.
//  2. A leading all-digit atom-count line implies XYZ.
//  3. Anything else is an error.
func DetectFormat(content string) (Format, error) {
	if strings.Contains(content, "data_") || strings.Contains(content, "_cell_length_a") {
		return FormatCIF, nil
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && isAllDigits(strings.TrimSpace(lines[0])) {
		return FormatXYZ, nil
	}

	return "", fmt.Errorf("could not determine structure format from content")
}

// FormatForPath resolves a format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cif":
		return FormatCIF, nil
	case ".xyz":
		return FormatXYZ, nil
	default:
		return "", fmt.Errorf("unsupported structure file extension %q", filepath.Ext(path))
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
