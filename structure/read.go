package structure

import (
	"fmt"
	"os"
	"strings"
)

// Read parses structure data supplied either as inline file content or as a
// file-system path. Multi-line input, or input that does not name an existing
// file, is treated as inline content with the format sniffed from the text;
// otherwise the file is read and its format resolved from the extension.
func Read(data string) (*Structure, error) {
	if isInlineContent(data) {
		return parseContent(data)
	}

	raw, err := os.ReadFile(data)
	if err != nil {
		return nil, fmt.Errorf("reading structure file: %w", err)
	}

	format, err := FormatForPath(data)
	if err != nil {
		// Fall back to content sniffing for extension-less paths.
		return parseContent(string(raw))
	}
	return parseFormat(string(raw), format)
}

func isInlineContent(data string) bool {
	if strings.Contains(data, "\n") {
		return true
	}
	info, err := os.Stat(data)
	return err != nil || info.IsDir()
}

func parseContent(content string) (*Structure, error) {
	format, err := DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return parseFormat(content, format)
}

func parseFormat(content string, format Format) (*Structure, error) {
	switch format {
	case FormatCIF:
		return ParseCIF(content)
	case FormatXYZ:
		return ParseXYZ(content)
	default:
		return nil, fmt.Errorf("unsupported structure format %q", format)
	}
}
