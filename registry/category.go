package registry

import (
	"fmt"
	"strings"
)

// Category groups registered tools by the kind of work they perform.
type Category string

const (
	CategoryCalculation Category = "calculation"
	CategoryUtils       Category = "utils"
	CategoryAnalysis    Category = "analysis"
	CategorySearch      Category = "search"
)

// Categories returns every declared category in declaration order.
func Categories() []Category {
	return []Category{CategoryCalculation, CategoryUtils, CategoryAnalysis, CategorySearch}
}

// ParseCategory resolves a case-insensitive category token to its canonical
// value. Unknown tokens are a configuration error.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryCalculation:
		return CategoryCalculation, nil
	case CategoryUtils:
		return CategoryUtils, nil
	case CategoryAnalysis:
		return CategoryAnalysis, nil
	case CategorySearch:
		return CategorySearch, nil
	default:
		return "", fmt.Errorf("unknown tool category %q", s)
	}
}
