package tools

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const searchQueryMaxLen = 200

// SearchResult is one catalog match in a search envelope.
type SearchResult struct {
	Name        string  `json:"name"`
	Formula     string  `json:"formula"`
	SurfaceArea float64 `json:"surface_area"`
}

// SearchEnvelope is the wire result of the search_mofs tool.
type SearchEnvelope struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
	Message string         `json:"message"`
}

// SearchMOFs matches the query case-insensitively against catalog names and
// formulas. Zero matches is a success, not a failure.
func (t *Toolset) SearchMOFs(ctx context.Context, args map[string]any) string {
	start := time.Now()

	r := newArgReader(args)
	query := r.trimmedString("query", searchQueryMaxLen)
	if err := r.err(); err != nil {
		env := SearchEnvelope{
			Results: []SearchResult{},
			Message: "Input validation error: " + err.Error(),
		}
		return instrument(FuncSearchMOFs, start, false, invokeCodeValidationFailed, env)
	}

	records, err := t.catalog.List(ctx)
	if err != nil {
		env := SearchEnvelope{
			Results: []SearchResult{},
			Message: "Search error: " + err.Error(),
		}
		return instrument(FuncSearchMOFs, start, false, invokeCodeExecutionFailed, env)
	}

	needle := strings.ToLower(query)
	results := make([]SearchResult, 0)
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) ||
			strings.Contains(strings.ToLower(rec.Formula), needle) {
			results = append(results, SearchResult{
				Name:        rec.Name,
				Formula:     rec.Formula,
				SurfaceArea: rec.SurfaceArea,
			})
		}
	}

	message := fmt.Sprintf("Found %d MOF(s)", len(results))
	if len(results) == 0 {
		message = fmt.Sprintf("No MOFs found for '%s'", query)
	}
	env := SearchEnvelope{
		Success: true,
		Results: results,
		Count:   len(results),
		Message: message,
	}
	return instrument(FuncSearchMOFs, start, true, "", env)
}
