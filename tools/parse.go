package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/structure"
)

const parseDataMaxLen = 1 << 20

// ParseEnvelope is the wire result of the parse_structure tool.
type ParseEnvelope struct {
	Success   bool           `json:"success"`
	AtomsDict map[string]any `json:"atoms_dict"`
	NumAtoms  *int           `json:"num_atoms"`
	Formula   *string        `json:"formula"`
	Error     *string        `json:"error"`
	Message   string         `json:"message"`
}

// ParseStructure reads inline structure content or a file path, auto-detecting
// the format, and returns the structure payload with atom count and formula.
func (t *Toolset) ParseStructure(ctx context.Context, args map[string]any) string {
	start := time.Now()

	r := newArgReader(args)
	data := r.trimmedString("data", parseDataMaxLen)
	if err := r.err(); err != nil {
		env := ParseEnvelope{
			Error:   stringPtr("Input validation error"),
			Message: "Input validation error: " + err.Error(),
		}
		return instrument(FuncParseStructure, start, false, invokeCodeValidationFailed, env)
	}

	s, err := structure.Read(data)
	if err != nil {
		env := ParseEnvelope{
			Error:   stringPtr(err.Error()),
			Message: "Parsing error: " + err.Error(),
		}
		return instrument(FuncParseStructure, start, false, invokeCodeExecutionFailed, env)
	}

	formula := s.Formula()
	env := ParseEnvelope{
		Success:   true,
		AtomsDict: s.ToMap(),
		NumAtoms:  intPtr(s.NumAtoms()),
		Formula:   stringPtr(formula),
		Message:   fmt.Sprintf("Successfully parsed structure: %s (%d atoms)", formula, s.NumAtoms()),
	}
	return instrument(FuncParseStructure, start, true, "", env)
}
