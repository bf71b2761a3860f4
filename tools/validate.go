package tools

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/structure"
)

// Severity defines diagnostic severity produced by input validation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a structured validation finding for one input field.
type Diagnostic struct {
	Field    string   `json:"field,omitempty"`
	Code     string   `json:"code,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

const (
	codeRequired   = "REQUIRED"
	codeEmpty      = "EMPTY"
	codeTooLong    = "TOO_LONG"
	codeOutOfRange = "OUT_OF_RANGE"
	codeBadChoice  = "BAD_CHOICE"
	codeBadType    = "BAD_TYPE"
	codeBadPayload = "BAD_PAYLOAD"
)

// ValidationError aggregates every violated input constraint for an
// invocation. It is always converted to a failure envelope at the operation
// boundary, never propagated to callers.
type ValidationError struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Diagnostics) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// argReader decodes and validates raw invocation arguments, accumulating
// diagnostics instead of failing on the first violation.
type argReader struct {
	args  map[string]any
	diags []Diagnostic
}

func newArgReader(args map[string]any) *argReader {
	return &argReader{args: args}
}

func (r *argReader) add(field, code, message string) {
	r.diags = append(r.diags, Diagnostic{
		Field:    field,
		Code:     code,
		Severity: SeverityError,
		Message:  message,
	})
}

// err returns the aggregated validation error, or nil when every constraint
// held.
func (r *argReader) err() error {
	if len(r.diags) == 0 {
		return nil
	}
	return &ValidationError{Diagnostics: r.diags}
}

// trimmedString requires a non-empty string after trimming, bounded to maxLen
// characters. The trimmed value replaces the raw one for downstream use.
func (r *argReader) trimmedString(field string, maxLen int) string {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		r.add(field, codeRequired, fmt.Sprintf("%s is required", field))
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		r.add(field, codeBadType, fmt.Sprintf("%s must be a string", field))
		return ""
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		r.add(field, codeEmpty, fmt.Sprintf("%s must not be empty or whitespace", field))
		return ""
	}
	// The bound is characters, not bytes; multibyte symbols count once.
	if utf8.RuneCountInString(trimmed) > maxLen {
		r.add(field, codeTooLong, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
		return ""
	}
	return trimmed
}

// optionalBool reads a boolean argument, falling back to def when absent.
func (r *argReader) optionalBool(field string, def bool) bool {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		return def
	}
	b, ok := raw.(bool)
	if !ok {
		r.add(field, codeBadType, fmt.Sprintf("%s must be a boolean", field))
		return def
	}
	return b
}

// positiveFloat reads a strictly positive float argument with a default.
func (r *argReader) positiveFloat(field string, def float64) float64 {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		return def
	}
	v, ok := asFloat(raw)
	if !ok {
		r.add(field, codeBadType, fmt.Sprintf("%s must be a number", field))
		return def
	}
	if v <= 0 {
		r.add(field, codeOutOfRange, fmt.Sprintf("%s must be greater than 0", field))
		return def
	}
	return v
}

// boundedInt reads an integer argument in (min, max] with a default.
func (r *argReader) boundedInt(field string, def, min, max int) int {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		return def
	}
	f, ok := asFloat(raw)
	if !ok || f != float64(int(f)) {
		r.add(field, codeBadType, fmt.Sprintf("%s must be an integer", field))
		return def
	}
	v := int(f)
	if v <= min || v > max {
		r.add(field, codeOutOfRange, fmt.Sprintf("%s must be in (%d, %d]", field, min, max))
		return def
	}
	return v
}

// choice reads an enumerated string argument, normalizing case-insensitively
// to the canonical uppercase token.
func (r *argReader) choice(field, def string, allowed []string) string {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		return def
	}
	s, ok := raw.(string)
	if !ok {
		r.add(field, codeBadType, fmt.Sprintf("%s must be a string", field))
		return def
	}
	token := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range allowed {
		if token == a {
			return token
		}
	}
	r.add(field, codeBadChoice, fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")))
	return def
}

// structureArg decodes a required atoms_dict-shaped payload.
func (r *argReader) structureArg(field string) *structure.Structure {
	raw, ok := r.args[field]
	if !ok || raw == nil {
		r.add(field, codeRequired, fmt.Sprintf("%s is required", field))
		return nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		r.add(field, codeBadType, fmt.Sprintf("%s must be an object", field))
		return nil
	}
	s, err := structure.FromMap(m)
	if err != nil {
		r.add(field, codeBadPayload, fmt.Sprintf("%s is not a valid structure: %v", field, err))
		return nil
	}
	return s
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
