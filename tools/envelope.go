package tools

import (
	"encoding/json"
	"fmt"
)

// marshalEnvelope serializes a result envelope with the wire formatting
// callers depend on: every declared field present, explicit nulls for absent
// optional fields, two-space indentation.
func marshalEnvelope(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Envelope structs only contain marshalable fields, so this is
		// unreachable in practice.
		return fmt.Sprintf(`{"success": false, "message": "internal serialization error: %v"}`, err)
	}
	return string(data)
}

func stringPtr(s string) *string  { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
