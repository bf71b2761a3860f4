package tools

// atomsDictSchema describes the structure payload shared by the calculation
// tools.
func atomsDictSchema() map[string]any {
	return map[string]any{
		"type":        "object",
		"description": "Atomic structure as produced by parse_structure",
		"properties": map[string]any{
			"numbers":   map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
			"positions": map[string]any{"type": "array", "items": map[string]any{"type": "array", "items": map[string]any{"type": "number"}}},
			"cell":      map[string]any{"type": []string{"array", "null"}},
			"pbc":       map[string]any{"type": "array", "items": map[string]any{"type": "boolean"}},
		},
		"required": []string{"numbers", "positions"},
	}
}

// InputSchemas returns the JSON schema advertised for each tool function.
func (t *Toolset) InputSchemas() map[string]map[string]any {
	return map[string]map[string]any{
		FuncSearchMOFs: {
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query for MOF name or formula",
					"maxLength":   searchQueryMaxLen,
				},
			},
			"required": []string{"query"},
		},
		FuncParseStructure: {
			"type": "object",
			"properties": map[string]any{
				"data": map[string]any{
					"type":        "string",
					"description": "Structure file content as string or file path",
				},
			},
			"required": []string{"data"},
		},
		FuncStaticCalculation: {
			"type": "object",
			"properties": map[string]any{
				"atoms_dict":         atomsDictSchema(),
				"normalize_per_atom": map[string]any{"type": "boolean", "default": false},
				"compute_forces":     map[string]any{"type": "boolean", "default": true},
				"compute_virial":     map[string]any{"type": "boolean", "default": false},
			},
			"required": []string{"atoms_dict"},
		},
		FuncOptimizeGeometry: {
			"type": "object",
			"properties": map[string]any{
				"atoms_dict":   atomsDictSchema(),
				"fmax":         map[string]any{"type": "number", "exclusiveMinimum": 0, "default": defaultFmax},
				"max_steps":    map[string]any{"type": "integer", "exclusiveMinimum": 0, "maximum": maxStepsCeiling, "default": defaultMaxSteps},
				"optimizer":    map[string]any{"type": "string", "enum": allowedOptimizers, "default": "BFGS"},
				"relax_cell":   map[string]any{"type": "boolean", "default": false},
				"fix_symmetry": map[string]any{"type": "boolean", "default": true},
			},
			"required": []string{"atoms_dict"},
		},
	}
}
