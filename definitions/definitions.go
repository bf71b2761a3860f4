// Package definitions loads the tool declaration surface: an ordered list of
// tool declarations resolved against the explicit function binding table and
// registered at startup.
package definitions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
)

// Definition declares one tool to be registered. Category and FunctionName
// must resolve; anything else is a configuration error that aborts startup.
type Definition struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	FunctionName string   `yaml:"function_name"`
	Tags         []string `yaml:"tags"`
	Version      string   `yaml:"version"`
}

type document struct {
	Tools []Definition `yaml:"tools"`
}

// Load reads tool definitions from a YAML file.
func Load(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tool definitions: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML tool definitions document.
func Parse(data []byte) ([]Definition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tool definitions: %w", err)
	}
	return doc.Tools, nil
}

// Defaults returns the compiled-in declarations for the four MOF tools, used
// when no definitions file is supplied.
func Defaults() []Definition {
	return []Definition{
		{
			Name:         "search_mofs",
			Description:  "Search for MOFs by name or chemical formula in the reference database",
			Category:     "search",
			FunctionName: "search_mofs",
			Tags:         []string{"mof", "database", "search"},
			Version:      "1.0.0",
		},
		{
			Name:         "parse_structure",
			Description:  "Parse structure data (CIF, XYZ) from file content or path into an atomic structure",
			Category:     "utils",
			FunctionName: "parse_structure",
			Tags:         []string{"structure", "parser", "io"},
			Version:      "1.0.0",
		},
		{
			Name:         "static_calculation",
			Description:  "Compute total energy, forces, and virial for a structure without modifying geometry",
			Category:     "calculation",
			FunctionName: "static_calculation",
			Tags:         []string{"energy", "forces", "static"},
			Version:      "1.0.0",
		},
		{
			Name:         "optimize_geometry",
			Description:  "Relax atomic positions towards a force convergence threshold",
			Category:     "calculation",
			FunctionName: "optimize_geometry",
			Tags:         []string{"optimization", "relaxation", "geometry"},
			Version:      "1.0.0",
		},
	}
}

// Register resolves each declaration against the operation binding table and
// registers it. The first unresolved reference or registry rejection aborts
// with a configuration error; nothing is registered partially for that
// declaration.
func Register(reg *registry.Registry, operations map[string]registry.Operation, defs []Definition) error {
	for _, def := range defs {
		category, err := registry.ParseCategory(def.Category)
		if err != nil {
			return fmt.Errorf("tool %q: %w", def.Name, err)
		}
		op, ok := operations[def.FunctionName]
		if !ok {
			return fmt.Errorf("tool %q: function %q is not a known operation", def.Name, def.FunctionName)
		}
		if _, err := reg.Register(registry.ToolMetadata{
			Name:         def.Name,
			Description:  def.Description,
			Category:     category,
			FunctionName: def.FunctionName,
			Operation:    op,
			Tags:         def.Tags,
			Version:      def.Version,
		}); err != nil {
			return fmt.Errorf("tool %q: %w", def.Name, err)
		}
	}
	return nil
}
