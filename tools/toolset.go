// Package tools implements the MOF tool operations behind the uniform
// validated envelope contract: catalog search, structure parsing, static
// energy evaluation, and geometry optimization.
package tools

import (
	"errors"
	"time"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/catalog"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/registry"
)

// Declared tool function names. The binding table in Operations maps these
// to their implementations explicitly; tool declarations referencing any
// other name are a configuration error.
const (
	FuncSearchMOFs        = "search_mofs"
	FuncParseStructure    = "parse_structure"
	FuncStaticCalculation = "static_calculation"
	FuncOptimizeGeometry  = "optimize_geometry"
)

// Invocation outcome codes reported to the observer.
const (
	invokeCodeValidationFailed = "VALIDATION_FAILED"
	invokeCodeExecutionFailed  = "EXECUTION_FAILED"
)

// Toolset bundles the collaborators the tool operations depend on. The
// operations hold no state of their own; every invocation is independent.
type Toolset struct {
	catalog   catalog.Store
	evaluator evaluator.Evaluator
}

// NewToolset wires the tool operations to a catalog store and a structure
// evaluator.
func NewToolset(store catalog.Store, eval evaluator.Evaluator) (*Toolset, error) {
	if store == nil {
		return nil, errors.New("toolset requires a catalog store")
	}
	if eval == nil {
		return nil, errors.New("toolset requires a structure evaluator")
	}
	return &Toolset{catalog: store, evaluator: eval}, nil
}

// Operations returns the binding table from declared function names to
// operations. Tool declarations are resolved against this table at startup.
func (t *Toolset) Operations() map[string]registry.Operation {
	return map[string]registry.Operation{
		FuncSearchMOFs:        t.SearchMOFs,
		FuncParseStructure:    t.ParseStructure,
		FuncStaticCalculation: t.StaticCalculation,
		FuncOptimizeGeometry:  t.OptimizeGeometry,
	}
}

// instrument emits one invocation observation and serializes the envelope.
func instrument(name string, start time.Time, success bool, errorCode string, env any) string {
	emitInvokeObservation(ToolInvokeObservation{
		ToolName:   name,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    success,
		ErrorCode:  errorCode,
	})
	return marshalEnvelope(env)
}
