package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
)

const (
	defaultFmax     = 0.05
	defaultMaxSteps = 200
	maxStepsCeiling = 1000
)

var allowedOptimizers = []string{
	evaluator.OptimizerBFGS,
	evaluator.OptimizerLBFGS,
	evaluator.OptimizerFIRE,
}

// OptimizationMetadata summarizes one relaxation run.
type OptimizationMetadata struct {
	Converged     bool    `json:"converged"`
	FinalFmax     float64 `json:"final_fmax"`
	Steps         int     `json:"steps"`
	InitialEnergy float64 `json:"initial_energy"`
	FinalEnergy   float64 `json:"final_energy"`
}

// OptimizeEnvelope is the wire result of the optimize_geometry tool.
type OptimizeEnvelope struct {
	Success            bool                  `json:"success"`
	OptimizedAtomsDict map[string]any        `json:"optimized_atoms_dict"`
	Metadata           *OptimizationMetadata `json:"metadata"`
	Error              *string               `json:"error"`
	Message            string                `json:"message"`
}

// OptimizeGeometry relaxes a structure towards a force threshold within a
// bounded step budget.
func (t *Toolset) OptimizeGeometry(ctx context.Context, args map[string]any) string {
	start := time.Now()

	r := newArgReader(args)
	s := r.structureArg("atoms_dict")
	fmax := r.positiveFloat("fmax", defaultFmax)
	maxSteps := r.boundedInt("max_steps", defaultMaxSteps, 0, maxStepsCeiling)
	optimizer := r.choice("optimizer", evaluator.OptimizerBFGS, allowedOptimizers)
	relaxCell := r.optionalBool("relax_cell", false)
	fixSymmetry := r.optionalBool("fix_symmetry", true)
	if err := r.err(); err != nil {
		env := OptimizeEnvelope{
			Error:   stringPtr("Input validation error"),
			Message: "Input validation error: " + err.Error(),
		}
		return instrument(FuncOptimizeGeometry, start, false, invokeCodeValidationFailed, env)
	}

	result, err := t.evaluator.Relax(ctx, s, evaluator.RelaxOptions{
		Optimizer:   optimizer,
		Fmax:        fmax,
		MaxSteps:    maxSteps,
		RelaxCell:   relaxCell,
		FixSymmetry: fixSymmetry,
	})
	if err != nil {
		env := OptimizeEnvelope{
			Error:   stringPtr(err.Error()),
			Message: "Optimization error: " + err.Error(),
		}
		return instrument(FuncOptimizeGeometry, start, false, invokeCodeExecutionFailed, env)
	}

	outcome := "converged"
	if !result.Converged {
		outcome = "did not converge"
	}
	env := OptimizeEnvelope{
		Success:            true,
		OptimizedAtomsDict: result.Final.ToMap(),
		Metadata: &OptimizationMetadata{
			Converged:     result.Converged,
			FinalFmax:     result.FinalFmax,
			Steps:         result.Steps,
			InitialEnergy: result.InitialEnergy,
			FinalEnergy:   result.FinalEnergy,
		},
		Message: fmt.Sprintf("Optimization %s after %d steps. Final fmax: %.4f eV/Å, Energy: %.4f eV",
			outcome, result.Steps, result.FinalFmax, result.FinalEnergy),
	}
	return instrument(FuncOptimizeGeometry, start, true, "", env)
}
