package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
)

// StaticEnvelope is the wire result of the static_calculation tool.
type StaticEnvelope struct {
	Success       bool           `json:"success"`
	TotalEnergy   *float64       `json:"total_energy"`
	EnergyPerAtom *float64       `json:"energy_per_atom"`
	Forces        [][3]float64   `json:"forces"`
	Virial        *[3][3]float64 `json:"virial"`
	Error         *string        `json:"error"`
	Message       string         `json:"message"`
}

// StaticCalculation evaluates energy, and optionally forces and virial, for a
// structure without modifying its geometry.
func (t *Toolset) StaticCalculation(ctx context.Context, args map[string]any) string {
	start := time.Now()

	r := newArgReader(args)
	s := r.structureArg("atoms_dict")
	normalizePerAtom := r.optionalBool("normalize_per_atom", false)
	computeForces := r.optionalBool("compute_forces", true)
	computeVirial := r.optionalBool("compute_virial", false)
	if err := r.err(); err != nil {
		env := StaticEnvelope{
			Error:   stringPtr("Input validation error"),
			Message: "Input validation error: " + err.Error(),
		}
		return instrument(FuncStaticCalculation, start, false, invokeCodeValidationFailed, env)
	}

	result, err := t.evaluator.Evaluate(ctx, s, evaluator.EvaluateOptions{
		WantForces: computeForces,
		WantVirial: computeVirial,
	})
	if err != nil {
		env := StaticEnvelope{
			Error:   stringPtr(err.Error()),
			Message: "Calculation error: " + err.Error(),
		}
		return instrument(FuncStaticCalculation, start, false, invokeCodeExecutionFailed, env)
	}

	env := StaticEnvelope{
		Success:     true,
		TotalEnergy: floatPtr(result.Energy),
	}
	msgParts := []string{fmt.Sprintf("Total energy: %.4f eV", result.Energy)}
	if normalizePerAtom {
		perAtom := result.Energy / float64(s.NumAtoms())
		env.EnergyPerAtom = floatPtr(perAtom)
		msgParts = append(msgParts, fmt.Sprintf("Energy/atom: %.4f eV/atom", perAtom))
	}
	if computeForces && result.Forces != nil {
		env.Forces = result.Forces
		msgParts = append(msgParts, fmt.Sprintf("Max force: %.4f eV/Å", maxAbsComponent(result.Forces)))
	}
	// Virial stays null when the evaluator does not support it; that is not
	// a failure.
	if computeVirial && result.Virial != nil {
		env.Virial = result.Virial
	}
	env.Message = "Static calculation completed. " + strings.Join(msgParts, ", ")
	return instrument(FuncStaticCalculation, start, true, "", env)
}

func maxAbsComponent(forces [][3]float64) float64 {
	var max float64
	for _, f := range forces {
		for _, c := range f {
			if abs := math.Abs(c); abs > max {
				max = abs
			}
		}
	}
	return max
}
