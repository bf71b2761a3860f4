package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/structure"
)

// ljParams holds Lennard-Jones well depth (eV) and diameter (Å) per element.
type ljParams struct {
	epsilon float64
	sigma   float64
}

// Rough element parameters; anything absent falls back to ljDefault. The
// point of this backend is a deterministic, smooth potential surface, not
// quantitative chemistry.
var ljByElement = map[int]ljParams{
	1:  {epsilon: 0.010, sigma: 1.20}, // H
	6:  {epsilon: 0.105, sigma: 3.40}, // C
	7:  {epsilon: 0.069, sigma: 3.25}, // N
	8:  {epsilon: 0.060, sigma: 2.96}, // O
	29: {epsilon: 0.167, sigma: 2.33}, // Cu
	30: {epsilon: 0.125, sigma: 2.46}, // Zn
	40: {epsilon: 0.180, sigma: 2.80}, // Zr
}

var ljDefault = ljParams{epsilon: 0.100, sigma: 2.50}

const minPairDistance = 1e-6

// LennardJones is the in-process evaluation backend: a classical 12-6 pair
// potential with Lorentz-Berthelot mixing, analytic forces, and a damped
// steepest-descent relaxation loop. Interactions are computed with open
// boundaries; cell relaxation and symmetry constraints are accepted but only
// atomic positions move.
type LennardJones struct{}

// NewLennardJones returns the built-in pair-potential evaluator.
func NewLennardJones() *LennardJones {
	return &LennardJones{}
}

// Evaluate computes potential energy and, on request, forces and the virial
// tensor. The virial is only available for structures with a lattice cell;
// otherwise the result's Virial stays nil.
func (lj *LennardJones) Evaluate(ctx context.Context, s *structure.Structure, opts EvaluateOptions) (EvaluateResult, error) {
	if err := ctx.Err(); err != nil {
		return EvaluateResult{}, err
	}
	if err := s.Validate(); err != nil {
		return EvaluateResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	energy, forces, virial, err := lj.compute(s)
	if err != nil {
		return EvaluateResult{}, err
	}

	result := EvaluateResult{Energy: energy}
	if opts.WantForces {
		result.Forces = forces
	}
	if opts.WantVirial && s.Cell != nil {
		result.Virial = virial
	}
	return result, nil
}

// Relax runs damped steepest descent on atomic positions. It terminates after
// at most opts.MaxSteps steps; Converged reports whether the final maximum
// force component magnitude dropped to opts.Fmax or below.
func (lj *LennardJones) Relax(ctx context.Context, s *structure.Structure, opts RelaxOptions) (RelaxResult, error) {
	if opts.Fmax <= 0 {
		return RelaxResult{}, fmt.Errorf("evaluator: fmax must be positive, got %v", opts.Fmax)
	}
	if opts.MaxSteps <= 0 {
		return RelaxResult{}, fmt.Errorf("evaluator: max steps must be positive, got %d", opts.MaxSteps)
	}
	switch opts.Optimizer {
	case OptimizerBFGS, OptimizerLBFGS, OptimizerFIRE, "":
	default:
		return RelaxResult{}, fmt.Errorf("evaluator: unsupported optimizer %q", opts.Optimizer)
	}

	current := s.Clone()
	if err := current.Validate(); err != nil {
		return RelaxResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	energy, forces, _, err := lj.compute(current)
	if err != nil {
		return RelaxResult{}, err
	}
	initialEnergy := energy
	fmax := maxForceComponent(forces)

	// Step size in Å²/eV; displacements are clipped per component so a steep
	// initial surface cannot blow the geometry apart.
	const stepSize = 0.05
	const maxDisplacement = 0.2

	steps := 0
	for fmax > opts.Fmax && steps < opts.MaxSteps {
		if err := ctx.Err(); err != nil {
			return RelaxResult{}, err
		}

		for i := range current.Positions {
			for j := 0; j < 3; j++ {
				d := stepSize * forces[i][j]
				if d > maxDisplacement {
					d = maxDisplacement
				} else if d < -maxDisplacement {
					d = -maxDisplacement
				}
				current.Positions[i][j] += d
			}
		}
		steps++

		energy, forces, _, err = lj.compute(current)
		if err != nil {
			return RelaxResult{}, err
		}
		fmax = maxForceComponent(forces)
	}

	return RelaxResult{
		Final:         current,
		Converged:     fmax <= opts.Fmax,
		Steps:         steps,
		FinalFmax:     fmax,
		InitialEnergy: initialEnergy,
		FinalEnergy:   energy,
	}, nil
}

// Ping reports the backend as always available.
func (lj *LennardJones) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (lj *LennardJones) compute(s *structure.Structure) (float64, [][3]float64, *[3][3]float64, error) {
	n := s.NumAtoms()
	forces := make([][3]float64, n)
	var energy float64
	var virial [3][3]float64

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var r [3]float64
			var r2 float64
			for k := 0; k < 3; k++ {
				r[k] = s.Positions[j][k] - s.Positions[i][k]
				r2 += r[k] * r[k]
			}
			if r2 < minPairDistance {
				return 0, nil, nil, fmt.Errorf("%w: atoms %d and %d are coincident", ErrDegenerate, i, j)
			}

			eps, sigma := mixedParams(s.Numbers[i], s.Numbers[j])
			sr2 := sigma * sigma / r2
			sr6 := sr2 * sr2 * sr2
			sr12 := sr6 * sr6

			energy += 4 * eps * (sr12 - sr6)

			// dU/dr scaled by 1/r, applied along the pair vector.
			fScale := 24 * eps * (2*sr12 - sr6) / r2
			for k := 0; k < 3; k++ {
				f := fScale * r[k]
				forces[j][k] += f
				forces[i][k] -= f
				for l := 0; l < 3; l++ {
					virial[k][l] += r[k] * fScale * r[l]
				}
			}
		}
	}

	return energy, forces, &virial, nil
}

func mixedParams(zi, zj int) (epsilon, sigma float64) {
	pi := paramsFor(zi)
	pj := paramsFor(zj)
	return math.Sqrt(pi.epsilon * pj.epsilon), (pi.sigma + pj.sigma) / 2
}

func paramsFor(z int) ljParams {
	if p, ok := ljByElement[z]; ok {
		return p
	}
	return ljDefault
}

func maxForceComponent(forces [][3]float64) float64 {
	var m float64
	for _, f := range forces {
		for _, c := range f {
			if a := math.Abs(c); a > m {
				m = a
			}
		}
	}
	return m
}
