// Package evaluator defines the structure-evaluation capability the tools
// delegate to: static energy/force evaluation and iterative relaxation.
//
// The package ships two implementations: LennardJones, a deterministic
// in-process pair potential, and Remote, an HTTP client for an external
// machine-learning force-field service. Tools depend only on the Evaluator
// interface.
package evaluator

import (
	"context"
	"errors"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/structure"
)

// Optimizer tokens accepted by Relax. Tokens are canonical (upper-case);
// input normalization happens at the tool validation boundary.
const (
	OptimizerBFGS  = "BFGS"
	OptimizerLBFGS = "LBFGS"
	OptimizerFIRE  = "FIRE"
)

// ErrDegenerate indicates a structure the evaluator cannot handle, such as
// coincident atoms.
var ErrDegenerate = errors.New("evaluator: degenerate structure")

// EvaluateOptions selects which quantities a static evaluation computes.
type EvaluateOptions struct {
	WantForces bool
	WantVirial bool
}

// EvaluateResult carries a static evaluation outcome. Forces is nil unless
// requested; Virial is nil when not requested or not supported by the backend.
type EvaluateResult struct {
	Energy float64
	Forces [][3]float64
	Virial *[3][3]float64
}

// RelaxOptions parameterizes an iterative relaxation.
type RelaxOptions struct {
	Optimizer   string
	Fmax        float64
	MaxSteps    int
	RelaxCell   bool
	FixSymmetry bool
}

// RelaxResult carries the relaxation outcome. Steps never exceeds
// RelaxOptions.MaxSteps; Converged is true iff FinalFmax <= Fmax.
type RelaxResult struct {
	Final         *structure.Structure
	Converged     bool
	Steps         int
	FinalFmax     float64
	InitialEnergy float64
	FinalEnergy   float64
}

// Evaluator is the structure-evaluation capability. Implementations must be
// deterministic for a fixed structure and configuration, and must report
// failures as errors rather than panicking; callers treat every error as a
// recoverable per-request failure.
type Evaluator interface {
	Evaluate(ctx context.Context, s *structure.Structure, opts EvaluateOptions) (EvaluateResult, error)
	Relax(ctx context.Context, s *structure.Structure, opts RelaxOptions) (RelaxResult, error)
}

// HealthChecker is implemented by evaluators that can be probed for liveness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
