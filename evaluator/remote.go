package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/structure"
)

const defaultRemoteTimeout = 120 * time.Second

// RemoteConfig configures the HTTP evaluation backend.
type RemoteConfig struct {
	// Endpoint is the service base URL, e.g. "http://dpa-service:8100".
	Endpoint string
	Timeout  time.Duration
}

// Remote delegates evaluation to an external force-field service over HTTP.
// The service exposes POST /evaluate, POST /relax, and GET /healthz.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates an HTTP evaluation client.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("evaluator: remote endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type remoteEvaluateRequest struct {
	Structure  map[string]any `json:"structure"`
	WantForces bool           `json:"want_forces"`
	WantVirial bool           `json:"want_virial"`
}

type remoteEvaluateResponse struct {
	Energy float64         `json:"energy"`
	Forces [][3]float64    `json:"forces"`
	Virial *[3][3]float64  `json:"virial"`
	Error  string          `json:"error"`
	Extra  json.RawMessage `json:"metadata"`
}

type remoteRelaxRequest struct {
	Structure   map[string]any `json:"structure"`
	Optimizer   string         `json:"optimizer"`
	Fmax        float64        `json:"fmax"`
	MaxSteps    int            `json:"max_steps"`
	RelaxCell   bool           `json:"relax_cell"`
	FixSymmetry bool           `json:"fix_symmetry"`
}

type remoteRelaxResponse struct {
	Structure     map[string]any `json:"structure"`
	Converged     bool           `json:"converged"`
	Steps         int            `json:"steps"`
	FinalFmax     float64        `json:"final_fmax"`
	InitialEnergy float64        `json:"initial_energy"`
	FinalEnergy   float64        `json:"final_energy"`
	Error         string         `json:"error"`
}

// Evaluate posts a static evaluation request to the service.
func (r *Remote) Evaluate(ctx context.Context, s *structure.Structure, opts EvaluateOptions) (EvaluateResult, error) {
	if err := s.Validate(); err != nil {
		return EvaluateResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var resp remoteEvaluateResponse
	err := r.post(ctx, "/evaluate", remoteEvaluateRequest{
		Structure:  s.ToMap(),
		WantForces: opts.WantForces,
		WantVirial: opts.WantVirial,
	}, &resp)
	if err != nil {
		return EvaluateResult{}, err
	}
	if resp.Error != "" {
		return EvaluateResult{}, fmt.Errorf("evaluator: remote evaluation failed: %s", resp.Error)
	}

	result := EvaluateResult{Energy: resp.Energy}
	if opts.WantForces {
		result.Forces = resp.Forces
	}
	if opts.WantVirial {
		result.Virial = resp.Virial
	}
	return result, nil
}

// Relax posts a relaxation request to the service.
func (r *Remote) Relax(ctx context.Context, s *structure.Structure, opts RelaxOptions) (RelaxResult, error) {
	if err := s.Validate(); err != nil {
		return RelaxResult{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var resp remoteRelaxResponse
	err := r.post(ctx, "/relax", remoteRelaxRequest{
		Structure:   s.ToMap(),
		Optimizer:   opts.Optimizer,
		Fmax:        opts.Fmax,
		MaxSteps:    opts.MaxSteps,
		RelaxCell:   opts.RelaxCell,
		FixSymmetry: opts.FixSymmetry,
	}, &resp)
	if err != nil {
		return RelaxResult{}, err
	}
	if resp.Error != "" {
		return RelaxResult{}, fmt.Errorf("evaluator: remote relaxation failed: %s", resp.Error)
	}

	final, err := structure.FromMap(resp.Structure)
	if err != nil {
		return RelaxResult{}, fmt.Errorf("evaluator: decode relaxed structure: %w", err)
	}
	if resp.Steps > opts.MaxSteps {
		return RelaxResult{}, fmt.Errorf("evaluator: remote reported %d steps, budget was %d", resp.Steps, opts.MaxSteps)
	}

	return RelaxResult{
		Final:         final,
		Converged:     resp.Converged,
		Steps:         resp.Steps,
		FinalFmax:     resp.FinalFmax,
		InitialEnergy: resp.InitialEnergy,
		FinalEnergy:   resp.FinalEnergy,
	}, nil
}

// Ping probes the service liveness endpoint.
func (r *Remote) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("evaluator: build health request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("evaluator: health probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("evaluator: health probe returned status %d", resp.StatusCode)
	}
	return nil
}

func (r *Remote) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("evaluator: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("evaluator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("evaluator: remote request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("evaluator: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("evaluator: remote returned status %d: %s", resp.StatusCode, message)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("evaluator: decode response: %w", err)
	}
	return nil
}
