package evaluator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/evaluate" {
			t.Errorf("path = %q, want /evaluate", r.URL.Path)
		}
		var req remoteEvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.WantForces {
			t.Error("want_forces not propagated")
		}
		json.NewEncoder(w).Encode(remoteEvaluateResponse{
			Energy: -1.25,
			Forces: [][3]float64{{0, 0, 0.1}, {0, 0, -0.1}},
		})
	}))
	defer srv.Close()

	remote, err := NewRemote(RemoteConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	result, err := remote.Evaluate(context.Background(), dimer(2.5), EvaluateOptions{WantForces: true})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Energy != -1.25 {
		t.Fatalf("Energy = %v, want -1.25", result.Energy)
	}
	if len(result.Forces) != 2 {
		t.Fatalf("len(Forces) = %d, want 2", len(result.Forces))
	}
}

func TestRemoteRelaxStepBudgetViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(remoteRelaxResponse{
			Structure: dimer(2.5).ToMap(),
			Converged: true,
			Steps:     50,
		})
	}))
	defer srv.Close()

	remote, err := NewRemote(RemoteConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	_, err = remote.Relax(context.Background(), dimer(2.5), RelaxOptions{Fmax: 0.05, MaxSteps: 10})
	if err == nil {
		t.Fatal("Relax() expected error when remote exceeds the step budget")
	}
}

func TestRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	remote, err := NewRemote(RemoteConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}

	if _, err := remote.Evaluate(context.Background(), dimer(2.5), EvaluateOptions{}); err == nil {
		t.Fatal("Evaluate() expected error for non-2xx status")
	}
}

func TestRemotePing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	remote, err := NewRemote(RemoteConfig{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("NewRemote() error = %v", err)
	}
	if err := remote.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestNewRemoteRequiresEndpoint(t *testing.T) {
	if _, err := NewRemote(RemoteConfig{}); err == nil {
		t.Fatal("NewRemote() expected error for empty endpoint")
	}
}
