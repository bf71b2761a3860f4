package tools

import "sync"

// ToolInvokeObservation captures the outcome of one tool invocation.
type ToolInvokeObservation struct {
	ToolName   string
	DurationMS int64
	Success    bool
	ErrorCode  string
}

// ToolHealthObservation captures one background evaluator health probe.
type ToolHealthObservation struct {
	Target     string
	Healthy    bool
	DurationMS int64
	ErrorCode  string
}

// Observer receives tool observability signals. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveInvoke(observation ToolInvokeObservation)
	ObserveHealth(observation ToolHealthObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvoke(ToolInvokeObservation) {}
func (noopObserver) ObserveHealth(ToolHealthObservation) {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide tool observability observer. Passing nil
// restores the no-op default.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func emitInvokeObservation(observation ToolInvokeObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveInvoke(observation)
}

// EmitHealthObservation forwards a health probe result to the active observer.
func EmitHealthObservation(observation ToolHealthObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveHealth(observation)
}
