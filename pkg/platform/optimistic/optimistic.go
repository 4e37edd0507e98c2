// Package optimistic tracks the lifecycle of optimistic local mutations that
// await remote confirmation. A mutable local projection (for example a
// per-user favorite set) marks each key as it is flipped locally, while the
// remote write is in flight, and back to clean when the write settles or the
// local value is rolled back.
package optimistic

import "sync"

// State of a single projected key.
type State string

const (
	// StateClean means the local value matches the last confirmed remote value.
	StateClean State = "clean"
	// StateApplied means the local value was flipped ahead of remote confirmation.
	StateApplied State = "optimistically_applied"
	// StateReconciling means the remote write for the flipped value is in flight.
	StateReconciling State = "reconciling"
)

// Projection tracks optimistic state per key. The zero value is not usable;
// construct with New.
type Projection struct {
	mu     sync.Mutex
	states map[string]State
}

func New() *Projection {
	return &Projection{states: make(map[string]State)}
}

// Apply records that the local value for key was flipped optimistically.
func (p *Projection) Apply(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[key] = StateApplied
}

// Reconcile records that the remote write for key is in flight.
func (p *Projection) Reconcile(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[key] = StateReconciling
}

// Settle marks key clean after the remote write committed.
func (p *Projection) Settle(key string) {
	p.clear(key)
}

// Rollback marks key clean after the local flip was reverted. The caller is
// responsible for actually restoring the local value; this only closes the
// tracking window.
func (p *Projection) Rollback(key string) {
	p.clear(key)
}

func (p *Projection) clear(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.states, key)
}

// StateOf reports the tracked state for key, StateClean when untracked.
func (p *Projection) StateOf(key string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.states[key]; ok {
		return s
	}
	return StateClean
}

// InFlight counts keys not currently clean.
func (p *Projection) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states)
}
