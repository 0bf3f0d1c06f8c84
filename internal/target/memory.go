package target

import (
	"context"
	"fmt"
	"sync"

	"frameforge/internal/project"
)

// MemoryProvider grants in-memory write targets. Useful for testing. This
// implementation is safe for concurrent use.
type MemoryProvider struct {
	mu      sync.Mutex
	targets map[string]*MemoryTarget
	decline bool
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{targets: make(map[string]*MemoryTarget)}
}

// Decline makes subsequent RequestTarget calls return no target, modelling
// a host that refuses to grant persistent write access.
func (p *MemoryProvider) Decline(decline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.decline = decline
}

// RequestTarget grants (or re-grants) the named target.
func (p *MemoryProvider) RequestTarget(_ context.Context, suggestedName string) (project.WriteTarget, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.decline {
		return nil, nil
	}
	t, ok := p.targets[suggestedName]
	if !ok {
		t = &MemoryTarget{name: suggestedName}
		p.targets[suggestedName] = t
	}
	return t, nil
}

// Target returns a previously granted target by name, or nil.
func (p *MemoryProvider) Target(name string) *MemoryTarget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targets[name]
}

// MemoryTarget stores written archives in memory. Safe for concurrent use.
type MemoryTarget struct {
	mu      sync.Mutex
	name    string
	data    []byte
	writes  int
	revoked bool
	failing bool
}

// NewMemoryTarget creates a standalone in-memory target.
func NewMemoryTarget(name string) *MemoryTarget {
	return &MemoryTarget{name: name}
}

func (t *MemoryTarget) Name() string { return t.name }

// WriteAll records the archive bytes. A revoked target reports
// ErrWriteTargetLost; a failing target reports a generic write error.
func (t *MemoryTarget) WriteAll(_ context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.revoked {
		return fmt.Errorf("%w: %s", project.ErrWriteTargetLost, t.name)
	}
	if t.failing {
		return fmt.Errorf("write failed: %s", t.name)
	}

	t.data = make([]byte, len(data))
	copy(t.data, data)
	t.writes++
	return nil
}

// Bytes returns a copy of the last written archive.
func (t *MemoryTarget) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]byte, len(t.data))
	copy(out, t.data)
	return out
}

// Writes returns how many successful writes occurred.
func (t *MemoryTarget) Writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// Revoke makes subsequent writes fail with ErrWriteTargetLost.
func (t *MemoryTarget) Revoke() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked = true
}

// Fail makes subsequent writes fail with a transient error.
func (t *MemoryTarget) Fail(failing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failing = failing
}

// Compile-time checks against the core interfaces.
var (
	_ project.TargetProvider = (*MemoryProvider)(nil)
	_ project.WriteTarget    = (*MemoryTarget)(nil)
)
