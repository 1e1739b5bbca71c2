package skills

import (
	"fmt"
	"sort"
	"sync"

	"github.com/metislabs/metis/pkg/core"
)

// Registry maps skill ids to their executors. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	execs map[string]core.SkillExecutor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{execs: make(map[string]core.SkillExecutor)}
}

// Register adds an executor, rejecting duplicates.
func (r *Registry) Register(exec core.SkillExecutor) error {
	if exec == nil || exec.SkillID() == "" {
		return fmt.Errorf("executor with empty skill id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.execs[exec.SkillID()]; dup {
		return fmt.Errorf("executor for %q already registered", exec.SkillID())
	}
	r.execs[exec.SkillID()] = exec
	return nil
}

// Get returns the executor for a skill id, if registered.
func (r *Registry) Get(skillID string) (core.SkillExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exec, ok := r.execs[skillID]
	return exec, ok
}

// IDs returns the registered skill ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.execs))
	for id := range r.execs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
