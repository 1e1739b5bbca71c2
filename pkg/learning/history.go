// Package learning folds execution results back into the confidence model
// and mines completed-task history for meta-insights.
package learning

import (
	"sync"
	"time"

	"github.com/metislabs/metis/pkg/core"
)

// DefaultHistoryLimit bounds the task history ring buffer.
const DefaultHistoryLimit = 256

// TaskSummary captures one completed orchestration for pattern mining.
type TaskSummary struct {
	TaskID      string
	Category    core.TaskCategory
	Complexity  core.Complexity
	SkillIDs    []string
	Success     bool
	Confidence  float64
	Duration    time.Duration
	CompletedAt time.Time
}

// History is a bounded, concurrency-safe log of task summaries. The oldest
// entry is evicted once the limit is reached.
type History struct {
	mu      sync.RWMutex
	limit   int
	entries []TaskSummary
}

// NewHistory creates a history with the given capacity. Non-positive limits
// fall back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records a summary, evicting the oldest entry beyond capacity.
func (h *History) Append(summary TaskSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, summary)
	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
	}
}

// Len returns the number of retained summaries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// All returns a snapshot of the retained summaries, oldest first.
func (h *History) All() []TaskSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]TaskSummary(nil), h.entries...)
}

// ForCategory returns retained summaries for one category, oldest first.
func (h *History) ForCategory(category core.TaskCategory) []TaskSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []TaskSummary
	for _, entry := range h.entries {
		if entry.Category == category {
			out = append(out, entry)
		}
	}
	return out
}

// SuccessRate reports the fraction of successful tasks in a category. The
// second return is false when the category has no history.
func (h *History) SuccessRate(category core.TaskCategory) (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total, succeeded := 0, 0
	for _, entry := range h.entries {
		if entry.Category != category {
			continue
		}
		total++
		if entry.Success {
			succeeded++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(succeeded) / float64(total), true
}
