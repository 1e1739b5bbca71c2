package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskMode selects how far the orchestrator takes a task.
type TaskMode string

const (
	ModeAnalyzeOnly       TaskMode = "analyze-only"
	ModeExecute           TaskMode = "execute"
	ModeAnalyzeAndExecute TaskMode = "analyze-and-execute"
)

// RequiresExecution reports whether the mode includes plan execution.
func (m TaskMode) RequiresExecution() bool {
	return m == ModeExecute || m == ModeAnalyzeAndExecute
}

// TaskStatus describes the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusCreated   TaskStatus = "created"
	TaskStatusAnalyzed  TaskStatus = "analyzed"
	TaskStatusPlanned   TaskStatus = "planned"
	TaskStatusExecuting TaskStatus = "executing"
	TaskStatusExecuted  TaskStatus = "executed"
	TaskStatusLearned   TaskStatus = "learned"
	TaskStatusDone      TaskStatus = "done"
	TaskStatusFailed    TaskStatus = "failed"
)

// Preferences carry caller-supplied hints for a single orchestration.
type Preferences struct {
	// MaxCognitiveLoad caps the aggregate load the plan may demand, 0 means no cap.
	MaxCognitiveLoad float64
	// PreferSpeed trims the recommendation set to the strongest candidates.
	PreferSpeed bool
	// PreferAccuracy keeps the full eligible recommendation set.
	PreferAccuracy bool
	// EnableLearning feeds execution outcomes back into the confidence model.
	EnableLearning bool
	// EnableInsights asks the learning loop for meta-insights.
	EnableInsights bool
}

// Task is the caller-supplied unit of work. It is ephemeral: nothing about it
// survives the Orchestrate call that consumes it.
type Task struct {
	ID          string
	Description string
	Context     map[string]any
	Preferences Preferences
	Mode        TaskMode
	Status      TaskStatus
	CreatedAt   time.Time
}

// NewTask creates a task with a generated ID in the created state.
func NewTask(description string, mode TaskMode) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Context:     map[string]any{},
		Mode:        mode,
		Status:      TaskStatusCreated,
		CreatedAt:   time.Now().UTC(),
		Preferences: Preferences{EnableLearning: true, EnableInsights: true},
	}
}
