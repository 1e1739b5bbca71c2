package core

import "context"

// ExecutionInput is the context handed to a skill executor. When upstream
// skills failed, their artifacts appear in Missing instead of Artifacts and
// the executor is expected to degrade gracefully rather than refuse.
type ExecutionInput struct {
	TaskID      string
	TaskContext map[string]any
	// Artifacts maps artifact names to outputs of already-completed skills.
	Artifacts map[string]any
	// Missing lists declared dependencies that are explicitly unavailable.
	Missing []string
}

// Degraded reports whether the input is missing any declared dependency.
func (in ExecutionInput) Degraded() bool {
	return len(in.Missing) > 0
}

// SkillExecutor is the single capability contract every skill implements.
// Execute must not panic and must not block past the caller's deadline;
// failures are reported through the result, never raised.
type SkillExecutor interface {
	SkillID() string
	Execute(ctx context.Context, input ExecutionInput) SkillExecutionResult
}

// ExecutorFunc adapts a function to the SkillExecutor interface.
type ExecutorFunc struct {
	ID string
	Fn func(ctx context.Context, input ExecutionInput) SkillExecutionResult
}

// SkillID returns the skill identifier.
func (f ExecutorFunc) SkillID() string { return f.ID }

// Execute invokes the wrapped function.
func (f ExecutorFunc) Execute(ctx context.Context, input ExecutionInput) SkillExecutionResult {
	return f.Fn(ctx, input)
}

// MetricsProvider reports the current aggregate cognitive-load estimate.
// Implementations must not embed randomness; scheduling decisions read from
// real process state or a fixed test value.
type MetricsProvider interface {
	CurrentLoad(ctx context.Context) float64
}

// StaticMetrics is a MetricsProvider that always reports a fixed load.
type StaticMetrics struct {
	Load float64
}

// CurrentLoad returns the fixed load value.
func (s StaticMetrics) CurrentLoad(_ context.Context) float64 { return s.Load }
