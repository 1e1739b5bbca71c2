// Package engine executes cognitive plans phase by phase, fanning out
// parallel phases and tolerating partial failure.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/planner"
	"github.com/metislabs/metis/pkg/resilience"
	"github.com/metislabs/metis/pkg/skills"
)

// timeoutFactor scales a skill's static duration estimate into its execution
// timeout. The phase join is bounded the same way.
const timeoutFactor = 5

// Engine runs execution plans against the registered skill executors.
type Engine struct {
	registry *skills.Registry
	tables   *config.Tables
	audit    planner.AuditStore
	events   core.EventEmitter
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithAudit records phase and skill steps to the given store.
func WithAudit(store planner.AuditStore) Option {
	return func(e *Engine) { e.audit = store }
}

// WithEvents emits semantic events during execution.
func WithEvents(emitter core.EventEmitter) Option {
	return func(e *Engine) { e.events = emitter }
}

// New creates an engine over the executor registry and policy tables.
func New(registry *skills.Registry, tables *config.Tables, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		tables:   tables,
		events:   core.NoopEventEmitter{},
		tracer:   otel.Tracer("metis/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the plan's phases strictly in order. Skill failures and
// timeouts are recorded in the results, never returned as errors; the only
// error is task-level cancellation, which stops dispatch of further phases.
func (e *Engine) Execute(ctx context.Context, task *core.Task, plan core.ExecutionPlan) ([]core.SkillExecutionResult, error) {
	runID, _ := core.RunID(ctx)
	artifacts := make(map[string]any)
	var results []core.SkillExecutionResult

	for _, phase := range plan.Phases {
		if err := ctx.Err(); err != nil {
			return results, errors.New(errors.CodeCancelled, "execution cancelled", err).
				WithContext("phase", phase.ID)
		}

		phaseCtx, span := e.tracer.Start(ctx, "Engine.Phase",
			trace.WithAttributes(
				attribute.String("metis.phase.id", phase.ID),
				attribute.String("metis.phase.name", phase.Name),
				attribute.Bool("metis.phase.parallel", phase.Parallel),
			),
		)
		started := time.Now()
		e.events.Emit(phaseCtx, core.NewEvent(core.EventPhaseStarted, task.ID, map[string]any{
			"phase": phase.ID, "name": phase.Name,
		}))
		e.recordAudit(phaseCtx, planner.AuditEvent{
			TaskID: task.ID, RunID: runID, PhaseID: phase.ID,
			Kind: planner.KindPhase, Status: planner.StatusStarted, StartedAt: started,
		})

		phaseResults := e.runPhase(phaseCtx, task, phase, artifacts)
		results = append(results, phaseResults...)

		failures := 0
		for _, res := range phaseResults {
			if res.Success {
				artifacts[skills.Artifact(res.SkillID)] = res.Payload
			} else {
				failures++
			}
		}

		status := planner.StatusCompleted
		if failures == len(phaseResults) && len(phaseResults) > 0 {
			status = planner.StatusFailed
		}
		e.recordAudit(phaseCtx, planner.AuditEvent{
			TaskID: task.ID, RunID: runID, PhaseID: phase.ID,
			Kind: planner.KindPhase, Status: status,
			StartedAt: started, FinishedAt: time.Now(),
		})
		e.events.Emit(phaseCtx, core.NewEvent(core.EventPhaseCompleted, task.ID, map[string]any{
			"phase": phase.ID, "failures": failures,
		}))
		span.SetAttributes(attribute.Int("metis.phase.failures", failures))
		span.End()
	}
	return results, nil
}

// runPhase dispatches the phase members and joins on all of them. Each result
// is written to a pre-allocated slot keyed by position, so concurrent writers
// never interleave.
func (e *Engine) runPhase(ctx context.Context, task *core.Task, phase core.CognitivePhase, artifacts map[string]any) []core.SkillExecutionResult {
	if phase.EstimatedTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeoutFactor*phase.EstimatedTime)
		defer cancel()
	}

	slots := make([]core.SkillExecutionResult, len(phase.SkillIDs))
	if phase.Parallel {
		var wg sync.WaitGroup
		for i, skillID := range phase.SkillIDs {
			input := e.buildInput(task, skillID, artifacts)
			wg.Add(1)
			go func(i int, skillID string) {
				defer wg.Done()
				slots[i] = e.runSkill(ctx, task, skillID, input)
			}(i, skillID)
		}
		wg.Wait()
		return slots
	}

	for i, skillID := range phase.SkillIDs {
		input := e.buildInput(task, skillID, artifacts)
		slots[i] = e.runSkill(ctx, task, skillID, input)
		if slots[i].Success {
			artifacts[skills.Artifact(skillID)] = slots[i].Payload
		}
	}
	return slots
}

// buildInput resolves the skill's declared artifact dependencies. Artifacts a
// failed producer never published are listed as missing so dependents run
// with reduced context instead of being skipped.
func (e *Engine) buildInput(task *core.Task, skillID string, artifacts map[string]any) core.ExecutionInput {
	input := core.ExecutionInput{
		TaskID:      task.ID,
		TaskContext: task.Context,
	}
	for _, artifact := range e.tables.DependenciesFor(skillID) {
		if value, ok := artifacts[artifact]; ok {
			if input.Artifacts == nil {
				input.Artifacts = make(map[string]any)
			}
			input.Artifacts[artifact] = value
		} else {
			input.Missing = append(input.Missing, artifact)
		}
	}
	return input
}

func (e *Engine) runSkill(ctx context.Context, task *core.Task, skillID string, input core.ExecutionInput) core.SkillExecutionResult {
	runID, _ := core.RunID(ctx)
	started := time.Now()

	e.events.Emit(ctx, core.NewEvent(core.EventSkillStarted, task.ID, map[string]any{
		"skill": skillID, "degraded": input.Degraded(),
	}))

	exec, ok := e.registry.Get(skillID)
	var result core.SkillExecutionResult
	if !ok {
		result = core.SkillExecutionResult{
			SkillID:       skillID,
			Success:       false,
			ExecutionTime: time.Since(started),
			Errors:        []string{fmt.Sprintf("no executor registered for %q", skillID)},
		}
	} else {
		result = e.invoke(ctx, exec, skillID, input, started)
	}

	status := planner.StatusCompleted
	errText := ""
	if !result.Success {
		status = planner.StatusFailed
		if len(result.Errors) > 0 {
			errText = result.Errors[0]
		}
	}
	e.recordAudit(ctx, planner.AuditEvent{
		TaskID: task.ID, RunID: runID, SkillID: skillID,
		Kind: planner.KindSkill, Status: status, Error: errText,
		StartedAt: started, FinishedAt: time.Now(),
	})
	e.events.Emit(ctx, core.NewEvent(core.EventSkillCompleted, task.ID, map[string]any{
		"skill": skillID, "success": result.Success,
	}))
	return result
}

// invoke bounds the executor call by the skill's timeout. On expiry the skill
// is recorded as failed and abandoned; siblings keep running.
func (e *Engine) invoke(ctx context.Context, exec core.SkillExecutor, skillID string, input core.ExecutionInput, started time.Time) core.SkillExecutionResult {
	timeout := resilience.TimeoutConfig{Duration: timeoutFactor * e.tables.Duration(skillID)}
	value, err := resilience.WithTimeoutResult(ctx, timeout, func() (any, error) {
		return exec.Execute(ctx, input), nil
	})
	if err != nil {
		return core.SkillExecutionResult{
			SkillID:       skillID,
			Success:       false,
			ExecutionTime: time.Since(started),
			Errors:        []string{"timeout"},
		}
	}
	result := value.(core.SkillExecutionResult)
	if result.SkillID == "" {
		result.SkillID = skillID
	}
	if result.ExecutionTime == 0 {
		result.ExecutionTime = time.Since(started)
	}
	return result
}

func (e *Engine) recordAudit(ctx context.Context, event planner.AuditEvent) {
	if e.audit == nil {
		return
	}
	// Audit is advisory; a failing store must not fail the run.
	_ = e.audit.Record(ctx, event)
}
