// Package orchestrator wires the analysis, recommendation, planning,
// execution, and learning components into the single Orchestrate entry point.
package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/metislabs/metis/pkg/analyzer"
	"github.com/metislabs/metis/pkg/confidence"
	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/engine"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/learning"
	"github.com/metislabs/metis/pkg/optimizer"
	"github.com/metislabs/metis/pkg/planner"
	"github.com/metislabs/metis/pkg/recommend"
	"github.com/metislabs/metis/pkg/skills"
	"github.com/metislabs/metis/pkg/telemetry"
)

// speedTrimLimit is how many recommendations survive a prefer-speed request.
const speedTrimLimit = 3

// Orchestrator owns the shared learning state and runs tasks through the
// cognitive pipeline. Safe for concurrent Orchestrate calls.
type Orchestrator struct {
	catalog  *skills.Catalog
	tables   *config.Tables
	registry *skills.Registry
	store    *confidence.Store
	history  *learning.History
	metrics  core.MetricsProvider
	events   core.EventEmitter
	audit    planner.AuditStore
	otelM    *telemetry.OrchestrationMetrics
	logger   *slog.Logger
	tracer   trace.Tracer

	confidenceLimit  int
	taskHistoryLimit int

	analyzer  *analyzer.Analyzer
	recommend *recommend.Engine
	optimizer *optimizer.Optimizer
	planner   *planner.Planner
	engine    *engine.Engine
	loop      *learning.Loop
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCatalog replaces the built-in skill catalog.
func WithCatalog(catalog *skills.Catalog) Option {
	return func(o *Orchestrator) { o.catalog = catalog }
}

// WithTables replaces the built-in policy tables.
func WithTables(tables *config.Tables) Option {
	return func(o *Orchestrator) { o.tables = tables }
}

// WithRegistry sets the skill executor registry.
func WithRegistry(registry *skills.Registry) Option {
	return func(o *Orchestrator) { o.registry = registry }
}

// WithMetricsProvider sets the cognitive-load source.
func WithMetricsProvider(metrics core.MetricsProvider) Option {
	return func(o *Orchestrator) { o.metrics = metrics }
}

// WithEvents emits semantic events during orchestration.
func WithEvents(emitter core.EventEmitter) Option {
	return func(o *Orchestrator) { o.events = emitter }
}

// WithAudit records phase and skill steps to the given store.
func WithAudit(store planner.AuditStore) Option {
	return func(o *Orchestrator) { o.audit = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithOrchestrationMetrics records task and skill counters.
func WithOrchestrationMetrics(m *telemetry.OrchestrationMetrics) Option {
	return func(o *Orchestrator) { o.otelM = m }
}

// WithConfidenceHistoryLimit bounds each skill's confidence history.
func WithConfidenceHistoryLimit(limit int) Option {
	return func(o *Orchestrator) { o.confidenceLimit = limit }
}

// WithTaskHistoryLimit bounds the learning loop's task summary buffer.
func WithTaskHistoryLimit(limit int) Option {
	return func(o *Orchestrator) { o.taskHistoryLimit = limit }
}

// New builds an orchestrator. The policy tables are validated against the
// catalog up front; an incomplete table is a structural error and no
// orchestrator is returned.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		catalog:          skills.Default(),
		tables:           config.DefaultTables(),
		registry:         skills.NewRegistry(),
		events:           core.NoopEventEmitter{},
		logger:           slog.Default(),
		tracer:           otel.Tracer("metis/orchestrator"),
		confidenceLimit:  confidence.DefaultHistoryLimit,
		taskHistoryLimit: learning.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.tables.Validate(o.catalog); err != nil {
		return nil, err
	}

	o.store = confidence.NewStoreWithLimit(o.confidenceLimit)
	o.history = learning.NewHistory(o.taskHistoryLimit)
	o.analyzer = analyzer.New(o.tables, o.history)
	o.recommend = recommend.New(o.tables, o.catalog, o.store, o.metrics)
	o.optimizer = optimizer.New(o.tables, o.catalog)
	o.planner = planner.New(o.tables)

	engineOpts := []engine.Option{engine.WithEvents(o.events)}
	if o.audit != nil {
		engineOpts = append(engineOpts, engine.WithAudit(o.audit))
	}
	o.engine = engine.New(o.registry, o.tables, engineOpts...)
	o.loop = learning.NewLoop(o.recommend, o.history, o.tables)
	return o, nil
}

// ConfidenceStore exposes the shared per-skill confidence history.
func (o *Orchestrator) ConfidenceStore() *confidence.Store { return o.store }

// TaskHistory exposes the completed-task history.
func (o *Orchestrator) TaskHistory() *learning.History { return o.history }

// Orchestrate runs a task through the pipeline. It returns an error only for
// structural failures (invalid configuration, an execute-mode task with no
// eligible skills) or task-level cancellation; skill failures are reported
// inside the result.
func (o *Orchestrator) Orchestrate(ctx context.Context, task *core.Task) (*core.OrchestrationResult, error) {
	ctx, runID := core.EnsureRunID(ctx)
	started := time.Now()

	ctx, span := o.tracer.Start(ctx, "Orchestrator.Orchestrate",
		trace.WithAttributes(telemetry.TaskAttributes(task.ID, string(task.Mode), string(task.Status), runID)...))
	defer span.End()

	result := &core.OrchestrationResult{TaskID: task.ID}
	fail := func(err error) (*core.OrchestrationResult, error) {
		task.Status = core.TaskStatusFailed
		result.Status = task.Status
		result.Duration = time.Since(started)
		o.otelM.RecordError(ctx, err, "orchestrator")
		o.logger.ErrorContext(ctx, "orchestration failed",
			slog.String("task_id", task.ID), slog.Any("error", err))
		return result, err
	}

	// Analysis never fails; empty input degrades to a research/low result.
	analysis := o.analyzer.Analyze(task)
	task.Status = core.TaskStatusAnalyzed
	result.Analysis = analysis
	span.SetAttributes(telemetry.AnalysisAttributes(
		string(analysis.Category), string(analysis.Complexity),
		analysis.EstimatedCognitiveLoad, analysis.Confidence, analysis.Domains)...)
	o.otelM.RecordLoad(ctx, string(analysis.Category), analysis.EstimatedCognitiveLoad)
	o.events.Emit(ctx, core.NewEvent(core.EventTaskAnalyzed, task.ID, map[string]any{
		"category": analysis.Category, "complexity": analysis.Complexity,
	}))
	o.logger.InfoContext(ctx, "task analyzed",
		slog.String("task_id", task.ID),
		slog.String("category", string(analysis.Category)),
		slog.String("complexity", string(analysis.Complexity)))

	recs := o.recommend.Recommend(ctx, analysis)
	recs = applyPreferences(recs, task.Preferences, o.tables)
	result.Recommendations = recs

	if len(recs) == 0 {
		if task.Mode.RequiresExecution() {
			return fail(errors.New(errors.CodeStructural,
				"no eligible skill recommendations for execution", nil).
				WithContext("category", string(analysis.Category)))
		}
		task.Status = core.TaskStatusPlanned
		result.Status = task.Status
		result.Duration = time.Since(started)
		return result, nil
	}

	ordered, groups := o.optimizer.Optimize(recs, analysis)
	result.Recommendations = ordered

	plan, err := o.planner.BuildPlan(analysis, ordered, groups)
	if err != nil {
		return fail(err)
	}
	task.Status = core.TaskStatusPlanned
	result.Plan = &plan
	span.SetAttributes(telemetry.PlanAttributes(
		len(plan.Phases), len(ordered),
		float64(plan.TotalEstimatedTime.Milliseconds()), plan.ConfidenceScore)...)
	o.events.Emit(ctx, core.NewEvent(core.EventPlanCreated, task.ID, map[string]any{
		"phases": len(plan.Phases), "estimated_ms": plan.TotalEstimatedTime.Milliseconds(),
	}))

	if !task.Mode.RequiresExecution() {
		result.Status = task.Status
		result.Duration = time.Since(started)
		o.otelM.RecordTask(ctx, string(analysis.Category), string(task.Status))
		return result, nil
	}

	task.Status = core.TaskStatusExecuting
	results, err := o.engine.Execute(ctx, task, plan)
	result.Results = results
	if err != nil {
		return fail(err)
	}
	task.Status = core.TaskStatusExecuted
	for _, res := range results {
		o.otelM.RecordSkill(ctx, res.SkillID, res.Success, res.ExecutionTime)
	}

	if task.Preferences.EnableLearning {
		o.loop.Learn(ctx, task, analysis, results)
		task.Status = core.TaskStatusLearned
		o.events.Emit(ctx, core.NewEvent(core.EventTaskLearned, task.ID, map[string]any{
			"results": len(results),
		}))
	}
	if task.Preferences.EnableInsights {
		result.Insights = o.loop.Insights(analysis.Category)
	}

	task.Status = core.TaskStatusDone
	result.Status = task.Status
	result.Duration = time.Since(started)
	o.otelM.RecordTask(ctx, string(analysis.Category), string(task.Status))
	o.events.Emit(ctx, core.NewEvent(core.EventTaskDone, task.ID, map[string]any{
		"succeeded": result.Succeeded(), "duration_ms": result.Duration.Milliseconds(),
	}))
	o.logger.InfoContext(ctx, "task done",
		slog.String("task_id", task.ID),
		slog.Bool("succeeded", result.Succeeded()),
		slog.Duration("duration", result.Duration))
	span.SetAttributes(attribute.Bool("metis.task.succeeded", result.Succeeded()))
	return result, nil
}

// applyPreferences trims the eligible recommendations per caller hints.
// PreferAccuracy keeps the full set and wins over PreferSpeed.
func applyPreferences(recs []core.SkillRecommendation, prefs core.Preferences, tables *config.Tables) []core.SkillRecommendation {
	out := append([]core.SkillRecommendation(nil), recs...)

	if prefs.MaxCognitiveLoad > 0 {
		for len(out) > 1 && totalLoad(out, tables) > prefs.MaxCognitiveLoad {
			// Drop the weakest recommendation until the plan fits the cap.
			weakest := 0
			for i, rec := range out {
				if rec.Score() < out[weakest].Score() {
					weakest = i
				}
			}
			out = append(out[:weakest], out[weakest+1:]...)
		}
	}

	if prefs.PreferSpeed && !prefs.PreferAccuracy && len(out) > speedTrimLimit {
		trimmed := append([]core.SkillRecommendation(nil), out...)
		sort.SliceStable(trimmed, func(i, j int) bool {
			return trimmed[i].Score() > trimmed[j].Score()
		})
		keep := make(map[string]bool, speedTrimLimit)
		for _, rec := range trimmed[:speedTrimLimit] {
			keep[rec.SkillID] = true
		}
		kept := out[:0]
		for _, rec := range out {
			if keep[rec.SkillID] {
				kept = append(kept, rec)
			}
		}
		out = kept
	}
	return out
}

func totalLoad(recs []core.SkillRecommendation, tables *config.Tables) float64 {
	sum := 0.0
	for _, rec := range recs {
		sum += tables.Load(rec.SkillID)
	}
	return sum
}
