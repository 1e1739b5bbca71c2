// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator_test

import (
	"context"
	"testing"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/errors"
	"github.com/metislabs/metis/pkg/orchestrator"
	"github.com/metislabs/metis/pkg/skills"
	metistesting "github.com/metislabs/metis/pkg/testing"
)

func newRegistry(t *testing.T) *skills.Registry {
	t.Helper()
	registry := skills.NewRegistry()
	for _, skill := range skills.Default().All() {
		exec := metistesting.Succeeding(skill.ID, 0.85, map[string]any{"summary": skill.ID + " ok"})
		if err := registry.Register(exec); err != nil {
			t.Fatalf("register %s: %v", skill.ID, err)
		}
	}
	return registry
}

func newOrchestrator(t *testing.T, opts ...orchestrator.Option) (*orchestrator.Orchestrator, *metistesting.EventCollector) {
	t.Helper()
	collector := metistesting.NewEventCollector()
	opts = append([]orchestrator.Option{
		orchestrator.WithRegistry(newRegistry(t)),
		orchestrator.WithEvents(collector),
	}, opts...)
	o, err := orchestrator.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return o, collector
}

func TestOrchestrateCodeAnalysisTask(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Analyze the quality of this function", core.ModeExecute)
	task.Context["code"] = "func add(a, b int) int { return a + b }"

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if result.Analysis.Category != core.CategoryCodeAnalysis {
		t.Fatalf("expected code-analysis category, got %s", result.Analysis.Category)
	}
	if result.Analysis.Complexity != core.ComplexityLow {
		t.Fatalf("expected low complexity, got %s", result.Analysis.Complexity)
	}
	if len(result.Recommendations) == 0 || result.Recommendations[0].SkillID != "code-analysis" {
		t.Fatalf("expected code-analysis ranked first, got %+v", result.Recommendations)
	}
	if result.Plan == nil {
		t.Fatal("expected an execution plan")
	}
	if result.Status != core.TaskStatusDone {
		t.Fatalf("expected done status, got %s", result.Status)
	}
	if !result.Succeeded() {
		t.Fatalf("expected all skills to succeed: %+v", result.Results)
	}
	if len(result.Results) != len(result.Recommendations) {
		t.Fatalf("expected %d results, got %d", len(result.Recommendations), len(result.Results))
	}
}

func TestOrchestrateProblemSolvingTask(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Debug intermittent 500 errors in production", core.ModeAnalyzeAndExecute)

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if result.Analysis.Category != core.CategoryProblemSolving {
		t.Fatalf("expected problem-solving category, got %s", result.Analysis.Category)
	}
	found := false
	for _, rec := range result.Recommendations {
		if rec.SkillID == "structured-reasoning" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected structured-reasoning in recommendations: %+v", result.Recommendations)
	}
	hasSystems := false
	for _, d := range result.Analysis.Domains {
		if d == "systems" {
			hasSystems = true
		}
	}
	if !hasSystems {
		t.Fatalf("expected systems domain, got %v", result.Analysis.Domains)
	}
}

func TestOrchestrateComplexMultistepTask(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Analyze, optimize, and learn from this process", core.ModeExecute)
	task.Context["optimization"] = true

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if result.Analysis.Category != core.CategoryComplexMulti {
		t.Fatalf("expected complex-multistep category, got %s", result.Analysis.Category)
	}
	if result.Analysis.EstimatedCognitiveLoad <= 0.5 {
		t.Fatalf("expected load above 0.5, got %.2f", result.Analysis.EstimatedCognitiveLoad)
	}
	if len(result.Recommendations) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(result.Recommendations))
	}
	if result.Plan == nil || len(result.Plan.Phases) != 3 {
		t.Fatalf("expected 3 phases, got %+v", result.Plan)
	}
	if !result.Plan.Phases[0].Parallel {
		t.Fatal("expected first phase to be parallel")
	}
	last := result.Plan.Phases[len(result.Plan.Phases)-1]
	if len(last.SkillIDs) != 1 || last.SkillIDs[0] != "pattern-learning" {
		t.Fatalf("expected pattern-learning in the final phase, got %v", last.SkillIDs)
	}
	if result.Status != core.TaskStatusDone {
		t.Fatalf("expected done status, got %s", result.Status)
	}
}

func TestOrchestrateEmptyDescription(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("", core.ModeExecute)

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if result.Analysis.Category != core.CategoryResearch {
		t.Fatalf("expected research fallback, got %s", result.Analysis.Category)
	}
	if result.Analysis.Confidence <= 0 {
		t.Fatalf("expected positive confidence, got %.2f", result.Analysis.Confidence)
	}
	if result.Status != core.TaskStatusDone {
		t.Fatalf("expected done status, got %s", result.Status)
	}
}

func TestOrchestrateAnalyzeOnlyStopsAtPlan(t *testing.T) {
	o, collector := newOrchestrator(t)

	task := core.NewTask("Analyze the quality of this function", core.ModeAnalyzeOnly)
	task.Context["code"] = "package main"

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if result.Status != core.TaskStatusPlanned {
		t.Fatalf("expected planned status, got %s", result.Status)
	}
	if result.Plan == nil {
		t.Fatal("expected a plan even without execution")
	}
	if len(result.Results) != 0 {
		t.Fatalf("expected no execution results, got %d", len(result.Results))
	}
	if collector.HasEvent(core.EventSkillCompleted) {
		t.Fatal("analyze-only run must not execute skills")
	}
}

func TestOrchestrateExecuteWithNoEligibleSkills(t *testing.T) {
	o, _ := newOrchestrator(t)

	// Poison the confidence history so every research skill falls below the
	// recommendation filter.
	for i := 0; i < 10; i++ {
		o.ConfidenceStore().Append("content-analysis", 0.2)
		o.ConfidenceStore().Append("structured-reasoning", 0.2)
	}

	task := core.NewTask("", core.ModeExecute)
	result, err := o.Orchestrate(context.Background(), task)
	if err == nil {
		t.Fatal("expected a structural error")
	}
	if !errors.IsStructural(err) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if result.Status != core.TaskStatusFailed {
		t.Fatalf("expected failed status, got %s", result.Status)
	}
}

func TestOrchestratePreferSpeedTrims(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Analyze, optimize, and learn from this process", core.ModeExecute)
	task.Context["optimization"] = true
	task.Preferences.PreferSpeed = true

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if len(result.Recommendations) != 3 {
		t.Fatalf("expected trim to 3 recommendations, got %d", len(result.Recommendations))
	}
}

func TestOrchestrateCognitiveLoadCap(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Analyze, optimize, and learn from this process", core.ModeExecute)
	task.Context["optimization"] = true
	task.Preferences.MaxCognitiveLoad = 1.0

	result, err := o.Orchestrate(context.Background(), task)
	if err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("the load cap must keep at least one recommendation")
	}
	tables := config.DefaultTables()
	sum := 0.0
	for _, rec := range result.Recommendations {
		sum += tables.Load(rec.SkillID)
	}
	if sum > 1.0 {
		t.Fatalf("expected aggregate load within cap, got %.2f", sum)
	}
}

func TestOrchestrateLearningUpdatesHistory(t *testing.T) {
	o, _ := newOrchestrator(t)

	task := core.NewTask("Analyze the quality of this function", core.ModeExecute)
	task.Context["code"] = "package main"

	if _, err := o.Orchestrate(context.Background(), task); err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}

	if o.ConfidenceStore().Len("code-analysis") != 1 {
		t.Fatalf("expected one confidence sample for code-analysis, got %d",
			o.ConfidenceStore().Len("code-analysis"))
	}
	if o.TaskHistory().Len() != 1 {
		t.Fatalf("expected one task summary, got %d", o.TaskHistory().Len())
	}
	rate, ok := o.TaskHistory().SuccessRate(core.CategoryCodeAnalysis)
	if !ok || rate != 1.0 {
		t.Fatalf("expected success rate 1.0, got %.2f ok=%v", rate, ok)
	}
}

func TestOrchestrateEventSequence(t *testing.T) {
	o, collector := newOrchestrator(t)

	task := core.NewTask("Analyze the quality of this function", core.ModeExecute)
	task.Context["code"] = "package main"

	if _, err := o.Orchestrate(context.Background(), task); err != nil {
		t.Fatalf("Orchestrate: %v", err)
	}

	types := collector.EventTypes()
	if len(types) < 4 {
		t.Fatalf("expected at least 4 events, got %v", types)
	}
	if types[0] != core.EventTaskAnalyzed {
		t.Fatalf("expected task.analyzed first, got %s", types[0])
	}
	if types[1] != core.EventPlanCreated {
		t.Fatalf("expected plan.created second, got %s", types[1])
	}
	if types[len(types)-1] != core.EventTaskDone {
		t.Fatalf("expected task.done last, got %s", types[len(types)-1])
	}
	for _, want := range []core.EventType{
		core.EventPhaseStarted, core.EventPhaseCompleted,
		core.EventSkillStarted, core.EventSkillCompleted,
		core.EventTaskLearned,
	} {
		if !collector.HasEvent(want) {
			t.Fatalf("missing %s event in %v", want, types)
		}
	}
}
