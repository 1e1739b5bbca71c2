package core

import (
	"context"
	"testing"
)

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask("summarize this report", ModeAnalyzeOnly)
	if task.ID == "" {
		t.Fatal("expected generated id")
	}
	if task.Status != TaskStatusCreated {
		t.Fatalf("unexpected status: %s", task.Status)
	}
	if !task.Preferences.EnableLearning {
		t.Fatal("learning should default on")
	}
	if task.Mode.RequiresExecution() {
		t.Fatal("analyze-only must not require execution")
	}
	if !ModeAnalyzeAndExecute.RequiresExecution() {
		t.Fatal("analyze-and-execute must require execution")
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatal("expected run id")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id {
		t.Fatalf("run id changed: %s vs %s", id, id2)
	}
	if ctx2 != ctx {
		t.Fatal("context should be unchanged when run id exists")
	}
}

func TestExecutionInputDegraded(t *testing.T) {
	in := ExecutionInput{Artifacts: map[string]any{"a.result": 1}}
	if in.Degraded() {
		t.Fatal("input with no missing deps is not degraded")
	}
	in.Missing = []string{"b.result"}
	if !in.Degraded() {
		t.Fatal("input with missing deps must be degraded")
	}
}

func TestOrchestrationResultSucceeded(t *testing.T) {
	res := &OrchestrationResult{Results: []SkillExecutionResult{
		{SkillID: "a", Success: true},
		{SkillID: "b", Success: false},
	}}
	if res.Succeeded() {
		t.Fatal("result with a failed skill is not a full success")
	}
	res.Results[1].Success = true
	if !res.Succeeded() {
		t.Fatal("expected full success")
	}
}
