// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"testing"

	"github.com/metislabs/metis/pkg/core"
)

func TestScriptedExecutorConsumesScript(t *testing.T) {
	exec := NewScriptedExecutor("code-analysis",
		core.SkillExecutionResult{Success: true, Confidence: 0.9},
		core.SkillExecutionResult{Success: false, Errors: []string{"boom"}},
	)

	first := exec.Execute(context.Background(), core.ExecutionInput{TaskID: "t-1"})
	if !first.Success || first.Confidence != 0.9 {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.SkillID != "code-analysis" {
		t.Fatalf("expected skill id backfilled, got %q", first.SkillID)
	}

	second := exec.Execute(context.Background(), core.ExecutionInput{TaskID: "t-1"})
	if second.Success {
		t.Fatalf("expected scripted failure, got %+v", second)
	}

	// The script is exhausted, so the last entry repeats.
	third := exec.Execute(context.Background(), core.ExecutionInput{TaskID: "t-1"})
	if third.Success {
		t.Fatalf("expected repeated last entry, got %+v", third)
	}

	if exec.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", exec.CallCount())
	}
	calls := exec.Calls()
	if calls[0].TaskID != "t-1" {
		t.Fatalf("unexpected recorded input: %+v", calls[0])
	}
}

func TestFailingExecutor(t *testing.T) {
	exec := Failing("system-diagnostics", "probe unavailable")
	result := exec.Execute(context.Background(), core.ExecutionInput{})
	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Errors) != 1 || result.Errors[0] != "probe unavailable" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestEventCollector(t *testing.T) {
	collector := NewEventCollector()
	ctx := context.Background()

	collector.Emit(ctx, core.NewEvent(core.EventTaskAnalyzed, "t-1", nil))
	collector.Emit(ctx, core.NewEvent(core.EventPhaseStarted, "t-1", nil))
	collector.Emit(ctx, core.NewEvent(core.EventPhaseStarted, "t-1", nil))

	if !collector.HasEvent(core.EventTaskAnalyzed) {
		t.Fatal("expected task.analyzed event")
	}
	if collector.HasEvent(core.EventPlanCreated) {
		t.Fatal("did not expect plan.created event")
	}
	if got := collector.Count(core.EventPhaseStarted); got != 2 {
		t.Fatalf("expected 2 phase.started events, got %d", got)
	}

	types := collector.EventTypes()
	if len(types) != 3 || types[0] != core.EventTaskAnalyzed {
		t.Fatalf("unexpected event types: %v", types)
	}

	collector.Reset()
	if len(collector.Events()) != 0 {
		t.Fatal("expected collector to be empty after reset")
	}
}
