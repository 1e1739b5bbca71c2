// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing orchestrations: scripted
// skill executors and event collectors.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/metislabs/metis/pkg/core"
)

// ScriptedExecutor is a skill executor with pre-scripted results. Each call
// consumes the next script entry; once the script runs out the last entry
// repeats. Safe for concurrent use.
type ScriptedExecutor struct {
	skillID string
	mu      sync.Mutex
	script  []core.SkillExecutionResult
	calls   []core.ExecutionInput
	delay   time.Duration
}

// NewScriptedExecutor creates a scripted executor for the given skill.
func NewScriptedExecutor(skillID string, script ...core.SkillExecutionResult) *ScriptedExecutor {
	if len(script) == 0 {
		script = []core.SkillExecutionResult{{
			SkillID:    skillID,
			Success:    true,
			Confidence: 0.8,
		}}
	}
	return &ScriptedExecutor{skillID: skillID, script: script}
}

// Succeeding returns an executor that always succeeds with the given
// confidence and payload.
func Succeeding(skillID string, confidence float64, payload any) *ScriptedExecutor {
	return NewScriptedExecutor(skillID, core.SkillExecutionResult{
		SkillID:    skillID,
		Success:    true,
		Confidence: confidence,
		Payload:    payload,
	})
}

// Failing returns an executor that always fails with the given message.
func Failing(skillID, message string) *ScriptedExecutor {
	return NewScriptedExecutor(skillID, core.SkillExecutionResult{
		SkillID: skillID,
		Success: false,
		Errors:  []string{message},
	})
}

// WithDelay makes every execution sleep before returning, for timeout tests.
func (e *ScriptedExecutor) WithDelay(d time.Duration) *ScriptedExecutor {
	e.delay = d
	return e
}

// SkillID implements core.SkillExecutor.
func (e *ScriptedExecutor) SkillID() string { return e.skillID }

// Execute returns the next scripted result and records the input.
func (e *ScriptedExecutor) Execute(ctx context.Context, input core.ExecutionInput) core.SkillExecutionResult {
	if e.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(e.delay):
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, input)
	idx := len(e.calls) - 1
	if idx >= len(e.script) {
		idx = len(e.script) - 1
	}
	result := e.script[idx]
	if result.SkillID == "" {
		result.SkillID = e.skillID
	}
	return result
}

// Calls returns the inputs the executor received, in call order.
func (e *ScriptedExecutor) Calls() []core.ExecutionInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.ExecutionInput(nil), e.calls...)
}

// CallCount returns how many times the executor ran.
func (e *ScriptedExecutor) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

var _ core.SkillExecutor = (*ScriptedExecutor)(nil)
