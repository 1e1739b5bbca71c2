// Copyright 2026 © The Metis Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for orchestration telemetry. These follow
// OpenTelemetry naming conventions where applicable.
const (
	// Task attributes
	AttrTaskID       = "metis.task.id"
	AttrTaskMode     = "metis.task.mode"
	AttrTaskStatus   = "metis.task.status"
	AttrTaskCategory = "metis.task.category"
	AttrRunID        = "metis.run.id"

	// Analysis attributes
	AttrComplexity      = "metis.analysis.complexity"
	AttrCognitiveLoad   = "metis.analysis.cognitive_load"
	AttrAnalysisDomains = "metis.analysis.domains"
	AttrConfidence      = "metis.analysis.confidence"

	// Plan attributes
	AttrPlanPhases        = "metis.plan.phase_count"
	AttrPlanEstimatedMs   = "metis.plan.estimated_ms"
	AttrPlanConfidence    = "metis.plan.confidence"
	AttrRecommendations   = "metis.plan.recommendation_count"

	// Phase attributes
	AttrPhaseID       = "metis.phase.id"
	AttrPhaseName     = "metis.phase.name"
	AttrPhaseParallel = "metis.phase.parallel"
	AttrPhaseFailures = "metis.phase.failures"

	// Skill attributes
	AttrSkillID         = "metis.skill.id"
	AttrSkillSuccess    = "metis.skill.success"
	AttrSkillDurationMs = "metis.skill.duration_ms"
	AttrSkillDegraded   = "metis.skill.degraded"
)

// TaskAttributes returns common attributes for orchestration spans.
func TaskAttributes(taskID, mode, status, runID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrTaskID, taskID),
	}
	if mode != "" {
		attrs = append(attrs, attribute.String(AttrTaskMode, mode))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrTaskStatus, status))
	}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return attrs
}

// AnalysisAttributes returns attributes describing a task analysis.
func AnalysisAttributes(category, complexity string, load, confidence float64, domains []string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrTaskCategory, category),
		attribute.String(AttrComplexity, complexity),
		attribute.Float64(AttrCognitiveLoad, load),
		attribute.Float64(AttrConfidence, confidence),
	}
	if len(domains) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrAnalysisDomains, domains))
	}
	return attrs
}

// PlanAttributes returns attributes describing an execution plan.
func PlanAttributes(phaseCount, recommendationCount int, estimatedMs float64, confidence float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrPlanPhases, phaseCount),
		attribute.Int(AttrRecommendations, recommendationCount),
		attribute.Float64(AttrPlanEstimatedMs, estimatedMs),
		attribute.Float64(AttrPlanConfidence, confidence),
	}
}

// PhaseAttributes returns attributes for a phase span.
func PhaseAttributes(phaseID, name string, parallel bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPhaseID, phaseID),
		attribute.String(AttrPhaseName, name),
		attribute.Bool(AttrPhaseParallel, parallel),
	}
}

// SkillAttributes returns attributes for a skill invocation span.
func SkillAttributes(skillID string, success, degraded bool, durationMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSkillID, skillID),
		attribute.Bool(AttrSkillSuccess, success),
		attribute.Bool(AttrSkillDegraded, degraded),
		attribute.Float64(AttrSkillDurationMs, durationMs),
	}
}
