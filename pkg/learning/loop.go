package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
)

// Recorder receives per-skill execution results for confidence updates.
// The recommendation engine implements it.
type Recorder interface {
	RecordResult(result core.SkillExecutionResult)
}

// Loop feeds execution outcomes back into the confidence model and the task
// history, and derives meta-insights from accumulated patterns.
type Loop struct {
	recorder Recorder
	history  *History
	tables   *config.Tables
}

// NewLoop creates a feedback loop.
func NewLoop(recorder Recorder, history *History, tables *config.Tables) *Loop {
	return &Loop{recorder: recorder, history: history, tables: tables}
}

// History returns the task history backing this loop.
func (l *Loop) History() *History { return l.history }

// Learn applies the confidence update for every result and appends a task
// summary to the history.
func (l *Loop) Learn(_ context.Context, task *core.Task, analysis core.TaskAnalysis, results []core.SkillExecutionResult) TaskSummary {
	succeeded := true
	confSum := 0.0
	var skillIDs []string
	for _, result := range results {
		l.recorder.RecordResult(result)
		skillIDs = append(skillIDs, result.SkillID)
		confSum += result.Confidence
		if !result.Success {
			succeeded = false
		}
	}

	summary := TaskSummary{
		TaskID:      task.ID,
		Category:    analysis.Category,
		Complexity:  analysis.Complexity,
		SkillIDs:    skillIDs,
		Success:     succeeded && len(results) > 0,
		CompletedAt: time.Now().UTC(),
	}
	if len(results) > 0 {
		summary.Confidence = confSum / float64(len(results))
	}
	l.history.Append(summary)
	return summary
}

// Insight thresholds. A category needs at least minSamples summaries before
// trend or average observations are reported.
const (
	minSamples    = 3
	lowConfidence = 0.5
)

// Insights mines the history for patterns relevant to the given category.
func (l *Loop) Insights(category core.TaskCategory) []string {
	entries := l.history.ForCategory(category)
	var out []string

	if len(entries) >= minSamples && declining(entries[len(entries)-minSamples:]) {
		out = append(out, fmt.Sprintf("declining confidence trend for %s tasks", category))
	}

	if len(entries) >= minSamples {
		sum := 0.0
		for _, entry := range entries {
			sum += entry.Confidence
		}
		if sum/float64(len(entries)) < lowConfidence {
			out = append(out, fmt.Sprintf("low average confidence for %s tasks", category))
		}
	}

	out = append(out, l.missingSkills(category, entries)...)
	return out
}

// missingSkills suggests category skills the recent history never exercised.
func (l *Loop) missingSkills(category core.TaskCategory, entries []TaskSummary) []string {
	if len(entries) < minSamples {
		return nil
	}
	used := make(map[string]bool)
	for _, entry := range entries {
		for _, id := range entry.SkillIDs {
			used[id] = true
		}
	}
	var out []string
	for _, id := range l.tables.SkillsFor(category) {
		if !used[id] {
			out = append(out, fmt.Sprintf("consider exercising skill %q for %s tasks", id, category))
		}
	}
	return out
}

func declining(entries []TaskSummary) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Confidence >= entries[i-1].Confidence {
			return false
		}
	}
	return len(entries) > 1
}
