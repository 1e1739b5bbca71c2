// Package recommend ranks skills for an analyzed task and folds execution
// outcomes back into the shared confidence model.
package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/metislabs/metis/pkg/confidence"
	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/skills"
)

// MinConfidence filters recommendations: anything below is silently excluded.
const MinConfidence = 0.4

const (
	riskBelowAverage = "below-average performance"
	riskVolatility   = "high volatility"
	riskExtreme      = "extreme task complexity"
	riskHighLoad     = "high cognitive load"
)

// Engine produces ranked skill recommendations and applies Bayesian
// confidence updates after execution.
type Engine struct {
	tables  *config.Tables
	catalog *skills.Catalog
	store   *confidence.Store
	metrics core.MetricsProvider
}

// New creates a recommendation engine. metrics may be nil, in which case the
// current load is treated as zero.
func New(tables *config.Tables, catalog *skills.Catalog, store *confidence.Store, metrics core.MetricsProvider) *Engine {
	return &Engine{tables: tables, catalog: catalog, store: store, metrics: metrics}
}

// Store exposes the engine's confidence store for inspection.
func (e *Engine) Store() *confidence.Store { return e.store }

// Recommend returns skill recommendations for an analysis, filtered to
// confidence >= MinConfidence and sorted descending by priority*confidence.
// The result is deterministic for identical inputs and history snapshots.
func (e *Engine) Recommend(ctx context.Context, analysis core.TaskAnalysis) []core.SkillRecommendation {
	load := e.currentLoad(ctx)

	recs := make([]core.SkillRecommendation, 0, len(analysis.RequiredSkills))
	for _, skillID := range analysis.RequiredSkills {
		recs = append(recs, e.build(skillID, analysis, load))
	}

	// Contextual injection: propose relief when load runs hot, and seed the
	// learning skill on complex tasks so later phases have it available.
	if load > 0.7 && !e.hasClass(recs, skills.ClassOptimization) {
		recs = append(recs, e.build("load-optimization", analysis, load))
	}
	if analysis.Category == core.CategoryComplexMulti && !e.hasClass(recs, skills.ClassLearning) {
		recs = append(recs, e.build("pattern-learning", analysis, load))
	}

	filtered := recs[:0]
	for _, rec := range recs {
		if rec.Confidence >= MinConfidence {
			filtered = append(filtered, rec)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score() > filtered[j].Score()
	})
	return filtered
}

func (e *Engine) build(skillID string, analysis core.TaskAnalysis, load float64) core.SkillRecommendation {
	conf := e.skillConfidence(skillID, analysis)
	prio := e.skillPriority(skillID, analysis, load)

	return core.SkillRecommendation{
		SkillID:              skillID,
		Priority:             prio,
		Confidence:           conf,
		ExpectedContribution: e.tables.Contribution.Lookup(skillID, analysis.Category),
		RiskFactors:          e.riskFactors(skillID, analysis),
		Dependencies:         e.tables.DependenciesFor(skillID),
	}
}

// skillConfidence uses the recency-weighted history when present, otherwise
// the static base table, then applies the complexity penalty.
func (e *Engine) skillConfidence(skillID string, analysis core.TaskAnalysis) float64 {
	conf, ok := e.store.RecencyWeightedMean(skillID)
	if !ok {
		conf = e.tables.BaseConfidence.Lookup(skillID, analysis.Category)
	}
	conf += e.tables.Thresholds.Penalty(analysis.Complexity)
	return clamp(conf, 0.1, 1.0)
}

func (e *Engine) skillPriority(skillID string, analysis core.TaskAnalysis, load float64) float64 {
	prio := e.tables.BasePriority.Lookup(skillID, analysis.Category)
	if load > 0.8 {
		prio -= 0.2
	}
	if skill, ok := e.catalog.Get(skillID); ok && skill.SpecializesIn(analysis.Domains) {
		prio += 0.1
	}
	return clamp(prio, 0.1, 1.0)
}

func (e *Engine) riskFactors(skillID string, analysis core.TaskAnalysis) []string {
	var risks []string
	if mean, ok := e.store.Mean(skillID); ok && e.store.Len(skillID) >= 4 && mean < 0.6 {
		risks = append(risks, riskBelowAverage)
	}
	if variance, ok := e.store.Variance(skillID); ok && variance > 0.1 {
		risks = append(risks, riskVolatility)
	}
	if analysis.Complexity == core.ComplexityExtreme {
		risks = append(risks, riskExtreme)
	}
	if analysis.EstimatedCognitiveLoad > 0.8 {
		risks = append(risks, riskHighLoad)
	}
	return risks
}

func (e *Engine) hasClass(recs []core.SkillRecommendation, class skills.Class) bool {
	for _, rec := range recs {
		if e.catalog.Class(rec.SkillID) == class {
			return true
		}
	}
	return false
}

func (e *Engine) currentLoad(ctx context.Context) float64 {
	if e.metrics == nil {
		return 0
	}
	return e.metrics.CurrentLoad(ctx)
}

// slowExecution marks executions whose duration discounts the evidence.
const slowExecution = time.Second

// RecordResult applies the Bayesian confidence update for one execution
// result and appends the posterior to the skill's history.
func (e *Engine) RecordResult(result core.SkillExecutionResult) {
	likelihood := 0.1
	if result.Success {
		performance := 1.0
		if result.ExecutionTime > slowExecution {
			performance = 0.8
		}
		likelihood = math.Min(1, performance*result.Confidence)
	}

	prior := 0.7
	if mean, ok := e.store.Mean(result.SkillID); ok {
		prior = mean
	}

	numerator := likelihood * prior
	denominator := numerator + (1-likelihood)*(1-prior)
	posterior := prior
	if denominator > 0 {
		posterior = numerator / denominator
	}
	e.store.Append(result.SkillID, clamp(posterior, 0.1, 0.95))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
