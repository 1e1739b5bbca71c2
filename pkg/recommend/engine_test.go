package recommend

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/metislabs/metis/pkg/confidence"
	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
	"github.com/metislabs/metis/pkg/skills"
)

func newEngine(metrics core.MetricsProvider) *Engine {
	return New(config.DefaultTables(), skills.Default(), confidence.NewStore(), metrics)
}

func codeAnalysis() core.TaskAnalysis {
	return core.TaskAnalysis{
		Category:               core.CategoryCodeAnalysis,
		Complexity:             core.ComplexityLow,
		Domains:                []string{"software"},
		RequiredSkills:         []string{"code-analysis", "content-analysis", "structured-reasoning"},
		EstimatedCognitiveLoad: 0.2,
	}
}

func TestRecommendRanksAnalysisSkillFirst(t *testing.T) {
	engine := newEngine(nil)
	recs := engine.Recommend(context.Background(), codeAnalysis())
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	if recs[0].SkillID != "code-analysis" {
		t.Fatalf("expected code-analysis first, got %s", recs[0].SkillID)
	}
}

func TestRecommendDeterministic(t *testing.T) {
	engine := newEngine(nil)
	engine.Store().Append("code-analysis", 0.8)
	engine.Store().Append("code-analysis", 0.85)

	first := engine.Recommend(context.Background(), codeAnalysis())
	second := engine.Recommend(context.Background(), codeAnalysis())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must yield identical lists:\n%v\n%v", first, second)
	}
}

func TestRecommendRangeInvariants(t *testing.T) {
	engine := newEngine(nil)
	analysis := codeAnalysis()
	analysis.Complexity = core.ComplexityExtreme
	analysis.EstimatedCognitiveLoad = 0.9

	for _, rec := range engine.Recommend(context.Background(), analysis) {
		if rec.Confidence < MinConfidence || rec.Confidence > 1.0 {
			t.Fatalf("confidence out of range: %v", rec.Confidence)
		}
		if rec.Priority < 0.1 || rec.Priority > 1.0 {
			t.Fatalf("priority out of range: %v", rec.Priority)
		}
		if rec.ExpectedContribution < 0 || rec.ExpectedContribution > 1 {
			t.Fatalf("contribution out of range: %v", rec.ExpectedContribution)
		}
	}
}

func TestRecommendFiltersLowConfidence(t *testing.T) {
	engine := newEngine(nil)
	// Flood one skill with poor outcomes so its clamped confidence drops
	// below the threshold under an extreme-complexity penalty.
	for i := 0; i < 10; i++ {
		engine.Store().Append("structured-reasoning", 0.2)
	}
	analysis := codeAnalysis()
	analysis.Complexity = core.ComplexityExtreme

	for _, rec := range engine.Recommend(context.Background(), analysis) {
		if rec.SkillID == "structured-reasoning" {
			t.Fatalf("low-confidence skill must be excluded, got %v", rec)
		}
	}
}

func TestRecommendInjectsOptimizationUnderLoad(t *testing.T) {
	engine := newEngine(core.StaticMetrics{Load: 0.75})
	recs := engine.Recommend(context.Background(), codeAnalysis())
	found := false
	for _, rec := range recs {
		if rec.SkillID == "load-optimization" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected optimization injection at high load: %v", recs)
	}
}

func TestRecommendInjectsLearningForComplexTasks(t *testing.T) {
	engine := newEngine(nil)
	analysis := core.TaskAnalysis{
		Category:       core.CategoryComplexMulti,
		Complexity:     core.ComplexityHigh,
		RequiredSkills: []string{"content-analysis", "code-analysis"},
	}
	recs := engine.Recommend(context.Background(), analysis)
	found := false
	for _, rec := range recs {
		if rec.SkillID == "pattern-learning" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected learning injection for complex tasks: %v", recs)
	}
}

func TestPriorityPenalizedUnderOverload(t *testing.T) {
	relaxed := newEngine(core.StaticMetrics{Load: 0.1})
	stressed := newEngine(core.StaticMetrics{Load: 0.85})
	analysis := codeAnalysis()

	base := relaxed.Recommend(context.Background(), analysis)
	loaded := stressed.Recommend(context.Background(), analysis)
	if loaded[0].Priority >= base[0].Priority {
		t.Fatalf("overload must reduce priority: %v vs %v", loaded[0].Priority, base[0].Priority)
	}
}

func TestRiskFactorsWeakHistoryAndLoad(t *testing.T) {
	engine := newEngine(nil)
	for _, v := range []float64{0.55, 0.56, 0.54, 0.55} {
		engine.Store().Append("system-diagnostics", v)
	}
	analysis := core.TaskAnalysis{
		Category:               core.CategoryProblemSolving,
		Complexity:             core.ComplexityMedium,
		RequiredSkills:         []string{"system-diagnostics"},
		EstimatedCognitiveLoad: 0.85,
	}
	recs := engine.Recommend(context.Background(), analysis)
	if len(recs) != 1 {
		t.Fatalf("expected one recommendation, got %d", len(recs))
	}
	assertRisks(t, recs[0].RiskFactors, riskBelowAverage, riskHighLoad)
}

func TestRiskFactorsExtremeComplexity(t *testing.T) {
	engine := newEngine(nil)
	for i := 0; i < 4; i++ {
		engine.Store().Append("system-diagnostics", 0.9)
	}
	analysis := core.TaskAnalysis{
		Category:       core.CategoryProblemSolving,
		Complexity:     core.ComplexityExtreme,
		RequiredSkills: []string{"system-diagnostics"},
	}
	recs := engine.Recommend(context.Background(), analysis)
	if len(recs) != 1 {
		t.Fatalf("expected one recommendation, got %d", len(recs))
	}
	assertRisks(t, recs[0].RiskFactors, riskExtreme)
}

func assertRisks(t *testing.T, risks []string, want ...string) {
	t.Helper()
	for _, w := range want {
		found := false
		for _, r := range risks {
			if r == w {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected risk %q in %v", w, risks)
		}
	}
}

func TestBayesianPosteriorBounds(t *testing.T) {
	for _, success := range []bool{true, false} {
		for _, conf := range []float64{0, 0.25, 0.5, 0.75, 1} {
			for _, prior := range []float64{0, 0.3, 0.7, 1} {
				store := confidence.NewStore()
				if prior > 0 {
					store.Append("s", prior)
				}
				engine := New(config.DefaultTables(), skills.Default(), store, nil)
				engine.RecordResult(core.SkillExecutionResult{
					SkillID:       "s",
					Success:       success,
					Confidence:    conf,
					ExecutionTime: 100 * time.Millisecond,
				})
				history := store.History("s")
				posterior := history[len(history)-1]
				if posterior < 0.1 || posterior > 0.95 {
					t.Fatalf("posterior out of bounds: %v (success=%v conf=%v prior=%v)",
						posterior, success, conf, prior)
				}
			}
		}
	}
}

func TestSlowExecutionDiscountsEvidence(t *testing.T) {
	fast := newEngine(nil)
	slow := newEngine(nil)
	result := core.SkillExecutionResult{SkillID: "s", Success: true, Confidence: 0.9}

	result.ExecutionTime = 200 * time.Millisecond
	fast.RecordResult(result)
	result.ExecutionTime = 1500 * time.Millisecond
	slow.RecordResult(result)

	fastPost := fast.Store().History("s")[0]
	slowPost := slow.Store().History("s")[0]
	if slowPost >= fastPost {
		t.Fatalf("slow execution must yield a lower posterior: %v vs %v", slowPost, fastPost)
	}
}

func TestHistoryBoundAfterManyResults(t *testing.T) {
	engine := newEngine(nil)
	for i := 0; i < 25; i++ {
		engine.RecordResult(core.SkillExecutionResult{
			SkillID:       "pattern-learning",
			Success:       true,
			Confidence:    0.8,
			ExecutionTime: 50 * time.Millisecond,
		})
	}
	if got := engine.Store().Len("pattern-learning"); got != confidence.DefaultHistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", confidence.DefaultHistoryLimit, got)
	}
}
