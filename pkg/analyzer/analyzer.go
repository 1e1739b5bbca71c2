// Package analyzer classifies tasks into category, complexity, and load
// estimates. Analysis is total: it never fails, and empty input yields a
// usable low-complexity research profile.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/metislabs/metis/pkg/config"
	"github.com/metislabs/metis/pkg/core"
)

// CategoryStats exposes the historical success rate of completed tasks per
// category. The learning loop's task history implements it.
type CategoryStats interface {
	SuccessRate(category core.TaskCategory) (float64, bool)
}

// Analyzer derives a TaskAnalysis from a task description and context.
type Analyzer struct {
	tables *config.Tables
	stats  CategoryStats
}

// New creates an analyzer. stats may be nil when no history is available.
func New(tables *config.Tables, stats CategoryStats) *Analyzer {
	return &Analyzer{tables: tables, stats: stats}
}

const baseConfidence = 0.7

var (
	codeTerms         = []string{"code", "function", "algorithm", "refactor", "analyze", "analysis", "review", "quality", "implementation"}
	problemTerms      = []string{"debug", "error", "bug", "fix", "issue", "problem", "fail", "crash", "broken"}
	optimizationTerms = []string{"optimize", "optimization", "performance", "efficien", "speed up", "throughput", "latency"}
	learningTerms     = []string{"learn", "adapt", "improve", "train", "pattern", "feedback"}

	domainTerms = map[string][]string{
		"software":    {"code", "function", "api", "software", "implementation"},
		"systems":     {"system", "production", "server", "infrastructure", "deploy"},
		"performance": {"performance", "latency", "throughput", "optimize"},
		"data":        {"data", "dataset", "records", "metrics"},
		"research":    {"research", "investigate", "explore", "compare"},
	}
)

type signals struct {
	code         bool
	problem      bool
	optimization bool
	learning     bool
}

func (s signals) count() int {
	n := 0
	for _, present := range []bool{s.code, s.problem, s.optimization, s.learning} {
		if present {
			n++
		}
	}
	return n
}

// Analyze classifies the task. It always returns a best-effort result.
func (a *Analyzer) Analyze(task *core.Task) core.TaskAnalysis {
	description := strings.ToLower(strings.TrimSpace(task.Description))
	sig := detectSignals(description, task.Context)
	category := classify(sig)
	domains := detectDomains(description, task.Context)
	required := a.requiredSkills(category, sig)

	score := a.complexityScore(description, task.Context, sig, category, required, domains)
	complexity := a.tables.Thresholds.Grade(score)
	load := a.tables.Thresholds.Load(complexity)

	confidence := a.confidence(category, complexity)

	return core.TaskAnalysis{
		Category:               category,
		Complexity:             complexity,
		Domains:                domains,
		RequiredSkills:         required,
		EstimatedCognitiveLoad: load,
		Confidence:             confidence,
		Reasoning:              reasoning(category, complexity, sig),
	}
}

func detectSignals(description string, context map[string]any) signals {
	sig := signals{
		code:         containsAny(description, codeTerms),
		problem:      containsAny(description, problemTerms),
		optimization: containsAny(description, optimizationTerms),
		learning:     containsAny(description, learningTerms),
	}
	if _, ok := context["code"]; ok {
		sig.code = true
	}
	if _, ok := context["optimization"]; ok {
		sig.optimization = true
	}
	if _, ok := context["learning"]; ok {
		sig.learning = true
	}
	return sig
}

// classify applies ordered signal detection: co-occurring code and debugging
// families, or three or more families, escalate to complex-multistep;
// optimization and learning terms only set the category when nothing
// stronger matched.
func classify(sig signals) core.TaskCategory {
	switch {
	case sig.code && sig.problem:
		return core.CategoryComplexMulti
	case sig.count() >= 3:
		return core.CategoryComplexMulti
	case sig.code:
		return core.CategoryCodeAnalysis
	case sig.problem:
		return core.CategoryProblemSolving
	case sig.optimization:
		return core.CategoryOptimization
	case sig.learning:
		return core.CategoryLearning
	default:
		return core.CategoryResearch
	}
}

func (a *Analyzer) requiredSkills(category core.TaskCategory, sig signals) []string {
	required := a.tables.SkillsFor(category)
	seen := make(map[string]bool, len(required))
	for _, id := range required {
		seen[id] = true
	}
	// Optimization and learning signals add a requirement without changing
	// the category.
	if sig.optimization && !seen["load-optimization"] {
		required = append(required, "load-optimization")
		seen["load-optimization"] = true
	}
	if sig.learning && !seen["pattern-learning"] {
		required = append(required, "pattern-learning")
	}
	return required
}

func (a *Analyzer) complexityScore(description string, context map[string]any, sig signals, category core.TaskCategory, required, domains []string) float64 {
	var score float64
	if len(description) > 100 {
		score += 0.2
	}
	if sig.count() >= 2 {
		score += 0.2
	}
	if category == core.CategoryComplexMulti {
		score += 0.3
	}
	if len(context) >= 2 {
		score += 0.15
	}
	if len(required) > 2 {
		score += 0.15
	}
	if len(domains) > 3 {
		score += 0.1
	}
	return score
}

// confidence blends the base value with the historical success rate of the
// task's category, then applies the complexity penalty, clamped to [0.3, 0.95].
func (a *Analyzer) confidence(category core.TaskCategory, complexity core.Complexity) float64 {
	conf := baseConfidence
	if a.stats != nil {
		if rate, ok := a.stats.SuccessRate(category); ok {
			conf = (baseConfidence + rate) / 2
		}
	}
	conf += a.tables.Thresholds.Penalty(complexity)
	return clamp(conf, 0.3, 0.95)
}

func reasoning(category core.TaskCategory, complexity core.Complexity, sig signals) string {
	var families []string
	if sig.code {
		families = append(families, "code")
	}
	if sig.problem {
		families = append(families, "debugging")
	}
	if sig.optimization {
		families = append(families, "optimization")
	}
	if sig.learning {
		families = append(families, "learning")
	}
	if len(families) == 0 {
		return fmt.Sprintf("no strong signals detected; defaulting to %s at %s complexity", category, complexity)
	}
	return fmt.Sprintf("detected %s signals; classified as %s at %s complexity",
		strings.Join(families, "+"), category, complexity)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func detectDomains(description string, context map[string]any) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(domain string) {
		if !seen[domain] {
			seen[domain] = true
			out = append(out, domain)
		}
	}
	for domain, terms := range domainTerms {
		if containsAny(description, terms) {
			add(domain)
		}
	}
	if _, ok := context["code"]; ok {
		add("software")
	}
	// Map iteration is unordered; sort for deterministic analysis output.
	sort.Strings(out)
	return out
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
